package checkout

import (
	"maps"

	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/storekit/pkg/validator"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCheckout   Status = "checkout"
	StatusPaid       Status = "paid"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusFailed     Status = "failed"
)

// Order is the slice of the store order that checkout reads and mutates.
type Order struct {
	ID                          int64
	Number                      string
	UserID                      int64
	Status                      Status
	TransactionID               string
	Total                       decimal.Decimal
	RequiresShipping            bool
	ShouldUseRestrictedProvider bool // platform-exclusive products present
	Items                       []OrderItem
}

func (o *Order) CanCheckout() bool {
	return o.Status == StatusPending
}

func (o *Order) IsProcessing() bool {
	return o.Status == StatusProcessing
}

func (o *Order) IsPaidOrDelivered() bool {
	return o.Status == StatusPaid || o.Status == StatusDelivered
}

func (o *Order) clone() *Order {
	c := *o
	c.Items = make([]OrderItem, len(o.Items))
	for i, it := range o.Items {
		c.Items[i] = it.clone()
	}
	return &c
}

// Variant selects a product's custom validation; empty means standard.
type Variant string

const VariantStandard Variant = ""

type Product struct {
	ID          int64
	Name        string
	Available   bool
	Stock       *int // nil means stock is not tracked
	MaxQuantity int  // zero means no per-order limit
	Restricted  bool // sold through the restricted provider only
	Variant     Variant
}

// InStock reports whether qty units can be taken from stock.
func (p *Product) InStock(qty int) bool {
	return p.Stock == nil || *p.Stock >= qty
}

func (p *Product) clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	if p.Stock != nil {
		s := *p.Stock
		c.Stock = &s
	}
	return &c
}

type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Product   *Product // nil when the product no longer exists
	Quantity  int
	Extra     map[string]string
}

// Validate runs the item's own rules, independent of checkout.
func (i OrderItem) Validate() validator.ValidationErrors {
	return validator.ExtractValidationErrors(validator.Apply(
		validator.MinNum("quantity", i.Quantity, 1),
		validator.RequiredNum("product_id", i.ProductID),
	))
}

func (i OrderItem) clone() OrderItem {
	i.Product = i.Product.clone()
	i.Extra = maps.Clone(i.Extra)
	return i
}
