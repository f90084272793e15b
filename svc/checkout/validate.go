package checkout

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/storekit/pkg/validator"
)

// Translation keys of the checkout validation messages.
const (
	KeyNotAvailable      = "store.product.not_available"
	KeyInsufficientStock = "store.product.insufficient_stock"
	KeyTooMany           = "store.product.too_many"
	KeyMustSeparate      = "store.product.must_separate"
	KeyCustom            = "store.product.custom"
)

const itemField = "item"

// Validate checks every item of the order and returns the messages per item
// id. Items without problems are omitted; a valid order yields an empty map.
// Validation problems are data, not errors; the error is only for store
// failures.
func (c *Checkout) Validate(ctx context.Context) (map[int64][]string, error) {
	detailed, err := c.ValidationErrors(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[int64][]string, len(detailed))
	for id, errs := range detailed {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Message)
		}
		out[id] = msgs
	}
	return out, nil
}

// ValidationErrors is Validate with translation keys and values kept, for
// callers that localise the messages.
func (c *Checkout) ValidationErrors(ctx context.Context) (map[int64]validator.ValidationErrors, error) {
	items, err := c.svc.store.Items(ctx, c.order.ID)
	if err != nil {
		return nil, fmt.Errorf("load items of order %d: %w", c.order.ID, err)
	}

	out := make(map[int64]validator.ValidationErrors)
	for _, item := range items {
		if errs := c.validateItem(ctx, item); len(errs) > 0 {
			out[item.ID] = errs
		}
	}
	return out, nil
}

func (c *Checkout) validateItem(ctx context.Context, item OrderItem) validator.ValidationErrors {
	errs := item.Validate()

	p := item.Product
	rules := []validator.Rule{
		validator.Custom(itemField, p != nil && p.Available, KeyNotAvailable, "product is not available"),
	}
	if p != nil {
		rules = append(rules,
			validator.Custom(itemField, p.InStock(item.Quantity), KeyInsufficientStock, "not enough stock"),
			validator.When(p.MaxQuantity > 0,
				validator.Custom(itemField, item.Quantity <= p.MaxQuantity, KeyTooMany,
					fmt.Sprintf("too many items, maximum is %d", p.MaxQuantity),
					map[string]any{"count": p.MaxQuantity})),
			validator.Custom(itemField, !c.order.ShouldUseRestrictedProvider || p.Restricted, KeyMustSeparate, "must be purchased separately"),
		)
	}
	errs = append(errs, validator.ExtractValidationErrors(validator.Apply(rules...))...)

	if p != nil {
		if fn, ok := c.svc.validators[p.Variant]; ok {
			for _, msg := range fn(ctx, item) {
				errs = append(errs, validator.ValidationError{
					Field:             itemField,
					Message:           msg,
					TranslationKey:    KeyCustom,
					TranslationValues: map[string]any{"variant": string(p.Variant)},
				})
			}
		}
	}

	return errs
}
