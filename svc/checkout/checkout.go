package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"

	"github.com/google/uuid"

	"github.com/dmitrymomot/storekit/pkg/logger"
	"github.com/dmitrymomot/storekit/pkg/statemachine"
)

// Checkout is one checkout attempt of an order. Its provider and reference
// are fixed at construction; the order only changes through the transition
// methods.
type Checkout struct {
	svc       *Service
	order     *Order
	provider  Provider
	reference string
	req       Request
	attemptID uuid.UUID
	log       *slog.Logger
}

func (c *Checkout) Order() *Order {
	return c.order
}

func (c *Checkout) Provider() Provider {
	return c.provider
}

// AttemptID correlates the log records of this attempt.
func (c *Checkout) AttemptID() uuid.UUID {
	return c.attemptID
}

// AllowedProviders returns the providers the order may be paid with, in a
// fixed order.
//
// Orders with restricted products get the restricted provider only. Other
// orders with a positive total get paypal, centili for Japanese visitors of
// digital-only orders who did not opt out, and xsolla for digital-only
// orders. Free orders get the free provider.
func (c *Checkout) AllowedProviders() []Provider {
	if c.order.ShouldUseRestrictedProvider {
		return []Provider{ProviderShopify}
	}

	if c.order.Total.IsPositive() {
		allowed := []Provider{ProviderPaypal}
		if c.allowCentili() {
			allowed = append(allowed, ProviderCentili)
		}
		if !c.order.RequiresShipping {
			allowed = append(allowed, ProviderXsolla)
		}
		return allowed
	}

	return []Provider{ProviderFree}
}

func (c *Checkout) allowCentili() bool {
	return c.svc.cfg.CentiliEnabled &&
		c.req.isJapan() &&
		!c.order.RequiresShipping &&
		!c.req.OptOutRegional
}

// CentiliPaymentLink builds the payment widget URL, with the price converted
// by the configured rate.
func (c *Checkout) CentiliPaymentLink() string {
	cfg := c.svc.cfg
	params := url.Values{}
	params.Set("apikey", cfg.CentiliAPIKey)
	params.Set("country", "jp")
	params.Set("countrylock", "true")
	params.Set("reference", c.order.Number)
	params.Set("price", c.order.Total.Mul(cfg.CentiliConversionRate).String())

	return cfg.CentiliWidgetURL + "?" + params.Encode()
}

// BeginCheckout moves a pending order to processing, records the provider
// transaction id and reserves stock for every item, all in one transaction.
func (c *Checkout) BeginCheckout(ctx context.Context) error {
	if !slices.Contains(c.AllowedProviders(), c.provider) {
		c.log.WarnContext(ctx, "provider not allowed for order")
		return fmt.Errorf("%w: %q not in allowed checkout providers", ErrInvariant, c.provider)
	}

	_, err := c.transition(ctx, EventBegin, func(ctx context.Context, tx Tx, order *Order) error {
		order.TransactionID = transactionID(c.provider, c.reference)
		return c.adjustItems(ctx, tx, order.ID, -1)
	})
	return err
}

// CompleteCheckout moves a processing order to checkout. If the payment
// provider already marked the order paid or delivered it is returned
// unchanged.
func (c *Checkout) CompleteCheckout(ctx context.Context) (*Order, error) {
	return c.transition(ctx, EventComplete, nil)
}

// FailCheckout marks the transaction failed and returns the reserved stock.
// The order moves to failed so the stock cannot be released twice.
func (c *Checkout) FailCheckout(ctx context.Context) (*Order, error) {
	return c.transition(ctx, EventFail, func(ctx context.Context, tx Tx, order *Order) error {
		order.TransactionID = failedTransactionID(c.provider)
		return c.adjustItems(ctx, tx, order.ID, 1)
	})
}

// transition locks the order, applies event and runs apply inside the same
// transaction. On success the checkout's order is replaced by the committed one.
func (c *Checkout) transition(ctx context.Context, event statemachine.Event, apply func(ctx context.Context, tx Tx, order *Order) error) (*Order, error) {
	var (
		result   *Order
		from, to Status
		noop     bool
	)

	err := c.svc.store.WithOrderLock(ctx, c.order.ID, func(ctx context.Context, tx Tx, order *Order) error {
		from = order.Status

		if event == EventComplete && order.IsPaidOrDelivered() {
			noop = true
			result = order
			return nil
		}

		next, err := NextStatus(ctx, order.Status, event)
		if err != nil {
			return fmt.Errorf("order %d: %w", order.ID, err)
		}
		to = next
		order.Status = next

		if apply != nil {
			if err := apply(ctx, tx, order); err != nil {
				return err
			}
		}

		if err := tx.SaveOrder(ctx, order); err != nil {
			return fmt.Errorf("save order %d: %w", order.ID, err)
		}
		result = order
		return nil
	})
	if err != nil {
		level := slog.LevelError
		if errors.Is(err, ErrInvalidState) || errors.Is(err, ErrLockTimeout) || errors.Is(err, ErrInsufficientStock) {
			level = slog.LevelWarn
		}
		c.log.Log(ctx, level, "checkout transition rejected",
			slog.String("event", string(event)), slog.String("status", string(from)), logger.Error(err))
		return nil, err
	}

	c.order = result
	if noop {
		c.log.InfoContext(ctx, "order already paid, completion ignored", slog.String("status", string(from)))
	} else {
		c.log.InfoContext(ctx, "checkout transition committed",
			slog.String("event", string(event)),
			logger.Transition(string(from), string(to)),
			slog.String("transaction_id", result.TransactionID))
	}
	return result, nil
}

// adjustItems moves every item's quantity out of (sign -1) or back into
// (sign +1) stock. Releasing skips items whose product was deleted, so a
// failed checkout can always be closed.
func (c *Checkout) adjustItems(ctx context.Context, tx Tx, orderID int64, sign int) error {
	items, err := tx.Items(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	release := sign > 0
	for _, item := range items {
		if release && item.Product == nil {
			c.log.WarnContext(ctx, "product gone, stock not released",
				slog.Int64("item_id", item.ID), slog.Int("quantity", item.Quantity))
			continue
		}
		err := tx.AdjustStock(ctx, item.ProductID, sign*item.Quantity)
		if release && errors.Is(err, ErrProductNotFound) {
			c.log.WarnContext(ctx, "product gone, stock not released",
				slog.Int64("item_id", item.ID), slog.Int64("product_id", item.ProductID))
			continue
		}
		if err != nil {
			return fmt.Errorf("item %d, product %d: %w", item.ID, item.ProductID, err)
		}
	}
	return nil
}
