package checkout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/storekit/pkg/logger"
)

// ItemValidator is the custom validation of a product variant. It returns
// the messages to report for the item, or none.
type ItemValidator func(ctx context.Context, item OrderItem) []string

// Service creates Checkout handles and answers store-wide questions.
type Service struct {
	store      Store
	cfg        Config
	log        *slog.Logger
	validators map[Variant]ItemValidator
	newID      func() uuid.UUID
}

type Option func(*Service)

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithItemValidator registers the custom validation for a product variant.
func WithItemValidator(variant Variant, fn ItemValidator) Option {
	return func(s *Service) {
		if fn != nil {
			s.validators[variant] = fn
		}
	}
}

// WithAttemptIDGenerator overrides how checkout attempt ids are generated.
func WithAttemptIDGenerator(fn func() uuid.UUID) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func New(store Store, cfg Config, opts ...Option) *Service {
	s := &Service{
		store:      store,
		cfg:        cfg,
		log:        logger.Discard(),
		validators: make(map[Variant]ItemValidator),
		newID:      uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("checkout"))
	return s
}

// Checkout binds a checkout attempt to order. The restricted provider
// requires a reference (its checkout id).
func (s *Service) Checkout(order *Order, provider Provider, reference string, req Request) (*Checkout, error) {
	if order == nil {
		return nil, fmt.Errorf("%w: order is required", ErrInvariant)
	}
	if provider == ProviderShopify && reference == "" {
		return nil, fmt.Errorf("%w: %s provider requires a reference (checkout id)", ErrInvariant, provider)
	}

	attemptID := s.newID()
	return &Checkout{
		svc:       s,
		order:     order,
		provider:  provider,
		reference: reference,
		req:       req,
		attemptID: attemptID,
		log: s.log.With(
			logger.OrderID(order.ID),
			logger.Provider(string(provider)),
			logger.AttemptID(attemptID.String()),
		),
	}, nil
}

// For loads an order by number and binds a provider-less checkout to it,
// enough to list providers and validate.
func (s *Service) For(ctx context.Context, number string, req Request) (*Checkout, error) {
	order, err := s.store.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.Checkout(order, ProviderNone, "", req)
}

// IsShippingDelayed reports whether the paid backlog exceeds the threshold.
func (s *Service) IsShippingDelayed(ctx context.Context) (bool, error) {
	n, err := s.store.CountByStatus(ctx, StatusPaid)
	if err != nil {
		return false, fmt.Errorf("count paid orders: %w", err)
	}
	return n > s.cfg.DelayedShippingOrderThreshold, nil
}
