package checkout

import (
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	CentiliEnabled        bool            `env:"PAYMENTS_CENTILI_ENABLED" envDefault:"true"`
	CentiliAPIKey         string          `env:"PAYMENTS_CENTILI_API_KEY"`
	CentiliWidgetURL      string          `env:"PAYMENTS_CENTILI_WIDGET_URL" envDefault:"https://api.centili.com/payment/widget"`
	CentiliConversionRate decimal.Decimal `env:"PAYMENTS_CENTILI_CONVERSION_RATE" envDefault:"1"`

	// DelayedShippingOrderThreshold is the number of paid, unshipped orders
	// above which shipping is announced as delayed.
	DelayedShippingOrderThreshold int `env:"STORE_DELAYED_SHIPPING_ORDER_THRESHOLD" envDefault:"300"`

	// LockTimeout bounds the wait for an order row lock.
	LockTimeout time.Duration `env:"STORE_LOCK_TIMEOUT" envDefault:"5s"`
}

// DefaultLockTimeout applies when no positive lock timeout is configured.
const DefaultLockTimeout = 5 * time.Second

func DefaultConfig() Config {
	return Config{
		CentiliEnabled:                true,
		CentiliWidgetURL:              "https://api.centili.com/payment/widget",
		CentiliConversionRate:         decimal.NewFromInt(1),
		DelayedShippingOrderThreshold: 300,
		LockTimeout:                   DefaultLockTimeout,
	}
}

func lockTimeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultLockTimeout
	}
	return d
}
