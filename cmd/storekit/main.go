// Command storekit runs the store's operational tasks: schema migrations,
// dependency health checks, recovery of stuck checkouts and session
// revocation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dmitrymomot/storekit/pkg/config"
	"github.com/dmitrymomot/storekit/pkg/logger"
	"github.com/dmitrymomot/storekit/pkg/pg"
	"github.com/dmitrymomot/storekit/pkg/redis"
	"github.com/dmitrymomot/storekit/pkg/session"
	"github.com/dmitrymomot/storekit/svc/checkout"
)

type appConfig struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Service string `env:"APP_SERVICE" envDefault:"storekit"`
}

const usage = `usage: storekit <command> [flags]

commands:
  migrate                               apply the store schema
  health                                check database and redis
  shipping-status                       report whether shipping is delayed
  fail-checkout -order N -provider P    release a stuck checkout
  sessions -user ID                     list a user's active sessions
  destroy-sessions -user ID             sign a user out everywhere
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var app appConfig
	config.MustLoad(&app)
	log := logger.New(logger.WithEnvironment(app.Env, app.Service))
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, os.Args[1], os.Args[2:]); err != nil {
		log.ErrorContext(ctx, "command failed", slog.String("command", os.Args[1]), logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger, cmd string, args []string) error {
	switch cmd {
	case "migrate":
		return migrate(ctx, log)
	case "health":
		return health(ctx, log)
	case "shipping-status":
		return shippingStatus(ctx, log)
	case "fail-checkout":
		return failCheckout(ctx, log, args)
	case "sessions":
		return listSessions(ctx, log, args)
	case "destroy-sessions":
		return destroySessions(ctx, log, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func checkoutService(ctx context.Context) (*checkout.Service, func(), error) {
	var cfg pg.Config
	if err := config.Load(&cfg); err != nil {
		return nil, nil, err
	}
	var coCfg checkout.Config
	if err := config.Load(&coCfg); err != nil {
		return nil, nil, err
	}

	pool, err := pg.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	svc := checkout.New(checkout.NewPostgresStore(pool, coCfg), coCfg,
		checkout.WithLogger(slog.Default()))

	return svc, pool.Close, nil
}

func migrate(ctx context.Context, log *slog.Logger) error {
	var cfg pg.Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	pool, err := pg.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := checkout.Migrate(ctx, pool, cfg, log); err != nil {
		return err
	}
	log.InfoContext(ctx, "store schema is up to date")
	return nil
}

func health(ctx context.Context, log *slog.Logger) error {
	var pgCfg pg.Config
	if err := config.Load(&pgCfg); err != nil {
		return err
	}
	var redisCfg redis.Config
	if err := config.Load(&redisCfg); err != nil {
		return err
	}

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	client, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer client.Close()

	err = errors.Join(pg.Healthcheck(pool)(ctx), redis.Healthcheck(client)(ctx))
	if err == nil {
		log.InfoContext(ctx, "all dependencies are healthy")
	}
	return err
}

func shippingStatus(ctx context.Context, log *slog.Logger) error {
	svc, closeDB, err := checkoutService(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	delayed, err := svc.IsShippingDelayed(ctx)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "shipping status", slog.Bool("delayed", delayed))
	return nil
}

func failCheckout(ctx context.Context, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("fail-checkout", flag.ContinueOnError)
	number := fs.String("order", "", "order number")
	provider := fs.String("provider", "", "payment provider the checkout began with")
	reference := fs.String("reference", "", "provider checkout reference")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *number == "" || *provider == "" {
		return errors.New("both -order and -provider are required")
	}

	svc, closeDB, err := checkoutService(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	co, err := svc.For(ctx, *number, checkout.Request{})
	if err != nil {
		return err
	}
	co, err = svc.Checkout(co.Order(), checkout.Provider(*provider), *reference, checkout.Request{})
	if err != nil {
		return err
	}

	order, err := co.FailCheckout(ctx)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "checkout released",
		logger.OrderNumber(order.Number),
		slog.String("transaction_id", order.TransactionID))
	return nil
}

func sessionManager(ctx context.Context) (*session.Manager, func() error, error) {
	var redisCfg redis.Config
	if err := config.Load(&redisCfg); err != nil {
		return nil, nil, err
	}
	var cfg session.Config
	if err := config.Load(&cfg); err != nil {
		return nil, nil, err
	}

	client, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return nil, nil, err
	}

	m := session.New(nil,
		session.WithConfig(cfg),
		session.WithKeyValue(redis.NewKV(client)),
		session.WithLogger(slog.Default()),
	)
	return m, client.Close, nil
}

func userFlag(name string, args []string) (int64, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	raw := fs.String("user", "", "user id")
	if err := fs.Parse(args); err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(*raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid -user %q", *raw)
	}
	return id, nil
}

func listSessions(ctx context.Context, log *slog.Logger, args []string) error {
	userID, err := userFlag("sessions", args)
	if err != nil {
		return err
	}
	m, closeKV, err := sessionManager(ctx)
	if err != nil {
		return err
	}
	defer closeKV()

	index := m.Index()
	keys, err := index.Keys(ctx, &userID)
	if err != nil {
		return err
	}
	payloads, err := index.Payloads(ctx, keys)
	if err != nil {
		return err
	}

	for i, key := range keys {
		attrs := []any{logger.UserID(userID), slog.String("id", session.StripKeyPrefix(key))}
		rec, err := session.DecodeRecord(payloads[i])
		switch {
		case payloads[i] == nil:
			attrs = append(attrs, slog.Bool("expired", true))
		case err != nil:
			attrs = append(attrs, logger.Error(err))
		case rec.Meta != nil:
			attrs = append(attrs,
				slog.Time("last_visit", time.Unix(rec.Meta.LastVisit, 0)),
				slog.String("agent", rec.Meta.Agent),
				slog.Bool("verified", rec.Meta.Verified))
		}
		log.InfoContext(ctx, "session", attrs...)
	}
	return nil
}

func destroySessions(ctx context.Context, log *slog.Logger, args []string) error {
	userID, err := userFlag("destroy-sessions", args)
	if err != nil {
		return err
	}
	m, closeKV, err := sessionManager(ctx)
	if err != nil {
		return err
	}
	defer closeKV()

	if err := m.DestroyAllForUser(ctx, userID); err != nil {
		return err
	}
	log.InfoContext(ctx, "all sessions destroyed", logger.UserID(userID))
	return nil
}
