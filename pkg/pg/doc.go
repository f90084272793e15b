// Package pg bootstraps PostgreSQL access on top of pgx/v5.
//
// It covers connection pooling with retries (Connect), goose migrations read
// from an fs.FS (Migrate), transactions with a statement lock timeout (InTx),
// a health check (Healthcheck) and SQLSTATE classification helpers.
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//	    panic(err)
//	}
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    panic(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations.FS, ".", cfg, log); err != nil {
//	    panic(err)
//	}
//
// Rows locked with SELECT ... FOR UPDATE inside InTx wait at most the given
// lock timeout; the resulting error satisfies IsLockTimeoutError.
package pg
