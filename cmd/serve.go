package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mailguard/internal/api"
	"mailguard/internal/api/handler/v1handler"
	"mailguard/internal/authz"
	"mailguard/internal/config"
	"mailguard/internal/disposable"
	"mailguard/internal/refresher"
	"mailguard/internal/validation"
	"mailguard/internal/worker"
	"mailguard/pkg/domain"
	"mailguard/pkg/logger"
	"mailguard/pkg/metrics"
	"mailguard/pkg/storage"
	"mailguard/pkg/storage/postgres"
	"mailguard/pkg/token"
)

func setupServer(ctx context.Context, cfg *config.Config, deps api.Deps) func(ctx context.Context) {
	server, err := api.NewServer(deps, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

// bootstrap runs the startup refresh. When it fails and a database is
// configured, a retry job is queued so the worker keeps trying in the
// background.
func bootstrap(ctx context.Context, cfg *config.Config, ref *refresher.Orchestrator, strg storage.Storage) {
	startupCtx, cancel := context.WithTimeout(ctx, cfg.Refresh.StartupTimeout)
	defer cancel()

	outcome, restored := ref.Bootstrap(startupCtx)
	switch {
	case restored:
		logger.Warn(ctx, "disposable email domains restored from snapshot", zap.Int("domains", outcome.DomainCount))
	case outcome.Succeeded():
		logger.Info(ctx, "disposable email domains loaded", zap.Int("domains", outcome.DomainCount))

		return
	default:
		logger.Error(ctx, "could not load disposable email domains, every domain is accepted until a refresh succeeds",
			zap.String("error", outcome.Error))
	}

	if strg == nil {
		return
	}
	inserted, err := strg.AddJob(ctx, worker.RefreshJobArgs{Trigger: domain.RefreshTriggerStartup}, nil)
	if err != nil {
		logger.Error(ctx, "could not queue startup refresh retry", zap.Error(err))

		return
	}
	logger.Info(ctx, "queued startup refresh retry", zap.Bool("inserted", inserted))
}

// newGate builds the refresh authorization gate and the request authenticator
// from the configured token verification key.
func newGate(ctx context.Context, cfg *config.Config) (*authz.Gate, *v1handler.SecHandler) {
	if cfg.Auth.PublicKey == "" {
		logger.Fatal(ctx, "auth public key is not configured")
	}
	verifier, err := token.NewVerifier(token.VerifierOptions{
		PublicKey: cfg.Auth.PublicKey,
		Issuer:    cfg.Auth.Issuer,
		Leeway:    cfg.Auth.Leeway,
	})
	if err != nil {
		logger.Fatal(ctx, "could not create token verifier", zap.Error(err))
	}

	gate := authz.New(verifier, authz.NewStaticClients(cfg.Auth.ServiceAccountClients...), authz.Options{
		AdminClient: cfg.Auth.AdminClient,
		AdminRole:   cfg.Auth.AdminRole,
	})

	return gate, v1handler.NewSecHandler(verifier, cfg.Auth.SessionCookie)
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts API server and background workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			gate, authenticator := newGate(ctx, cfg)

			cache := disposable.New()
			if err := metrics.RegisterCache(prometheus.DefaultRegisterer, cache); err != nil {
				logger.Fatal(ctx, "could not register cache metrics", zap.Error(err))
			}
			mp, err := metrics.NewMeterProvider(prometheus.DefaultRegisterer)
			if err != nil {
				logger.Fatal(ctx, "could not create meter provider", zap.Error(err))
			}
			defer func() { _ = mp.Shutdown(context.Background()) }()

			var (
				strg  storage.Storage
				pgsql *postgres.PgSQL
			)
			if cfg.Database.Enabled {
				var closeStrg func()
				pgsql, closeStrg = getPostgres(ctx, cfg)
				defer closeStrg()
				if err := pgsql.Ping(ctx); err != nil {
					logger.Fatal(ctx, "could not reach postgres", zap.Error(err))
				}
				strg = pgsql
			}

			refresherOpts := refresher.NewOptions(cfg)
			refresherOpts.MeterProvider = mp
			ref, err := refresher.New(cache, newSource(cfg), strg, refresherOpts)
			if err != nil {
				logger.Fatal(ctx, "could not create refresher", zap.Error(err))
			}
			if cfg.Refresh.OnStartup {
				bootstrap(ctx, cfg, ref, strg)
			}

			switch {
			case pgsql != nil:
				riverClient, err := worker.Start(ctx, pgsql.Pool, ref, worker.NewOptions(cfg))
				if err != nil {
					logger.Fatal(ctx, "could not start workers", zap.Error(err))
				}
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
					defer cancel()
					logger.Info(ctx, "stopping workers...")
					if err := riverClient.Stop(shutdownCtx); err != nil {
						logger.Error(ctx, "could not stop workers", zap.Error(err))
					}
				}()
			case cfg.Refresh.Interval > 0:
				logger.Warn(ctx, "scheduled refresh requires the database and is disabled")
			}

			stopWebserver := setupServer(ctx, cfg, api.Deps{
				Deps: v1handler.Deps{
					Cache:         cache,
					Refresher:     ref,
					Gate:          gate,
					Authenticator: authenticator,
					Validator: validation.New(cache, validation.Options{
						MatchSubdomains: cfg.Validation.MatchSubdomains,
					}),
				},
			})

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
		},
	}

	return cmd
}
