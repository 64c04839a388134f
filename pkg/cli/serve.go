package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/yonnovia/iawashing/pkg/cli/config"
	httpctrl "github.com/yonnovia/iawashing/pkg/controller/http"
	"github.com/yonnovia/iawashing/pkg/domain/interfaces"
	"github.com/yonnovia/iawashing/pkg/service/metrics"
	"github.com/yonnovia/iawashing/pkg/service/realtime"
	"github.com/yonnovia/iawashing/pkg/service/worker"
	"github.com/yonnovia/iawashing/pkg/usecase"
	"github.com/yonnovia/iawashing/pkg/utils/async"
	"github.com/yonnovia/iawashing/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var addr string
	var corsOrigins []string
	var statsInterval time.Duration
	var repoCfg config.Repository
	var authCfg config.Auth
	var redisCfg config.Redis
	var sentryCfg config.Sentry
	var questionnaireCfg config.Questionnaire

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("IAWASHING_ADDR"),
			Destination: &addr,
		},
		&cli.StringSliceFlag{
			Name:        "cors-origin",
			Usage:       "Allowed CORS origin (repeatable, * allows any)",
			Value:       []string{"*"},
			Sources:     cli.EnvVars("IAWASHING_CORS_ORIGINS"),
			Destination: &corsOrigins,
		},
		&cli.DurationFlag{
			Name:        "stats-interval",
			Usage:       "Interval of session stats pushed to dashboards (0 disables)",
			Value:       worker.DefaultStatsInterval,
			Sources:     cli.EnvVars("IAWASHING_STATS_INTERVAL"),
			Destination: &statsInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, redisCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, questionnaireCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Serve configuration",
				"addr", addr,
				"repository", repoCfg,
				"auth", authCfg,
				"redis", redisCfg,
				"sentry", sentryCfg,
			)

			flush, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			defer flush()

			questionnaire, err := questionnaireCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load questionnaire")
			}

			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			authUC, err := authCfg.Configure(repo)
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			hub := realtime.NewHub()
			recorder := metrics.New()

			// Events go through Redis when configured so that every
			// instance relays them to its own dashboards.
			var publisher interfaces.EventPublisher = hub
			bridge, redisClient, err := redisCfg.Configure(ctx, hub)
			if err != nil {
				return goerr.Wrap(err, "failed to configure redis")
			}
			if bridge != nil {
				if err := bridge.Start(ctx); err != nil {
					_ = redisClient.Close()
					return goerr.Wrap(err, "failed to start redis bridge")
				}
				defer func() {
					bridge.Stop()
					if err := redisClient.Close(); err != nil {
						logger.Error("failed to close redis client", "error", err.Error())
					}
				}()
				publisher = bridge
				logger.Info("Redis dashboard bridge enabled")
			}

			uc := usecase.New(repo,
				usecase.WithQuestionnaire(questionnaire),
				usecase.WithPublisher(publisher),
				usecase.WithMetrics(recorder),
				usecase.WithAuth(authUC),
			)

			var statsWorker *worker.StatsBroadcastWorker
			if statsInterval > 0 {
				statsWorker = worker.NewStatsBroadcastWorker(hub, uc.Admin, hub, statsInterval)
				if err := statsWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start stats worker")
				}
			}

			httpHandler, err := httpctrl.New(uc,
				httpctrl.WithHub(hub),
				httpctrl.WithMetrics(recorder),
				httpctrl.WithCORSOrigins(corsOrigins),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, egCtx := errgroup.WithContext(sigCtx)
			eg.Go(func() error {
				logger.Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server")
				}
				return nil
			})
			eg.Go(func() error {
				<-egCtx.Done()
				logger.Info("Shutting down HTTP server")

				if statsWorker != nil {
					statsWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				async.Wait()
				return nil
			})

			if err := eg.Wait(); err != nil {
				return err
			}
			logger.Info("Server shutdown completed")
			return nil
		},
	}
}
