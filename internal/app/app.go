package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/deliverydesk/internal/config"
	"github.com/polkiloo/deliverydesk/internal/metrics"
	"github.com/polkiloo/deliverydesk/internal/usecase"
	"github.com/polkiloo/deliverydesk/internal/worker"
)

// ConsoleModule runs the partner console HTTP server.
var ConsoleModule = fx.Options(
	fx.Provide(newConsoleServer),
	fx.Invoke(registerConsoleLifecycle),
)

// ServiceModule runs the delivery service HTTP server and its escalation worker.
var ServiceModule = fx.Options(
	fx.Provide(
		newServiceServer,
		newEscalationProcessor,
	),
	fx.Invoke(registerServiceLifecycle),
)

type backgroundWorker interface {
	Start(ctx context.Context)
	Stop()
}

type consoleServerParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newConsoleServer(p consoleServerParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type serviceServerParams struct {
	fx.In

	Config *config.ServiceConfig
	Router *gin.Engine
}

func newServiceServer(p serviceServerParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Deliveries *usecase.DeliveryUseCase
	Metrics    *metrics.Metrics
	Config     *config.ServiceConfig
	Logger     *slog.Logger
}

func newEscalationProcessor(p workerParams) *worker.EscalationProcessor {
	return worker.NewEscalationProcessor(
		p.Deliveries,
		p.Metrics,
		p.Config.EscalationInterval,
		p.Config.EscalationBatchSize,
		p.Config.WorkerPoolSize,
		p.Logger,
	)
}

type consoleLifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Config     *config.Config
}

func registerConsoleLifecycle(p consoleLifecycleParams) {
	p.Lifecycle.Append(serverHook(runtime{
		name:            "partner console",
		server:          p.Server,
		shutdownTimeout: p.Config.ShutdownTimeout,
		logger:          p.Logger,
		shutdowner:      p.Shutdowner,
	}))
}

type serviceLifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.EscalationProcessor
	Config     *config.ServiceConfig
}

func registerServiceLifecycle(p serviceLifecycleParams) {
	p.Lifecycle.Append(serverHook(runtime{
		name:            "delivery service",
		server:          p.Server,
		worker:          p.Worker,
		shutdownTimeout: p.Config.ShutdownTimeout,
		logger:          p.Logger,
		shutdowner:      p.Shutdowner,
	}))
}

type runtime struct {
	name            string
	server          *http.Server
	worker          backgroundWorker
	shutdownTimeout time.Duration
	logger          *slog.Logger
	shutdowner      fx.Shutdowner
}

func serverHook(r runtime) fx.Hook {
	return fx.Hook{
		OnStart: func(ctx context.Context) error {
			r.logger.Info("starting "+r.name, slog.String("addr", r.server.Addr))
			if r.worker != nil {
				// fx cancels the start context once startup completes.
				r.worker.Start(context.WithoutCancel(ctx))
			}
			go func() {
				if err := r.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					r.logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = r.shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if r.worker != nil {
				r.worker.Stop()
			}

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, r.shutdownTimeout)
			}
			defer cancel()

			if err := r.server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			r.logger.Info(r.name + " stopped")
			return nil
		},
	}
}
