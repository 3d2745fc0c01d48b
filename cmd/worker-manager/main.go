// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"loan-risk-workers/internal/common/aws"
	"loan-risk-workers/internal/common/camunda"
	"loan-risk-workers/internal/common/config"
	"loan-risk-workers/internal/common/database"
	"loan-risk-workers/internal/common/logger"
	"loan-risk-workers/internal/common/observability"
	"loan-risk-workers/internal/extraction"
	"loan-risk-workers/internal/orchestrator"
	"loan-risk-workers/internal/repository"
	"loan-risk-workers/internal/risk"

	pla "loan-risk-workers/internal/workers/loan/process-loan-application"
	rr "loan-risk-workers/internal/workers/loan/reassess-risk"
)

var connectRetry = &camunda.RetryConfig{
	MaxRetries: 10,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

func main() {
	// Bootstrap logger until the configured level is known.
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.NewZapAdapter(zapLog)
	log.Info("Starting worker manager", map[string]interface{}{
		"service":     cfg.Observability.ServiceName,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint, log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe ---
	zeebe, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		RetryConfig:            connectRetry,
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	log.Info("Zeebe client connected successfully", nil)

	// --- PostgreSQL ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres client failed", zap.Error(err))
	}
	defer pg.Close()
	if err := camunda.Retry(ctx, connectRetry, "PostgreSQL connection", log, pg.Ping); err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	if path := cfg.Database.Postgres.Migration; path != "" {
		if err := pg.ApplyMigration(ctx, path); err != nil {
			zapLog.Fatal("postgres migration failed", zap.Error(err))
		}
	}
	log.Info("PostgreSQL connected successfully", nil)

	// --- Redis ---
	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("redis client failed", zap.Error(err))
	}
	defer rdb.Close()
	if err := camunda.Retry(ctx, connectRetry, "Redis connection", log, rdb.Ping); err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	log.Info("Redis connected successfully", nil)

	// --- AWS ---
	s3Client, err := aws.NewS3Client(ctx, cfg.Storage.S3.Region, cfg.Storage.S3.Endpoint)
	if err != nil {
		zapLog.Fatal("s3 client failed", zap.Error(err))
	}
	fetcher := aws.NewDocumentFetcher(s3Client, cfg.Storage.S3.Bucket)

	var publisher *aws.DecisionPublisher
	if cfg.Notifications.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.SNS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		publisher = aws.NewDecisionPublisher(snsClient, cfg.Notifications.SNS.TopicARN)
	}

	// --- Pipeline ---
	extractor := extraction.NewClient(extraction.Config{
		BaseURL:        cfg.Extraction.BaseURL,
		APIKey:         cfg.Extraction.APIKey,
		Model:          cfg.Extraction.Model,
		Timeout:        config.GetDuration(cfg.Extraction.Timeout),
		MaxAttempts:    cfg.Extraction.MaxAttempts,
		InitialBackoff: config.GetDuration(cfg.Extraction.InitialBackoff),
	}, log)

	thresholds := risk.DefaultThresholds()
	thresholds.ReferenceAnnualCost = cfg.Risk.ReferenceAnnualCost
	orch := orchestrator.New(extractor, risk.NewEngine(thresholds), log, orchestrator.WithPhaseRecorder(obs))

	applications := repository.NewApplicationRepository(pg.DB)
	profiles := repository.NewProfileCache(rdb.Client, config.GetDuration(cfg.Cache.RiskProfileTTL))

	// --- Workers ---
	registry := camunda.NewRegistry(zeebe.GetClient(), log)

	if wcfg := config.GetWorkerConfig(cfg, pla.TaskType); wcfg.Enabled {
		handler := pla.NewHandler(
			&pla.Config{Timeout: config.GetDuration(wcfg.Timeout)},
			fetcher, orch, applications, profiles, publisher, log,
		)
		registry.Start(pla.TaskType, wcfg, traced(obs, pla.TaskType, handler))
	}

	if wcfg := config.GetWorkerConfig(cfg, rr.TaskType); wcfg.Enabled {
		handler := rr.NewHandler(
			&rr.Config{Timeout: config.GetDuration(wcfg.Timeout)},
			applications, orch, profiles, publisher, log,
		)
		registry.Start(rr.TaskType, wcfg, traced(obs, rr.TaskType, handler))
	}
	log.Info("Workers registered", map[string]interface{}{"active": registry.Active()})

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr:    cfg.Observability.MetricsAddress,
		Handler: newOpsMux(zeebe, pg, rdb),
	}
	go func() {
		log.Info("Health/Metrics server listening", map[string]interface{}{"address": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health/Metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("Shutdown signal received, stopping workers", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	registry.Stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping Health/Metrics server", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Worker manager stopped gracefully", nil)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

func newOpsMux(zeebe healthChecker, pg, rdb pinger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		ready := true
		for name, check := range map[string]func(context.Context) error{
			"zeebe":    zeebe.HealthCheck,
			"postgres": pg.Ping,
			"redis":    rdb.Ping,
		} {
			if err := check(ctx); err != nil {
				checks[name] = err.Error()
				ready = false
				continue
			}
			checks[name] = "ok"
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		writeStatus(w, code, map[string]interface{}{
			"status": status,
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)
	return mux
}

func writeStatus(w http.ResponseWriter, code int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// tracedHandler wraps a job handler in a span and records its duration.
type tracedHandler struct {
	obs      *observability.Observability
	taskType string
	next     camunda.JobHandler
}

func traced(obs *observability.Observability, taskType string, next camunda.JobHandler) camunda.JobHandler {
	return &tracedHandler{obs: obs, taskType: taskType, next: next}
}

func (t *tracedHandler) Handle(client worker.JobClient, job entities.Job) {
	ctx, span := t.obs.StartSpan(context.Background(), "job."+t.taskType,
		attribute.Int64("job.key", job.Key),
		attribute.Int64("process.instance.key", job.ProcessInstanceKey),
	)
	defer span.End()

	start := time.Now()
	t.next.Handle(client, job)
	t.obs.RecordJobDuration(ctx, t.taskType, time.Since(start), "handled")
	t.obs.RecordJobProcessed(ctx, t.taskType, "handled")
}
