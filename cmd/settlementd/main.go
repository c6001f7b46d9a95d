package main

import (
	"context"
	"crypto/rand"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/settlementhub/nettinghub/internal/config"
	"github.com/settlementhub/nettinghub/internal/fxclient"
	"github.com/settlementhub/nettinghub/internal/gateway"
	"github.com/settlementhub/nettinghub/internal/hubclient"
	"github.com/settlementhub/nettinghub/internal/idempotency"
	"github.com/settlementhub/nettinghub/internal/iso20022"
	"github.com/settlementhub/nettinghub/internal/leaderlock"
	"github.com/settlementhub/nettinghub/internal/obs"
	"github.com/settlementhub/nettinghub/internal/workflowclient"
	"github.com/settlementhub/nettinghub/pkg/circuit"
	"github.com/settlementhub/nettinghub/pkg/messaging"
	"go.uber.org/zap"
)

// settlementd accepts window-settle requests over HTTP and drives them
// through the netting engine and ISO 20022 emitter. Bootstrap errors before
// a logger exists are reported with the standard log package, matching the
// teacher's own cmd/*/main.go convention; everything past that logs through
// zap.
func main() {
	cfg := config.Load()

	logger, err := obs.NewLogger(cfg.Production)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	skeleton, err := iso20022.LoadSkeleton()
	if err != nil {
		log.Fatalf("failed to load ISO 20022 skeleton: %v", err)
	}

	msgClient, err := messaging.NewClient(messaging.Config{
		URL:            cfg.NATSUrl,
		Name:           "settlementd",
		ReconnectWait:  time.Second,
		MaxReconnects:  60,
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}
	defer msgClient.Close()

	breakerCfg := circuit.Config{
		MaxFailures: cfg.CircuitMaxFailures,
		Timeout:     cfg.CircuitTimeout,
		HalfOpenMax: cfg.CircuitHalfOpenMax,
	}

	hub := hubclient.New(cfg.HubBaseURL, cfg.HubAuthSecret, breakerCfg, nil)
	fx := fxclient.New(cfg.FxBaseURL, breakerCfg, nil)
	workflow := workflowclient.New(cfg.WorkflowBaseURL, breakerCfg, nil)

	idem := idempotency.New(cfg.RedisAddr, cfg.RedisClaimTTL)
	defer idem.Close()

	locker, err := leaderlock.New(cfg.EtcdEndpoints, cfg.EtcdDialTimeout, cfg.EtcdSessionTTL)
	if err != nil {
		log.Fatalf("failed to connect to etcd: %v", err)
	}
	defer locker.Close()

	metrics := obs.NewMetrics(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
	defer metrics.Close()

	gw := gateway.New(gateway.Config{
		Port:              cfg.Port,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		RateLimitMax:      100,
		RateLimitWindow:   time.Minute,
		ReportingCurrency: cfg.ReportingCurrency,
	}, gateway.Deps{
		Hub:       hub,
		FX:        fx,
		Workflow:  workflow,
		Idem:      idem,
		Locker:    locker,
		Metrics:   metrics,
		Logger:    logger,
		MsgClient: msgClient,
		Skeleton:  skeleton,
		RNG:       rand.Reader,
	})

	pollCtx, cancelPoll := context.WithCancel(context.Background())
	defer cancelPoll()
	go gw.PollSettledWindows(pollCtx, cfg.WindowPollInterval)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      gw.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("settlementd starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("settlementd failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("settlementd shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("settlementd shutdown error", zap.Error(err))
	}

	logger.Info("settlementd stopped")
}
