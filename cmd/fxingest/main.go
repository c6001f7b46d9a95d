package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/settlementhub/nettinghub/internal/config"
	"github.com/settlementhub/nettinghub/internal/fx"
	"github.com/settlementhub/nettinghub/internal/obs"
	"github.com/settlementhub/nettinghub/pkg/messaging"
	"go.uber.org/zap"
)

const (
	subjectRateTick     = "fx.rate.tick"
	subjectRateBlockOut = "fx.rateblock.published"
)

// rateTick is the wire shape of an incoming FX rate tick, as published by
// the partner rate provider. fxingest never imports internal/fxclient —
// that collaborator only serves request/response lookups, not the
// subscribe-and-forward path this command runs.
type rateTick struct {
	RateSetID     string `json:"rateSetId"`
	CurrencyPair  string `json:"currencyPair"`
	Rate          string `json:"rate"`
	DecimalPlaces int    `json:"decimalPlaces"`
	EndTime       string `json:"endTime"`
}

// fxingest subscribes to raw FX rate ticks, runs each through the
// citi_rate_block mapping, and republishes the result for downstream
// consumers (settlement-workflow, reporting). Bootstrap failures before the
// logger exists use the standard log package, matching settlementd's
// convention.
func main() {
	cfg := config.Load()

	logger, err := obs.NewLogger(cfg.Production)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	msgClient, err := messaging.NewClient(messaging.Config{
		URL:            cfg.NATSUrl,
		Name:           "fxingest",
		ReconnectWait:  time.Second,
		MaxReconnects:  60,
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}
	defer msgClient.Close()

	handler := func(msg *nats.Msg) {
		var tick rateTick
		if err := json.Unmarshal(msg.Data, &tick); err != nil {
			logger.Warn("discarding malformed rate tick", zap.Error(err))
			return
		}

		block, err := fx.CitiRateBlock(fx.RateRecord{
			RateSetID:     tick.RateSetID,
			CurrencyPair:  tick.CurrencyPair,
			Rate:          tick.Rate,
			DecimalPlaces: tick.DecimalPlaces,
			EndTime:       tick.EndTime,
		})
		if err != nil {
			logger.Warn("rejecting rate tick", zap.String("pair", tick.CurrencyPair), zap.Error(err))
			return
		}

		aggregateID := uuid.NewSHA1(uuid.NameSpaceOID, []byte("fx-rate-pair-"+block.CurrencyPair))
		event, err := messaging.NewEvent(messaging.EventTypeRateBlockPublished, aggregateID, messaging.RateBlockPublishedData{
			RateSetID:    block.RateSetID,
			CurrencyPair: block.CurrencyPair,
			BidSpotRate:  block.BidSpotRate,
		}, messaging.EventMetadata{Source: "fxingest"})
		if err != nil {
			logger.Error("failed to build rate block event", zap.Error(err))
			return
		}

		if err := msgClient.Publish(context.Background(), subjectRateBlockOut, event); err != nil {
			logger.Error("failed to publish rate block", zap.Error(err))
		}
	}

	if err := msgClient.Subscribe(subjectRateTick, handler); err != nil {
		log.Fatalf("failed to subscribe to %s: %v", subjectRateTick, err)
	}

	logger.Info("fxingest started", zap.String("subject", subjectRateTick))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("fxingest stopped")
}
