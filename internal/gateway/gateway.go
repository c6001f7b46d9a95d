// Package gateway is the HTTP surface in front of the settlement core: it
// accepts a window-settle request, drives validator → engine → emitter, and
// streams stage transitions to any operator console listening over
// WebSocket. Nothing in internal/settlement, internal/iso20022, or
// internal/fx imports this package.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/settlementhub/nettinghub/internal/fx"
	"github.com/settlementhub/nettinghub/internal/fxclient"
	"github.com/settlementhub/nettinghub/internal/hubclient"
	"github.com/settlementhub/nettinghub/internal/idempotency"
	"github.com/settlementhub/nettinghub/internal/iso20022"
	"github.com/settlementhub/nettinghub/internal/leaderlock"
	"github.com/settlementhub/nettinghub/internal/obs"
	"github.com/settlementhub/nettinghub/internal/settlement"
	"github.com/settlementhub/nettinghub/internal/workflowclient"
	"github.com/settlementhub/nettinghub/pkg/circuit"
	"github.com/settlementhub/nettinghub/pkg/messaging"
)

// Gateway is the settlement-window HTTP API.
type Gateway struct {
	router    *gin.Engine
	hub       *hubclient.Client
	fx        *fxclient.Client
	workflow  *workflowclient.Client
	idem      *idempotency.Store
	locker    *leaderlock.Locker
	metrics   *obs.Metrics
	logger    *zap.Logger
	msgClient *messaging.Client
	skeleton  *iso20022.Document
	rng       iso20022.RandomSource
	breakers  *circuit.BreakerGroup

	reportingCurrency string

	wsClients map[int64][]*WSClient
	wsMu      sync.RWMutex

	rateLimiter *RateLimiter
}

// WSClient is one operator console subscribed to a window's stage
// transitions.
type WSClient struct {
	ID       uuid.UUID
	WindowID int64
	Conn     *websocket.Conn
	Send     chan []byte
	Done     chan struct{}
}

// RateLimiter implements a simple sliding-window limiter per client IP.
type RateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	limit    int
	window   time.Duration
}

// Config holds gateway configuration.
type Config struct {
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	RateLimitWindow   time.Duration
	RateLimitMax      int
	ReportingCurrency string
}

// Deps bundles the collaborators a Gateway needs, all of them out-of-core
// glue injected from cmd/settlementd's bootstrap.
type Deps struct {
	Hub       *hubclient.Client
	FX        *fxclient.Client
	Workflow  *workflowclient.Client
	Idem      *idempotency.Store
	Locker    *leaderlock.Locker
	Metrics   *obs.Metrics
	Logger    *zap.Logger
	MsgClient *messaging.Client
	Skeleton  *iso20022.Document
	RNG       iso20022.RandomSource
}

// New builds a Gateway and wires its routes.
func New(cfg Config, deps Deps) *Gateway {
	g := &Gateway{
		router:            gin.Default(),
		hub:               deps.Hub,
		fx:                deps.FX,
		workflow:          deps.Workflow,
		idem:              deps.Idem,
		locker:            deps.Locker,
		metrics:           deps.Metrics,
		logger:            deps.Logger,
		msgClient:         deps.MsgClient,
		skeleton:          deps.Skeleton,
		rng:               deps.RNG,
		reportingCurrency: cfg.ReportingCurrency,
		breakers: circuit.NewBreakerGroup(circuit.Config{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
			HalfOpenMax: 3,
		}),
		wsClients: make(map[int64][]*WSClient),
		rateLimiter: &RateLimiter{
			requests: make(map[string][]time.Time),
			limit:    cfg.RateLimitMax,
			window:   cfg.RateLimitWindow,
		},
	}

	g.setupRoutes()
	return g
}

func (g *Gateway) setupRoutes() {
	g.router.Use(g.rateLimitMiddleware())
	g.router.Use(g.tracingMiddleware())

	g.router.GET("/healthz", g.healthCheck)

	v1 := g.router.Group("/api/v1")
	{
		v1.POST("/windows/:id/settle", g.settleWindow)
		v1.GET("/windows/:id/stream", g.streamWindow)
	}
}

// Start runs the HTTP server, blocking until it stops or errors.
func (g *Gateway) Start(addr string) error {
	return g.router.Run(addr)
}

// Handler exposes the underlying http.Handler for graceful shutdown wiring.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

func (g *Gateway) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.rateLimiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (g *Gateway) tracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader("X-Correlation-ID")
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		c.Set("correlation_id", correlationID)
		c.Header("X-Correlation-ID", correlationID)
		c.Next()
	}
}

func (g *Gateway) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// settleWindow drives the full validator → engine → emitter pipeline for one
// window id, serialized per-window by leaderlock and deduplicated by
// idempotency so an at-least-once redelivery never re-runs the engine.
func (g *Gateway) settleWindow(c *gin.Context) {
	windowID, err := parseWindowID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window id"})
		return
	}

	xmlOut, err := g.processWindow(c.Request.Context(), windowID)
	if err != nil {
		if err == errAlreadyClaimed {
			c.JSON(http.StatusConflict, gin.H{"error": "window already settled"})
			return
		}
		if err == errLockUnavailable {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not acquire window lock"})
			return
		}
		status, body := mapError(err)
		c.JSON(status, body)
		return
	}

	c.Data(http.StatusOK, "application/xml", []byte(xmlOut))
}

var (
	errAlreadyClaimed  = fmt.Errorf("gateway: window already claimed")
	errLockUnavailable = fmt.Errorf("gateway: window lock unavailable")
)

// processWindow runs validator → engine → emitter for windowID and reports
// the result over metrics/events/WebSocket, independent of the caller —
// both the HTTP handler and PollSettledWindows drive it the same way.
func (g *Gateway) processWindow(ctx context.Context, windowID int64) (string, error) {
	log := g.logger.With(zap.Int64("window_id", windowID))

	claimed, err := g.idem.Claim(ctx, windowID)
	if err != nil {
		log.Error("idempotency claim failed", zap.Error(err))
		return "", fmt.Errorf("gateway: idempotency claim: %w", err)
	}
	if !claimed {
		return "", errAlreadyClaimed
	}

	unlock, err := g.locker.Lock(ctx, windowID)
	if err != nil {
		g.idem.Release(ctx, windowID)
		log.Error("lock acquisition failed", zap.Error(err))
		return "", errLockUnavailable
	}
	defer unlock(ctx)

	start := time.Now()
	g.broadcast(windowID, "validating")

	xmlOut, matrix, currency, settleErr := g.runPipeline(ctx, windowID)
	if settleErr != nil {
		g.idem.Release(ctx, windowID)
		g.broadcast(windowID, "failed")
		g.publishFailure(ctx, windowID, settleErr)
		return "", settleErr
	}

	g.broadcast(windowID, "emitted")

	if g.metrics != nil {
		if err := g.metrics.RecordSettlement(ctx, windowID, currency, matrix.TransactionCount(), matrix.ControlSum().String(), time.Since(start)); err != nil {
			log.Warn("metrics write failed", zap.Error(err))
		}
	}

	g.publishCompletion(ctx, windowID, currency, matrix)

	return xmlOut, nil
}

// PollSettledWindows periodically asks the settlement-workflow service for
// windows sitting in state SETTLED and drives each one through
// processWindow, closing it on success. It runs until ctx is cancelled and
// is meant to be started once from cmd/settlementd's bootstrap, as a
// fallback for windows nobody ever calls /settle on directly.
func (g *Gateway) PollSettledWindows(ctx context.Context, interval time.Duration) {
	if g.workflow == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.pollOnce(ctx)
		}
	}
}

func (g *Gateway) pollOnce(ctx context.Context) {
	windows, err := g.workflow.SettledWindows(ctx)
	if err != nil {
		g.logger.Warn("listing settled windows failed", zap.Error(err))
		return
	}

	for _, w := range windows {
		log := g.logger.With(zap.Int64("window_id", w.WindowID))
		if _, err := g.processWindow(ctx, w.WindowID); err != nil {
			if err != errAlreadyClaimed {
				log.Warn("polled window settlement failed", zap.Error(err))
			}
			continue
		}
		if err := g.workflow.CloseWindow(ctx, w.WindowID); err != nil {
			log.Warn("closing settled window failed", zap.Error(err))
		}
	}
}

func (g *Gateway) runPipeline(ctx context.Context, windowID int64) (string, *settlement.PaymentMatrix, string, error) {
	var window settlement.SettlementWindow
	err := g.breakers.Execute(ctx, "hub-positions", func() error {
		w, err := g.hub.WindowPositions(ctx, windowID)
		window = w
		return err
	})
	if err != nil {
		return "", nil, "", err
	}

	positions, currency, err := settlement.Validate(window)
	if err != nil {
		return "", nil, "", err
	}

	matrix, err := settlement.Net(positions)
	if err != nil {
		return "", nil, "", err
	}

	var directory settlement.DfspDirectory
	err = g.breakers.Execute(ctx, "hub-participants", func() error {
		d, err := g.hub.Participants(ctx)
		directory = d
		return err
	})
	if err != nil {
		return "", nil, "", err
	}

	xmlOut, err := iso20022.Emit(matrix, directory, windowID, currency.Code, g.skeleton, g.rng)
	if err != nil {
		return "", nil, "", err
	}

	g.logReferenceRate(ctx, windowID, currency.Code)

	return xmlOut, matrix, currency.Code, nil
}

// logReferenceRate attaches an audit-trail reference rate against the
// reporting currency to the settlement log line. It is informational only:
// the rate provider being down never blocks or fails a settlement.
func (g *Gateway) logReferenceRate(ctx context.Context, windowID int64, settlementCurrency string) {
	if g.fx == nil || settlementCurrency == g.reportingCurrency {
		return
	}

	pair := settlementCurrency + g.reportingCurrency
	var record fx.RateRecord
	err := g.breakers.Execute(ctx, "fx-reference-rate", func() error {
		r, err := g.fx.Rate(ctx, pair)
		record = r
		return err
	})
	if err != nil {
		g.logger.Warn("reference rate lookup failed", zap.Int64("window_id", windowID), zap.String("pair", pair), zap.Error(err))
		return
	}
	g.logger.Info("settlement reference rate", zap.Int64("window_id", windowID), zap.String("pair", pair), zap.String("rate", record.Rate))
}

// windowAggregateID maps a window id into the UUID space messaging.Event
// requires, deterministically, so the same window always yields the same
// aggregate id across a completion and any later failure event.
func windowAggregateID(windowID int64) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("settlement-window-%d", windowID)))
}

func (g *Gateway) publishCompletion(ctx context.Context, windowID int64, currency string, matrix *settlement.PaymentMatrix) {
	if g.msgClient == nil {
		return
	}
	event, err := messaging.NewEvent(messaging.EventTypeSettlementCompleted, windowAggregateID(windowID), messaging.SettlementCompletedData{
		WindowID:         windowID,
		Currency:         currency,
		TransactionCount: matrix.TransactionCount(),
		ControlSum:       matrix.ControlSum().String(),
	}, messaging.EventMetadata{Source: "settlementd"})
	if err != nil {
		g.logger.Warn("building completion event failed", zap.Error(err))
		return
	}
	if err := g.msgClient.Publish(ctx, messaging.EventTypeSettlementCompleted, event); err != nil {
		g.logger.Warn("publishing completion event failed", zap.Error(err))
	}
}

func (g *Gateway) publishFailure(ctx context.Context, windowID int64, settleErr error) {
	if g.msgClient == nil {
		return
	}
	kind, reason := errorKindAndReason(settleErr)
	event, err := messaging.NewEvent(messaging.EventTypeSettlementFailed, windowAggregateID(windowID), messaging.SettlementFailedData{
		WindowID: windowID,
		Kind:     kind,
		Reason:   reason,
	}, messaging.EventMetadata{Source: "settlementd"})
	if err != nil {
		g.logger.Warn("building failure event failed", zap.Error(err))
		return
	}
	if err := g.msgClient.Publish(ctx, messaging.EventTypeSettlementFailed, event); err != nil {
		g.logger.Warn("publishing failure event failed", zap.Error(err))
	}
}

// WebSocket handling

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (g *Gateway) streamWindow(c *gin.Context) {
	windowID, err := parseWindowID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := &WSClient{
		ID:       uuid.New(),
		WindowID: windowID,
		Conn:     conn,
		Send:     make(chan []byte),
		Done:     make(chan struct{}),
	}

	g.wsMu.Lock()
	g.wsClients[windowID] = append(g.wsClients[windowID], client)
	g.wsMu.Unlock()

	go g.wsReadPump(client)
	go g.wsWritePump(client)
}

func (g *Gateway) wsReadPump(client *WSClient) {
	defer func() {
		g.wsMu.Lock()
		peers := g.wsClients[client.WindowID]
		for i, c := range peers {
			if c.ID == client.ID {
				g.wsClients[client.WindowID] = append(peers[:i], peers[i+1:]...)
				break
			}
		}
		g.wsMu.Unlock()
		close(client.Done)
		client.Conn.Close()
	}()

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (g *Gateway) wsWritePump(client *WSClient) {
	for {
		select {
		case message := <-client.Send:
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-client.Done:
			return
		}
	}
}

// broadcast pushes a stage-transition message to every console subscribed to
// windowID. It never blocks on a slow or dead client.
func (g *Gateway) broadcast(windowID int64, stage string) {
	g.wsMu.RLock()
	defer g.wsMu.RUnlock()

	message, err := json.Marshal(StageMessage{WindowID: windowID, Stage: stage, At: time.Now()})
	if err != nil {
		return
	}
	for _, client := range g.wsClients[windowID] {
		select {
		case client.Send <- message:
		default:
		}
	}
}

// StageMessage is one validator→engine→emitter stage transition pushed to an
// operator console over /api/v1/windows/:id/stream.
type StageMessage struct {
	WindowID int64     `json:"window_id"`
	Stage    string    `json:"stage"`
	At       time.Time `json:"at"`
}

// Allow reports whether key may make another request within the window.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	valid := make([]time.Time, 0, len(rl.requests[key]))
	for _, t := range rl.requests[key] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

func parseWindowID(raw string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(raw, "%d", &id); err != nil {
		return 0, err
	}
	return id, nil
}
