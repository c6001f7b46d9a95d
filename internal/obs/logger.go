// Package obs centralizes the ambient observability collaborators:
// structured logging, used by settlementd and fxingest, and timeseries
// metrics, used by settlementd. Neither the netting engine nor the ISO 20022
// emitter import this package directly — the core stays side-effect-free
// per §5 — but the commands wrap their calls into the core with the logger
// (and, in settlementd, the metrics writer) built here.
package obs

import "go.uber.org/zap"

// NewLogger builds the process-wide structured logger. Production builds
// get zap's JSON production config; anything else gets the human-readable
// development config.
func NewLogger(isProd bool) (*zap.Logger, error) {
	if isProd {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
