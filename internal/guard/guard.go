// Package guard composes the two protective policies around the
// externally exposed engine operations: per-client fixed-window rate
// limiting and idempotent duplicate-request suppression, both backed by
// the external key-value store.
//
// Availability wins over strict quota enforcement: when the store is
// unreachable, rate limiting fails OPEN (the request is permitted) and
// the decision is logged so the degradation is observable, never silent.
package guard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/healthcare-diagnosis-server/internal/domain"
	"github.com/healthcare-diagnosis-server/internal/store"
)

const (
	rateLimitPrefix  = "diagnosis:ratelimit:"
	idemResultPrefix = "diagnosis:idem:result:"
	idemLockPrefix   = "diagnosis:idem:lock:"
)

// Guard wraps engine operations with throttling and idempotency.
type Guard struct {
	store         store.KeyValue
	rateCfg       domain.RateLimitConfig
	idemCfg       domain.IdempotencyConfig
	reloadLimiter *rate.Limiter
	logger        *logrus.Logger
}

// New creates a guard over the given store.
func New(kv store.KeyValue, rateCfg domain.RateLimitConfig, idemCfg domain.IdempotencyConfig, logger *logrus.Logger) *Guard {
	perMin := rateCfg.ReloadPerMin
	if perMin <= 0 {
		perMin = 5
	}
	return &Guard{
		store:         kv,
		rateCfg:       rateCfg,
		idemCfg:       idemCfg,
		reloadLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), perMin),
		logger:        logger,
	}
}

// Allow checks the client's fixed request window. The counter key is
// created on the first request of a window and expires with it; store
// failure permits the request (fail-open).
func (g *Guard) Allow(ctx context.Context, clientKey string) error {
	count, err := g.store.IncrWithTTL(ctx, rateLimitPrefix+clientKey, g.rateCfg.Window)
	if err != nil {
		g.logger.WithFields(logrus.Fields{
			"client_key": clientKey,
			"error":      err.Error(),
		}).Warn("Rate limit store unavailable, failing open")
		return nil
	}

	if count > int64(g.rateCfg.Requests) {
		g.logger.WithFields(logrus.Fields{
			"client_key": clientKey,
			"count":      count,
			"limit":      g.rateCfg.Requests,
		}).Info("Request rejected by rate limit")
		return domain.RateLimitedError(clientKey)
	}
	return nil
}

// AllowReload throttles the administrative reload operation with an
// in-process limiter, independent of the external store.
func (g *Guard) AllowReload() error {
	if !g.reloadLimiter.Allow() {
		return domain.RateLimitedError("admin-reload")
	}
	return nil
}

// Execute runs compute under the idempotency policy. A stored result
// for the key is returned verbatim; otherwise a SetNX lock guarantees
// at most one computation proceeds, with losers polling for the
// winner's stored result. An empty key bypasses the policy.
func (g *Guard) Execute(ctx context.Context, idemKey string, compute func(context.Context) (*domain.DiagnosisResult, error)) (*domain.DiagnosisResult, error) {
	if idemKey == "" {
		return compute(ctx)
	}

	if result, ok := g.lookup(ctx, idemKey); ok {
		return result, nil
	}

	won, err := g.store.SetNX(ctx, idemLockPrefix+idemKey, "1", g.idemCfg.LockTTL)
	if err != nil {
		g.logger.WithFields(logrus.Fields{
			"idempotency_key": idemKey,
			"error":           err.Error(),
		}).Warn("Idempotency store unavailable, computing without dedup")
		return compute(ctx)
	}

	if !won {
		if result, ok := g.awaitWinner(ctx, idemKey); ok {
			return result, nil
		}
		// Winner vanished without storing a result; compute ourselves.
		return g.computeAndStore(ctx, idemKey, compute)
	}

	defer func() {
		if err := g.store.Del(context.Background(), idemLockPrefix+idemKey); err != nil {
			g.logger.WithField("idempotency_key", idemKey).Warn("Failed to release idempotency lock")
		}
	}()
	return g.computeAndStore(ctx, idemKey, compute)
}

func (g *Guard) lookup(ctx context.Context, idemKey string) (*domain.DiagnosisResult, bool) {
	raw, found, err := g.store.Get(ctx, idemResultPrefix+idemKey)
	if err != nil || !found {
		return nil, false
	}

	var result domain.DiagnosisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		g.logger.WithFields(logrus.Fields{
			"idempotency_key": idemKey,
			"error":           err.Error(),
		}).Error("Corrupt idempotency record, recomputing")
		return nil, false
	}

	g.logger.WithField("idempotency_key", idemKey).Debug("Idempotency cache hit")
	return &result, true
}

// awaitWinner polls for the winner's stored result until the lock TTL
// elapses or the caller's context is done.
func (g *Guard) awaitWinner(ctx context.Context, idemKey string) (*domain.DiagnosisResult, bool) {
	interval := g.idemCfg.PollInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	deadline := time.Now().Add(g.idemCfg.LockTTL)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil, false
		case <-ticker.C:
		}
		if result, ok := g.lookup(ctx, idemKey); ok {
			return result, true
		}
		// Lock gone without a result means the winner failed.
		if _, held, err := g.store.Get(ctx, idemLockPrefix+idemKey); err == nil && !held {
			if result, ok := g.lookup(ctx, idemKey); ok {
				return result, true
			}
			return nil, false
		}
	}
	return nil, false
}

func (g *Guard) computeAndStore(ctx context.Context, idemKey string, compute func(context.Context) (*domain.DiagnosisResult, error)) (*domain.DiagnosisResult, error) {
	result, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(result)
	if err != nil {
		g.logger.WithField("idempotency_key", idemKey).Error("Failed to encode idempotency record")
		return result, nil
	}
	if err := g.store.Set(ctx, idemResultPrefix+idemKey, string(raw), g.idemCfg.TTL); err != nil {
		g.logger.WithFields(logrus.Fields{
			"idempotency_key": idemKey,
			"error":           err.Error(),
		}).Warn("Failed to store idempotency record")
	}
	return result, nil
}
