package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/healthcare-diagnosis-server/internal/domain"
)

// Lifecycle manages the active model bundle through the states
// Unloaded -> Loading -> Ready, with Ready -> Reloading -> Ready on
// reload. The active bundle sits behind an atomic pointer: readers
// never block on a reload, and a failed reload leaves the previous
// bundle serving untouched. The single swap point is the only
// mutual exclusion the engine needs.
type Lifecycle struct {
	dataCfg    domain.DataConfig
	matcherCfg domain.MatcherConfig
	logger     *logrus.Logger

	bundle atomic.Pointer[Bundle]

	mu    sync.Mutex // serializes load/reload and state transitions
	state domain.EngineState
}

// NewLifecycle creates a manager in the Unloaded state.
func NewLifecycle(dataCfg domain.DataConfig, matcherCfg domain.MatcherConfig, logger *logrus.Logger) *Lifecycle {
	return &Lifecycle{
		dataCfg:    dataCfg,
		matcherCfg: matcherCfg,
		logger:     logger,
		state:      domain.StateUnloaded,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() domain.EngineState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Lifecycle) setState(s domain.EngineState) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// Acquire returns the active bundle for one query. Queries arriving
// before any bundle is published fail fast with ModelsUnavailable
// rather than blocking.
func (l *Lifecycle) Acquire() (*Bundle, error) {
	if b := l.bundle.Load(); b != nil {
		return b, nil
	}
	return nil, domain.ModelsUnavailableError(l.State())
}

// Load performs the initial bundle build. It is not safe to race with
// Reload; call it once at startup before serving.
func (l *Lifecycle) Load() error {
	l.mu.Lock()
	if l.state != domain.StateUnloaded {
		l.mu.Unlock()
		return nil
	}
	l.state = domain.StateLoading
	l.mu.Unlock()

	bundle, err := BuildBundle(l.dataCfg, l.matcherCfg, l.logger)
	if err != nil {
		l.setState(domain.StateUnloaded)
		l.logger.WithError(err).Error("Initial model load failed")
		return err
	}

	l.bundle.Store(bundle)
	l.setState(domain.StateReady)
	l.logger.WithField("loaded_at", bundle.LoadedAt).Info("Models loaded")
	return nil
}

// Reload builds a fresh bundle and atomically publishes it. All-or-
// nothing: on any failure the prior bundle stays active and the state
// returns to Ready. Safe to call while queries are in flight; only one
// reload runs at a time.
func (l *Lifecycle) Reload() *domain.ReloadResult {
	l.mu.Lock()
	if l.state != domain.StateReady {
		state := l.state
		l.mu.Unlock()
		return &domain.ReloadResult{
			Success: false,
			Message: "engine is not ready to reload (state " + state.String() + ")",
		}
	}
	l.state = domain.StateReloading
	l.mu.Unlock()

	bundle, err := BuildBundle(l.dataCfg, l.matcherCfg, l.logger)
	if err != nil {
		l.setState(domain.StateReady)
		prior := l.bundle.Load()
		l.logger.WithError(err).Error("Model reload failed, previous bundle retained")
		result := &domain.ReloadResult{Success: false, Message: "reload failed: " + err.Error()}
		if prior != nil {
			result.BundleLoadAt = prior.LoadedAt
		}
		return result
	}

	// Single swap point. In-flight queries holding the old bundle keep
	// it alive until they finish; the runtime reclaims it afterwards.
	l.bundle.Store(bundle)
	l.setState(domain.StateReady)

	l.logger.WithField("loaded_at", bundle.LoadedAt).Info("Models reloaded")
	return &domain.ReloadResult{Success: true, BundleLoadAt: bundle.LoadedAt}
}

// Health reports the current state and bundle age.
func (l *Lifecycle) Health() domain.HealthReport {
	report := domain.HealthReport{Status: l.State()}
	if b := l.bundle.Load(); b != nil {
		report.LoadedAt = b.LoadedAt
		report.BundleAge = time.Since(b.LoadedAt)
	}
	return report
}
