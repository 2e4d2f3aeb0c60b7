package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"applytrack/internal/config"
	"applytrack/internal/logging"
)

// ErrProviderUnavailable is returned when no provider has been started
var ErrProviderUnavailable = errors.New("LLM provider not available")

// Manager manages LLM providers and their lifecycle
type Manager struct {
	config   *config.Config
	factory  *LLMFactory
	provider LLMProvider
	guard    *CallGuard
	logger   logging.Logger
	mu       sync.RWMutex
	healthy  bool

	stopHealth context.CancelFunc
	healthDone chan struct{}
}

// NewManager creates a new LLM manager instance
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		config:  cfg,
		factory: NewLLMFactory(cfg),
		guard:   NewCallGuard(cfg.LLM.RateLimit),
		logger:  logging.GetGlobalLogger().WithField("component", "llm_manager"),
	}
}

// NewManagerWithProvider builds a started manager around an existing provider
func NewManagerWithProvider(cfg *config.Config, provider LLMProvider) *Manager {
	m := NewManager(cfg)
	m.provider = provider
	m.healthy = true
	return m
}

// Start initializes the LLM manager and creates the provider
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("Starting LLM manager", map[string]interface{}{"provider": m.config.LLM.Provider})

	provider, err := m.factory.CreateProvider(ctx)
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}

	m.provider = provider

	healthCtx, cancel := context.WithTimeout(ctx, m.config.LLM.Timeout)
	defer cancel()

	if err := m.provider.IsHealthy(healthCtx); err != nil {
		// The server still starts; analysis endpoints report AnalysisUnavailable until a call succeeds.
		m.logger.Warn("LLM provider health check failed - analysis features will be unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		m.healthy = false
	} else {
		m.healthy = true
		m.logger.Info("LLM manager started successfully", map[string]interface{}{"provider": m.provider.GetProviderName()})
	}

	m.startHealthLoop(m.config.LLM.HealthInterval)
	return nil
}

// startHealthLoop must be called with m.mu held
func (m *Manager) startHealthLoop(interval time.Duration) {
	if interval <= 0 || m.stopHealth != nil {
		return
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	m.stopHealth = cancel
	m.healthDone = make(chan struct{})
	go m.healthLoop(loopCtx, interval, m.healthDone)
}

// healthLoop re-checks the provider until ctx is cancelled
func (m *Manager) healthLoop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, m.config.LLM.Timeout)
			err := m.CheckHealth(checkCtx)
			cancel()
			if err != nil && ctx.Err() == nil {
				m.logger.Warn("LLM provider health check failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}

// Stop shuts down the LLM manager
func (m *Manager) Stop() error {
	m.mu.Lock()
	stop, done := m.stopHealth, m.healthDone
	m.stopHealth, m.healthDone = nil, nil
	m.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("Stopping LLM manager")
	m.provider = nil
	m.healthy = false
	return nil
}

// Generate runs one completion through the configured provider, paced by the
// call guard and bounded by the configured LLM timeout.
func (m *Manager) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	m.mu.RLock()
	provider := m.provider
	m.mu.RUnlock()

	if provider == nil {
		return "", ErrProviderUnavailable
	}

	if err := m.guard.Acquire(ctx); err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, m.config.LLM.Timeout)
	defer cancel()

	start := time.Now()
	text, err := provider.Generate(callCtx, req)
	duration := time.Since(start)

	// A call abandoned by its caller says nothing about the provider
	if err == nil || ctx.Err() == nil {
		m.mu.Lock()
		m.healthy = err == nil
		m.mu.Unlock()
	}

	if err != nil {
		m.logger.Error("LLM generation failed", map[string]interface{}{
			"provider": provider.GetProviderName(),
			"duration": duration.String(),
			"error":    err.Error(),
		})
		return "", err
	}

	m.logger.Debug("LLM generation completed", map[string]interface{}{
		"provider":        provider.GetProviderName(),
		"duration":        duration.String(),
		"response_length": len(text),
	})
	return text, nil
}

// IsHealthy reports the outcome of the most recent health check or call
func (m *Manager) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthy && m.provider != nil
}

// GetProviderName returns the name of the current LLM provider
func (m *Manager) GetProviderName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.provider != nil {
		return m.provider.GetProviderName()
	}
	return "none"
}

// CheckHealth performs a health check on the LLM provider
func (m *Manager) CheckHealth(ctx context.Context) error {
	m.mu.RLock()
	provider := m.provider
	m.mu.RUnlock()

	if provider == nil {
		return ErrProviderUnavailable
	}

	err := provider.IsHealthy(ctx)

	if err == nil || ctx.Err() == nil {
		m.mu.Lock()
		m.healthy = err == nil
		m.mu.Unlock()
	}

	return err
}
