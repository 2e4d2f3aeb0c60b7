package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applytrack/internal/config"
)

type stubProvider struct {
	reply    string
	err      error
	calls    int
	deadline bool
}

func (p *stubProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	p.calls++
	_, p.deadline = ctx.Deadline()
	return p.reply, p.err
}

func (p *stubProvider) IsHealthy(ctx context.Context) error { return p.err }

func (p *stubProvider) GetProviderName() string { return "stub" }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.LLM.RateLimit = 0
	cfg.LLM.Timeout = time.Second
	return cfg
}

func TestManagerGenerateAppliesTimeout(t *testing.T) {
	provider := &stubProvider{reply: `{"ok":true}`}
	m := NewManagerWithProvider(testConfig(), provider)

	text, err := m.Generate(context.Background(), GenerateRequest{System: "sys", Prompt: "prompt", JSON: true})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)
	assert.True(t, provider.deadline)
	assert.True(t, m.IsHealthy())
	assert.Equal(t, "stub", m.GetProviderName())
}

func TestManagerWithoutProvider(t *testing.T) {
	m := NewManager(testConfig())

	_, err := m.Generate(context.Background(), GenerateRequest{Prompt: "prompt"})
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.False(t, m.IsHealthy())
	assert.Equal(t, "none", m.GetProviderName())
	assert.ErrorIs(t, m.CheckHealth(context.Background()), ErrProviderUnavailable)
}

// flakyProvider fails its first failFirst calls and succeeds afterwards
type flakyProvider struct {
	mu        sync.Mutex
	failFirst int
	calls     int
	checks    int
}

func (p *flakyProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.failFirst {
		return "", errors.New("upstream 500")
	}
	return "ok", nil
}

func (p *flakyProvider) IsHealthy(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checks++
	if p.calls < p.failFirst {
		return errors.New("upstream 500")
	}
	return nil
}

func (p *flakyProvider) GetProviderName() string { return "flaky" }

func (p *flakyProvider) counts() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls, p.checks
}

func TestManagerSendsEveryCallAfterRepeatedFailures(t *testing.T) {
	provider := &flakyProvider{failFirst: 5}
	m := NewManagerWithProvider(testConfig(), provider)

	failures := 0
	for i := 0; i < 8; i++ {
		if _, err := m.Generate(context.Background(), GenerateRequest{Prompt: "p"}); err != nil {
			failures++
		}
	}

	calls, _ := provider.counts()
	assert.Equal(t, 8, calls)
	assert.Equal(t, 5, failures)
	assert.True(t, m.IsHealthy())
}

// cancellingProvider cancels the caller's context mid-call
type cancellingProvider struct {
	cancel context.CancelFunc
	calls  int
}

func (p *cancellingProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	p.calls++
	p.cancel()
	<-ctx.Done()
	return "", ctx.Err()
}

func (p *cancellingProvider) IsHealthy(ctx context.Context) error { return nil }

func (p *cancellingProvider) GetProviderName() string { return "cancelling" }

func TestManagerIgnoresCallerCancellationForHealth(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	provider := &cancellingProvider{cancel: cancel}
	m := NewManagerWithProvider(testConfig(), provider)

	for i := 0; i < 6; i++ {
		_, err := m.Generate(ctx, GenerateRequest{Prompt: "p"})
		require.Error(t, err)
	}
	assert.Equal(t, 1, provider.calls)
	assert.True(t, m.IsHealthy())
}

func TestManagerHealthLoopRechecksProvider(t *testing.T) {
	provider := &flakyProvider{}
	m := NewManagerWithProvider(testConfig(), provider)

	m.mu.Lock()
	m.startHealthLoop(10 * time.Millisecond)
	m.mu.Unlock()

	assert.Eventually(t, func() bool {
		_, checks := provider.counts()
		return checks >= 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, m.Stop())
	assert.False(t, m.IsHealthy())

	_, before := provider.counts()
	time.Sleep(30 * time.Millisecond)
	_, after := provider.counts()
	assert.Equal(t, before, after)
}

func TestCallGuardWithoutLimitHonoursContext(t *testing.T) {
	g := NewCallGuard(0)
	require.NoError(t, g.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, g.Acquire(ctx), context.Canceled)
}

func TestCallGuardPacesCalls(t *testing.T) {
	g := NewCallGuard(60)
	for i := 0; i < 5; i++ {
		require.NoError(t, g.Acquire(context.Background()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, g.Acquire(ctx))
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.Provider = "mystery"

	_, err := NewLLMFactory(cfg).CreateProvider(context.Background())
	assert.Error(t, err)
	assert.ElementsMatch(t, []string{"claude", "gemini"}, NewLLMFactory(cfg).GetSupportedProviders())
}
