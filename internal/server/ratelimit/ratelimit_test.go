package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{},
		Blacklist:     map[string]bool{},
		EndpointConfigs: []EndpointConfig{
			{Path: "/api/builds", Method: "POST", Limit: 5, Window: time.Hour, Burst: 2},
			{Path: "/api/runs/", Method: "DELETE", Limit: 10, Window: time.Minute},
		},
	}
}

func TestLimiter_BurstThenThrottle(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	allowed, _ := l.Allow("1.2.3.4", "/api/builds", "POST")
	assert.True(t, allowed)
	allowed, _ = l.Allow("1.2.3.4", "/api/builds", "POST")
	assert.True(t, allowed)

	// Burst of 2 spent; hourly refill won't restore a token in time.
	allowed, info := l.Allow("1.2.3.4", "/api/builds", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 5, info.Limit)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 2; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/api/builds", "POST")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("1.2.3.4", "/api/builds", "POST")
	require.False(t, allowed)

	allowed, _ = l.Allow("5.6.7.8", "/api/builds", "POST")
	assert.True(t, allowed, "other clients keep their own bucket")
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	cfg := testConfig()
	cfg.Whitelist["10.0.0.1"] = true
	cfg.Blacklist["10.0.0.2"] = true
	l := NewLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/api/builds", "POST")
		assert.True(t, allowed)
	}

	allowed, _ := l.Allow("10.0.0.2", "/api/health", "GET")
	assert.False(t, allowed)
}

func TestLimiter_DisabledAllowsEverything(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/api/builds", "POST")
		assert.True(t, allowed)
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := testConfig().EndpointConfigs

	exact := MatchEndpoint("/api/builds", "POST", configs)
	require.NotNil(t, exact)
	assert.Equal(t, 5, exact.Limit)

	prefix := MatchEndpoint("/api/runs/abc-123", "DELETE", configs)
	require.NotNil(t, prefix)
	assert.Equal(t, 10, prefix.Limit)

	assert.Nil(t, MatchEndpoint("/api/projects", "GET", configs))

	health := MatchEndpoint("/api/health", "GET", configs)
	require.NotNil(t, health)
	assert.Equal(t, 0, health.Limit, "health is unlimited")
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 1000, cfg.DefaultLimit)
	assert.Equal(t, time.Minute, cfg.DefaultWindow)
	assert.NotEmpty(t, cfg.EndpointConfigs)
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	cfg := LoadConfig()
	assert.False(t, cfg.Enabled)
}

func TestParseIPList(t *testing.T) {
	assert.Empty(t, parseIPList(""))
	got := parseIPList("1.2.3.4, 5.6.7.8")
	assert.True(t, got["1.2.3.4"])
	assert.True(t, got["5.6.7.8"])
}
