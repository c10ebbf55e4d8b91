package otel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContactHub/config"
)

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		production   bool
		wantEndpoint string
		wantInsecure bool
	}{
		{"http scheme", "http://collector:4317", true, "collector:4317", true},
		{"https scheme", "https://collector:4317/", false, "collector:4317", false},
		{"bare in development", "collector:4317", false, "collector:4317", true},
		{"bare in production", "collector:4317", true, "collector:4317", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint, insecure := splitEndpoint(tt.raw, tt.production)
			assert.Equal(t, tt.wantEndpoint, endpoint)
			assert.Equal(t, tt.wantInsecure, insecure)
		})
	}
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		ratio float64
		want  string
	}{
		{"development samples everything", "development", 0.01, "AlwaysOnSampler"},
		{"ratio in production", "production", 0.25, "TraceIDRatioBased{0.25}"},
		{"unset ratio falls back", "staging", 0, "TraceIDRatioBased{0.1}"},
		{"full ratio follows parent", "production", 1, "ParentBased{root:AlwaysOnSampler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &config.Config{Environment: tt.env, OTelSampleRatio: tt.ratio}
			assert.Contains(t, samplerFor(c).Description(), tt.want)
		})
	}
}

func TestSettingsFrom(t *testing.T) {
	c := &config.Config{
		Environment:     "production",
		ServiceName:     "contacthub",
		ServiceVersion:  "1.4.0",
		OTelEndpoint:    "https://otel.internal:4317",
		OTelSampleRatio: 0.5,
	}

	s := settingsFrom(c)
	assert.Equal(t, "otel.internal:4317", s.endpoint)
	assert.False(t, s.insecure)
	assert.Equal(t, 30*time.Second, s.metricInterval)

	values := map[string]string{}
	for _, kv := range s.attributes {
		values[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "contacthub", values["service.name"])
	assert.Equal(t, "1.4.0", values["service.version"])
	assert.Equal(t, "production", values["deployment.environment"])
}

func TestInitWithoutEndpoint(t *testing.T) {
	prev := config.Cfg
	t.Cleanup(func() { config.Cfg = prev })
	config.Cfg.OTelEndpoint = ""

	shutdown, err := Init(context.Background())
	require.ErrorIs(t, err, ErrDisabled)
	assert.Nil(t, shutdown)
}
