package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestInstrumentsRecordThroughProvider(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := newOTelMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.ContactListTotal.Add(ctx, 2)
	m.AuthAttemptTotal.Add(ctx, 1)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]bool{}
	for _, md := range rm.ScopeMetrics[0].Metrics {
		names[md.Name] = true
	}
	assert.True(t, names["contacts.list.requests"])
	assert.True(t, names["auth.attempts.total"])
}

func TestRecordHelpersDoNotPanicWithoutProvider(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordContactList(ctx, "ok", 3, time.Millisecond)
		RecordContactList(ctx, "TIMEOUT", 0, time.Second)
		RecordContactWrite(ctx, "create", nil)
		RecordAuthAttempt(ctx, "login", errors.New("bad"))
	})
	assert.NotNil(t, GetMetrics())
}
