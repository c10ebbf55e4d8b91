package mq

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type capturePublisher struct {
	msg amqp.Publishing
	key string
}

func (c *capturePublisher) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	c.key = key
	c.msg = msg
	return nil
}

func TestPublishInjectsTraceContext(t *testing.T) {
	otel.SetTracerProvider(sdktrace.NewTracerProvider())
	otel.SetTextMapPropagator(propagation.TraceContext{})

	pub := &capturePublisher{}
	original := amqp.Table{"x-source": "test"}
	ic := NewInstrumentedChannel(pub, "contacthub")

	err := ic.PublishWithContext(context.Background(), "contacts.events", "contact.created", false, false,
		amqp.Publishing{Headers: original, Body: []byte("{}")})
	require.NoError(t, err)

	assert.Equal(t, "contact.created", pub.key)
	assert.NotEmpty(t, pub.msg.Headers["traceparent"])
	assert.Equal(t, "test", pub.msg.Headers["x-source"])
	_, leaked := original["traceparent"]
	assert.False(t, leaked)

	// 消费端能恢复同一条 trace
	ctx, span := StartConsumeSpan(context.Background(), "contacthub", amqp.Delivery{
		Headers:    pub.msg.Headers,
		RoutingKey: "contact.created",
	})
	defer span.End()
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())
}

func TestHeaderCarrier(t *testing.T) {
	c := HeaderCarrier(amqp.Table{"a": "1", "n": 2})
	assert.Equal(t, "1", c.Get("a"))
	assert.Equal(t, "", c.Get("n"))
	c.Set("b", "2")
	assert.ElementsMatch(t, []string{"a", "n", "b"}, c.Keys())
}
