package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer(t *testing.T) {
	t.Run("plain brokers", func(t *testing.T) {
		p, err := NewProducer(Config{Brokers: []string{"localhost:9092", "localhost:9093"}})
		require.NoError(t, err)
		assert.Len(t, p.brokers, 2)
		assert.Empty(t, p.writers)
		assert.Nil(t, p.transport.TLS)
		assert.Nil(t, p.transport.SASL)
	})

	t.Run("tls and scram", func(t *testing.T) {
		p, err := NewProducer(Config{
			Brokers:       []string{"kafka:9093"},
			TLS:           true,
			SASLEnabled:   true,
			SASLMechanism: "scram-sha-512",
			SASLUsername:  "credit",
			SASLPassword:  "secret",
		})
		require.NoError(t, err)
		require.NotNil(t, p.transport.TLS)
		require.NotNil(t, p.transport.SASL)
		assert.Equal(t, "SCRAM-SHA-512", p.transport.SASL.Name())
	})

	t.Run("plain sasl is the default mechanism", func(t *testing.T) {
		p, err := NewProducer(Config{Brokers: []string{"kafka:9092"}, SASLEnabled: true})
		require.NoError(t, err)
		assert.Equal(t, "PLAIN", p.transport.SASL.Name())
	})

	t.Run("unknown mechanism", func(t *testing.T) {
		_, err := NewProducer(Config{Brokers: []string{"kafka:9092"}, SASLEnabled: true, SASLMechanism: "GSSAPI"})
		assert.ErrorContains(t, err, "unsupported SASL mechanism")
	})

	t.Run("no brokers", func(t *testing.T) {
		_, err := NewProducer(Config{})
		assert.Error(t, err)
	})
}

func TestProducer_WritersArePerTopic(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)

	w1 := p.getOrCreateWriter("credit-events")
	w2 := p.getOrCreateWriter("credit-events")
	w3 := p.getOrCreateWriter("other")

	assert.Same(t, w1, w2)
	assert.NotSame(t, w1, w3)
	assert.Same(t, p.transport, w1.Transport)
	require.NoError(t, p.Close())
	assert.Empty(t, p.writers)
}

func TestProducer_PublishNothing(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	assert.NoError(t, p.Publish(context.Background(), "credit-events"))
	assert.Empty(t, p.writers)
}

func TestToKafkaMessages(t *testing.T) {
	out := toKafkaMessages([]Message{{
		Key:     []byte("credit-1"),
		Value:   []byte(`{"amount":"100.00"}`),
		Headers: map[string]string{"event_type": "credit.created"},
	}})

	require.Len(t, out, 1)
	assert.Equal(t, "credit-1", string(out[0].Key))
	require.Len(t, out[0].Headers, 1)
	assert.Equal(t, "event_type", out[0].Headers[0].Key)
	assert.Equal(t, "credit.created", string(out[0].Headers[0].Value))
}
