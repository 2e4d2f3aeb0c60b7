package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applytrack/internal/config"
)

func TestEnvelopeJSON(t *testing.T) {
	at := time.Date(2025, 2, 3, 4, 5, 6, 0, time.FixedZone("X", 3600))
	env := newEnvelope(ApplicationCreated, map[string]string{"applicationId": "a1"}, at)

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "application.created", decoded["type"])
	assert.Equal(t, "2025-02-03T03:05:06Z", decoded["occurredAt"])
	assert.NotEmpty(t, decoded["id"])
	assert.Equal(t, map[string]interface{}{"applicationId": "a1"}, decoded["data"])
}

func TestNewAMQPPublisherRequiresURL(t *testing.T) {
	_, err := NewAMQPPublisher(config.Default())
	assert.Error(t, err)
}

func TestClosedPublisherRejects(t *testing.T) {
	p := &AMQPPublisher{exchange: "x"}
	assert.NoError(t, p.Close())
	assert.Error(t, p.Publish(context.Background(), BulkApplyCompleted, nil))
}

func TestNoop(t *testing.T) {
	var n Noop
	assert.NoError(t, n.Publish(context.Background(), ApplicationStatusChanged, struct{}{}))
	assert.NoError(t, n.Close())
}
