package bridge

import (
	"encoding/json"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomcast/roomcast/src/types"
)

// mockEventTarget records events forwarded from the bridge.
type mockEventTarget struct {
	received []types.Event
}

func (m *mockEventTarget) ApplyRemote(ev types.Event) {
	m.received = append(m.received, ev)
}

func TestRedisEnvelopeRoundTrip(t *testing.T) {
	events := []types.Event{
		{Name: "alice", Kind: types.EventMessage, Body: "hi there"},
		{Name: "bob", Kind: types.EventStartedTyping},
		{Name: "carol", Kind: types.EventJoined},
		{Kind: types.EventNotice, Body: "restarting soon"},
	}

	for _, ev := range events {
		env := redisEnvelope{InstanceID: "node-1", Event: ev}

		data, err := json.Marshal(env)
		require.NoError(t, err)

		var out redisEnvelope
		require.NoError(t, json.Unmarshal(data, &out))

		assert.Equal(t, "node-1", out.InstanceID)
		assert.Equal(t, ev, out.Event)
	}
}

func TestDefaultRedisConfig(t *testing.T) {
	cfg := DefaultRedisConfig()
	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Empty(t, cfg.Password)
	assert.Equal(t, 0, cfg.DB)
	assert.Equal(t, "roomcast:", cfg.Prefix)
}

func TestRedisConfigFromEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis.example.com:6380")
	t.Setenv("REDIS_PASSWORD", "secret")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_PREFIX", "test:")

	cfg := RedisConfigFromEnv()
	assert.Equal(t, "redis.example.com:6380", cfg.Addr)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, 3, cfg.DB)
	assert.Equal(t, "test:", cfg.Prefix)
}

func TestRedisConfigFromEnvInvalidDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := RedisConfigFromEnv()
	assert.Equal(t, 0, cfg.DB) // falls back to default
}

func TestRedisBridgeAvailableFalseBeforeStart(t *testing.T) {
	target := &mockEventTarget{}
	rb := NewRedisBridge(DefaultRedisConfig(), target, zerolog.Nop())
	assert.False(t, rb.Available())
}

func TestRedisBridgeSkipsOwnEvents(t *testing.T) {
	target := &mockEventTarget{}
	rb := NewRedisBridge(DefaultRedisConfig(), target, zerolog.Nop())

	own, err := json.Marshal(redisEnvelope{
		InstanceID: rb.instanceID,
		Event:      types.Event{Name: "alice", Kind: types.EventMessage, Body: "echo"},
	})
	require.NoError(t, err)
	other, err := json.Marshal(redisEnvelope{
		InstanceID: "someone-else",
		Event:      types.Event{Name: "bob", Kind: types.EventJoined},
	})
	require.NoError(t, err)

	rb.handleRedisMessage(redisMessage(string(own)))
	rb.handleRedisMessage(redisMessage(string(other)))
	rb.handleRedisMessage(redisMessage("not json"))

	require.Len(t, target.received, 1)
	assert.Equal(t, "bob", target.received[0].Name)
}

func redisMessage(payload string) *redis.Message {
	return &redis.Message{Payload: payload}
}

func TestRedisBridgeInstanceIDUnique(t *testing.T) {
	target := &mockEventTarget{}
	b1 := NewRedisBridge(DefaultRedisConfig(), target, zerolog.Nop())
	b2 := NewRedisBridge(DefaultRedisConfig(), target, zerolog.Nop())
	assert.NotEqual(t, b1.instanceID, b2.instanceID)
}
