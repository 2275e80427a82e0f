package bridge

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/roomcast/roomcast/src/types"
	"github.com/rs/zerolog"
)

// redisEnvelope wraps an event with the originating instance ID so that a
// node can skip its own published events.
type redisEnvelope struct {
	InstanceID string      `json:"instance_id"`
	Event      types.Event `json:"event"`
}

// RedisBridge relays room events between server instances via Redis
// pub/sub.
type RedisBridge struct {
	client     *redis.Client
	prefix     string
	instanceID string
	room       EventTarget
	logger     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.RWMutex
	active bool
}

// NewRedisBridge creates a bridge that uses Redis pub/sub for
// cross-instance event relaying.
func NewRedisBridge(cfg *RedisConfig, room EventTarget, logger zerolog.Logger) *RedisBridge {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithCancel(context.Background())

	return &RedisBridge{
		client:     client,
		prefix:     cfg.Prefix,
		instanceID: uuid.New().String(),
		room:       room,
		logger:     logger.With().Str("component", "redis-bridge").Logger(),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start subscribes to the Redis event channel and begins relaying.
func (b *RedisBridge) Start() error {
	if err := b.client.Ping(b.ctx).Err(); err != nil {
		return err
	}

	channel := b.prefix + "events"
	sub := b.client.Subscribe(b.ctx, channel)

	// Wait for subscription confirmation.
	if _, err := sub.Receive(b.ctx); err != nil {
		return err
	}

	b.mu.Lock()
	b.active = true
	b.mu.Unlock()

	b.wg.Add(1)
	go b.listen(sub)

	b.logger.Info().
		Str("instance_id", b.instanceID).
		Str("channel", channel).
		Msg("redis bridge started")
	return nil
}

// Publish sends an accepted room event to all other instances via Redis.
func (b *RedisBridge) Publish(ev types.Event) error {
	env := redisEnvelope{
		InstanceID: b.instanceID,
		Event:      ev,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	channel := b.prefix + "events"
	return b.client.Publish(b.ctx, channel, data).Err()
}

// Stop unsubscribes and closes the Redis connection.
func (b *RedisBridge) Stop() error {
	b.mu.Lock()
	b.active = false
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()
	return b.client.Close()
}

// Available reports whether the bridge is connected.
func (b *RedisBridge) Available() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.active
}

// listen reads events from the Redis subscription and forwards them to
// the local room.
func (b *RedisBridge) listen(sub *redis.PubSub) {
	defer b.wg.Done()
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.handleRedisMessage(msg)
		case <-b.ctx.Done():
			return
		}
	}
}

// handleRedisMessage decodes an envelope and forwards non-self events to
// the room.
func (b *RedisBridge) handleRedisMessage(msg *redis.Message) {
	var env redisEnvelope
	if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
		b.logger.Error().Err(err).Msg("failed to decode redis message")
		return
	}

	// Skip events that originated from this instance.
	if env.InstanceID == b.instanceID {
		return
	}

	b.logger.Debug().
		Str("from_instance", env.InstanceID).
		Str("kind", string(env.Event.Kind)).
		Msg("relaying event from redis")

	b.room.ApplyRemote(env.Event)
}
