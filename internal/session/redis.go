package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"qr-menu/internal/cart"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	keyPrefix       = "qrmenu:"
	maxUpdateTries  = 10
	adminFlagValue  = "true"
	adminFlagSuffix = ":admin:authenticated"
	adminTimeSuffix = ":admin:login_time"
)

// RedisStore keeps sessions in Redis.
//
// Keys per session:
//
//	qrmenu:{sid}:state                 JSON cart state, expires after the state TTL
//	qrmenu:{sid}:table_number          durable table binding, no expiry
//	qrmenu:{sid}:admin:authenticated   staff login flag, expires after the admin TTL
//	qrmenu:{sid}:admin:login_time      staff login time in Unix milliseconds
type RedisStore struct {
	client      *redis.Client
	stateTTL    time.Duration
	adminTTL    time.Duration
	defaultLang cart.Language
	logger      zerolog.Logger
}

// NewRedisStore creates a store on top of client.
func NewRedisStore(client *redis.Client, stateTTL, adminTTL time.Duration, defaultLang cart.Language, logger zerolog.Logger) *RedisStore {
	return &RedisStore{
		client:      client,
		stateTTL:    stateTTL,
		adminTTL:    adminTTL,
		defaultLang: defaultLang,
		logger:      logger.With().Str("component", "redis-session-store").Logger(),
	}
}

func stateKey(sid string) string { return keyPrefix + sid + ":state" }
func tableKey(sid string) string { return keyPrefix + sid + ":table_number" }

// Load returns the state of sid, or a fresh one seeded from the durable table key.
func (s *RedisStore) Load(ctx context.Context, sid string) (cart.State, error) {
	return s.load(ctx, s.client, sid)
}

func (s *RedisStore) load(ctx context.Context, c redis.Cmdable, sid string) (cart.State, error) {
	raw, err := c.Get(ctx, stateKey(sid)).Bytes()
	switch {
	case err == nil:
		var state cart.State
		if err := json.Unmarshal(raw, &state); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sid).Msg("discarding unreadable session state")
			break
		}
		if state.Items == nil {
			state.Items = []cart.LineItem{}
		}
		return state, nil
	case !errors.Is(err, redis.Nil):
		return cart.State{}, fmt.Errorf("failed to read session state: %w", err)
	}

	state := cart.NewState(s.defaultLang)
	table, err := c.Get(ctx, tableKey(sid)).Int()
	switch {
	case err == nil:
		return restoreTable(state, table, true), nil
	case errors.Is(err, redis.Nil):
		return state, nil
	default:
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			s.logger.Warn().Str("session_id", sid).Msg("ignoring malformed table number")
			return state, nil
		}
		return cart.State{}, fmt.Errorf("failed to read table number: %w", err)
	}
}

// Update applies fn inside a WATCH/MULTI transaction, retrying when another
// writer touched the session in between.
func (s *RedisStore) Update(ctx context.Context, sid string, fn UpdateFunc) (cart.State, error) {
	key := stateKey(sid)
	var next cart.State
	var rejected error

	txf := func(tx *redis.Tx) error {
		current, err := s.load(ctx, tx, sid)
		if err != nil {
			return err
		}

		next, err = fn(current)
		if err != nil {
			next = current
			rejected = err
			return err
		}

		payload, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to encode session state: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.stateTTL)
			if next.TableNumber != nil {
				pipe.Set(ctx, tableKey(sid), strconv.Itoa(*next.TableNumber), 0)
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateTries; i++ {
		rejected = nil
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return next, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			s.logger.Debug().Str("session_id", sid).Int("attempt", i+1).Msg("session update raced, retrying")
			continue
		}
		if rejected != nil {
			// fn refused the change; the stored state is still current.
			return next, err
		}
		return cart.State{}, err
	}

	return cart.State{}, ErrConflict
}

// SetAdmin writes both staff login keys with the admin TTL.
func (s *RedisStore) SetAdmin(ctx context.Context, sid string, loginTime time.Time) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, keyPrefix+sid+adminFlagSuffix, adminFlagValue, s.adminTTL)
		pipe.Set(ctx, keyPrefix+sid+adminTimeSuffix, strconv.FormatInt(loginTime.UnixMilli(), 10), s.adminTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store admin session: %w", err)
	}
	return nil
}

// Admin reads the staff login keys of sid. Missing or malformed keys yield
// the zero value.
func (s *RedisStore) Admin(ctx context.Context, sid string) (AdminSession, error) {
	values, err := s.client.MGet(ctx, keyPrefix+sid+adminFlagSuffix, keyPrefix+sid+adminTimeSuffix).Result()
	if err != nil {
		return AdminSession{}, fmt.Errorf("failed to read admin session: %w", err)
	}

	flag, _ := values[0].(string)
	rawTime, _ := values[1].(string)
	if flag != adminFlagValue || rawTime == "" {
		return AdminSession{}, nil
	}

	ms, err := strconv.ParseInt(rawTime, 10, 64)
	if err != nil {
		s.logger.Warn().Str("session_id", sid).Msg("ignoring malformed admin login time")
		return AdminSession{}, nil
	}

	return AdminSession{Authenticated: true, LoginTime: time.UnixMilli(ms)}, nil
}

// ClearAdmin deletes both staff login keys of sid.
func (s *RedisStore) ClearAdmin(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, keyPrefix+sid+adminFlagSuffix, keyPrefix+sid+adminTimeSuffix).Err(); err != nil {
		return fmt.Errorf("failed to clear admin session: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
