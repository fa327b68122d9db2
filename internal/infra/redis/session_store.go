package redis

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"intellitest/internal/app"
	"intellitest/internal/domain"
)

const sessionPrefix = "session:"

// SessionStore keeps session state in Redis so any instance can serve a
// session. The question bank is not stored; the service rehydrates it from
// the bank repository by id.
//
// Sessions are stored as: SET session:{sessionID} {json state} EX ttl
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Save(ctx context.Context, state app.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return errors.Wrapf(err, "encode session %s", state.ID)
	}
	return errors.Wrapf(s.client.Set(ctx, s.key(state.ID), raw, s.ttl).Err(), "save session %s", state.ID)
}

func (s *SessionStore) Load(ctx context.Context, sessionID string) (app.State, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return app.State{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return app.State{}, errors.Wrapf(err, "load session %s", sessionID)
	}
	var state app.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return app.State{}, errors.Wrapf(err, "decode session %s", sessionID)
	}
	return state, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return errors.Wrapf(s.client.Del(ctx, s.key(sessionID)).Err(), "delete session %s", sessionID)
}

// SessionIDs scans the session keyspace.
func (s *SessionStore) SessionIDs(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, sessionPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), sessionPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "scan sessions")
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *SessionStore) key(sessionID string) string {
	return sessionPrefix + sessionID
}
