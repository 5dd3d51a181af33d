package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// stateKeyPrefix namespaces view state hashes in Redis. One hash per
// session, one field per view.
const stateKeyPrefix = "listview:"

// StateStore persists ViewState per session and view in Redis so filters,
// page and selection survive full page reloads.
type StateStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStateStore creates a Redis-backed view state store. Entries expire
// ttl after the last write.
func NewStateStore(rdb *redis.Client, ttl time.Duration) *StateStore {
	return &StateStore{rdb: rdb, ttl: ttl}
}

// Load returns the stored state for (sessionKey, view), or fallback when
// nothing is stored. Corrupt entries are treated as absent.
func (s *StateStore) Load(ctx context.Context, sessionKey, view string, fallback ViewState) (ViewState, error) {
	raw, err := s.rdb.HGet(ctx, stateKeyPrefix+sessionKey, view).Bytes()
	if errors.Is(err, redis.Nil) {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("loading view state %s: %w", view, err)
	}

	var st ViewState
	if err := json.Unmarshal(raw, &st); err != nil {
		return fallback, nil
	}
	st.Filters = st.Filters.Normalize()
	st.Window = NewWindow(st.Window.CurrentPage, st.Window.ItemsPerPage)
	if st.Selected == nil {
		st.Selected = map[string]bool{}
	}
	return st, nil
}

// Save writes the state for (sessionKey, view) and refreshes the TTL.
func (s *StateStore) Save(ctx context.Context, sessionKey, view string, st ViewState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshaling view state: %w", err)
	}

	key := stateKeyPrefix + sessionKey
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, view, raw)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("saving view state %s: %w", view, err)
	}
	return nil
}

// Clear drops every view's state for a session. Called on sign-out.
func (s *StateStore) Clear(ctx context.Context, sessionKey string) error {
	if err := s.rdb.Del(ctx, stateKeyPrefix+sessionKey).Err(); err != nil {
		return fmt.Errorf("clearing view state: %w", err)
	}
	return nil
}
