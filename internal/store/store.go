// Package store is the durable keyed store for users, chat sessions and
// bookings. One logical Redis namespace partitioned by key prefix; records
// are lazily materialized into memory on first touch and every mutation
// writes through to Redis before it is acknowledged.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/vietride/server/internal/catalog"
	errx "github.com/vietride/server/internal/core/error"
	logx "github.com/vietride/server/pkg/logger"
)

const (
	sessionPrefix  = "session_"
	userPrefix     = "user_"
	bookingsPrefix = "bookings_"
)

// Store serves reads from its in-memory index and writes through to Redis.
// One store instance per underlying Redis namespace; the index is guarded by
// a single mutex.
type Store struct {
	rdb redis.Cmdable
	now func() time.Time

	mu       sync.Mutex
	loaded   bool
	sessions map[string]SessionInfo
	users    map[string]User
	bookings map[string][]Booking
}

// New creates a store over the given Redis connection. No data is loaded
// until the first operation.
func New(rdb redis.Cmdable) *Store {
	return &Store{
		rdb:      rdb,
		now:      time.Now,
		sessions: make(map[string]SessionInfo),
		users:    make(map[string]User),
		bookings: make(map[string][]Booking),
	}
}

// ensureLoaded materializes all persisted records into memory once. Safe to
// call any number of times; a no-op after the first successful run. Caller
// must hold s.mu.
func (s *Store) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	if err := loadPrefix(ctx, s.rdb, sessionPrefix, s.sessions); err != nil {
		return err
	}
	if err := loadPrefix(ctx, s.rdb, userPrefix, s.users); err != nil {
		return err
	}
	if err := loadPrefix(ctx, s.rdb, bookingsPrefix, s.bookings); err != nil {
		return err
	}

	s.loaded = true
	logx.Debug().
		Int("sessions", len(s.sessions)).
		Int("users", len(s.users)).
		Int("bookings", len(s.bookings)).
		Msg("store materialized")
	return nil
}

// loadPrefix scans one key family and decodes every value into the target
// map, keyed by the id with the prefix stripped.
func loadPrefix[T any](ctx context.Context, rdb redis.Cmdable, prefix string, into map[string]T) error {
	iter := rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := rdb.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return errx.WrapRedis(err)
		}
		var v T
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return fmt.Errorf("unmarshal %s: %w", key, err)
		}
		into[key[len(prefix):]] = v
	}
	if err := iter.Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}

// put persists a record under prefix+id. The in-memory index must only be
// updated after put succeeds.
func (s *Store) put(ctx context.Context, prefix, id string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s%s: %w", prefix, id, err)
	}
	if err := s.rdb.Set(ctx, prefix+id, b, 0).Err(); err != nil {
		logx.Error().Err(err).Str("key", prefix+id).Msg("write-through failed")
		return errx.WrapRedis(err)
	}
	return nil
}

// ── Users ────────────────────────────────────────────────────────────────

// RegisterUser creates an account. Email uniqueness is exact-match on the
// stored form.
func (s *Store) RegisterUser(ctx context.Context, email, password string) (AuthData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return AuthData{}, err
	}

	for _, u := range s.users {
		if u.Email == email {
			return AuthData{}, errx.New(errx.ErrDuplicateEmail, http.StatusBadRequest, "User with this email already exists.")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return AuthData{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.put(ctx, userPrefix, user.ID, user); err != nil {
		return AuthData{}, err
	}
	s.users[user.ID] = user

	return AuthData{
		User:  PublicUser{ID: user.ID, Email: user.Email},
		Token: user.ID,
	}, nil
}

// LoginUser verifies credentials and issues the mock token.
func (s *Store) LoginUser(ctx context.Context, email, password string) (AuthData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return AuthData{}, err
	}

	for _, u := range s.users {
		if u.Email == email {
			if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
				break
			}
			return AuthData{
				User:  PublicUser{ID: u.ID, Email: u.Email},
				Token: u.ID,
			}, nil
		}
	}
	return AuthData{}, errx.New(errx.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password.")
}

// GetUser resolves a user by id, used for bearer-token validation.
func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return User{}, err
	}
	u, ok := s.users[id]
	if !ok {
		return User{}, errx.New(errx.ErrUserNotFound, http.StatusNotFound, "User not found.")
	}
	return u, nil
}

// ── Bookings ─────────────────────────────────────────────────────────────

// AddBooking appends a booking holding a snapshot of the trip and persists
// the user's whole booking list.
func (s *Store) AddBooking(ctx context.Context, userID string, trip catalog.Trip) (Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return Booking{}, err
	}
	if _, ok := s.users[userID]; !ok {
		return Booking{}, errx.New(errx.ErrUserNotFound, http.StatusNotFound, "User not found.")
	}

	booking := Booking{
		ID:          "B-" + uuid.NewString()[:8],
		UserID:      userID,
		Trip:        trip,
		BookingDate: s.now(),
	}

	list := append(append([]Booking{}, s.bookings[userID]...), booking)
	if err := s.put(ctx, bookingsPrefix, userID, list); err != nil {
		return Booking{}, err
	}
	s.bookings[userID] = list
	return booking, nil
}

// GetBookings lists a user's bookings, most recent first.
func (s *Store) GetBookings(ctx context.Context, userID string) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if _, ok := s.users[userID]; !ok {
		return nil, errx.New(errx.ErrUserNotFound, http.StatusNotFound, "User not found.")
	}

	list := append([]Booking{}, s.bookings[userID]...)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].BookingDate.After(list[j].BookingDate)
	})
	return list, nil
}

// ── Sessions ─────────────────────────────────────────────────────────────

// AddSession records a conversation. An empty title defaults to a dated one.
func (s *Store) AddSession(ctx context.Context, id, title string) (SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return SessionInfo{}, err
	}

	now := s.now()
	if title == "" {
		title = "Chat " + now.Format("1/2/2006")
	}
	info := SessionInfo{
		ID:         id,
		Title:      title,
		CreatedAt:  now.UnixMilli(),
		LastActive: now.UnixMilli(),
	}
	if err := s.put(ctx, sessionPrefix, id, info); err != nil {
		return SessionInfo{}, err
	}
	s.sessions[id] = info
	return info, nil
}

// RemoveSession deletes one session record, reporting whether it existed.
func (s *Store) RemoveSession(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}
	if _, ok := s.sessions[id]; !ok {
		return false, nil
	}
	if err := s.rdb.Del(ctx, sessionPrefix+id).Err(); err != nil {
		return false, errx.WrapRedis(err)
	}
	delete(s.sessions, id)
	return true, nil
}

// TouchSession bumps a session's lastActive. Unknown ids are a no-op.
func (s *Store) TouchSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	info, ok := s.sessions[id]
	if !ok {
		return nil
	}
	info.LastActive = s.now().UnixMilli()
	if err := s.put(ctx, sessionPrefix, id, info); err != nil {
		return err
	}
	s.sessions[id] = info
	return nil
}

// UpdateSessionTitle renames a session, reporting whether it existed.
func (s *Store) UpdateSessionTitle(ctx context.Context, id, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}
	info, ok := s.sessions[id]
	if !ok {
		return false, nil
	}
	info.Title = title
	if err := s.put(ctx, sessionPrefix, id, info); err != nil {
		return false, err
	}
	s.sessions[id] = info
	return true, nil
}

// ListSessions returns all sessions ordered by lastActive descending.
func (s *Store) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	list := make([]SessionInfo, 0, len(s.sessions))
	for _, info := range s.sessions {
		list = append(list, info)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].LastActive > list[j].LastActive
	})
	return list, nil
}

// SessionCount returns the number of known sessions.
func (s *Store) SessionCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	return len(s.sessions), nil
}

// ClearAllSessions removes every session record, both in memory and durably,
// and returns the number removed.
func (s *Store) ClearAllSessions(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	count := len(s.sessions)
	if count == 0 {
		return 0, nil
	}

	keys := make([]string, 0, count)
	for id := range s.sessions {
		keys = append(keys, sessionPrefix+id)
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return 0, errx.WrapRedis(err)
	}
	s.sessions = make(map[string]SessionInfo)
	return count, nil
}
