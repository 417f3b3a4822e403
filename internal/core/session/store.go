// Package session implements the persisted session store: the single
// source of truth for "who is logged in" on one client connection,
// synchronised with durable client storage so a reload does not force a
// re-login.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/talentbridge/gateway/internal/core/domain"
	"github.com/talentbridge/gateway/internal/core/ports"
)

// FallbackErrorMessage is surfaced when the backend fails without a
// user-displayable message of its own.
const FallbackErrorMessage = "something went wrong, please try again"

const defaultVerifyTimeout = 5 * time.Second

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Store owns one client's session. All multi-field mutations happen under
// the mutex, so observers never see a partially updated session. The epoch
// counter implements last-write-wins across actions: every state-clearing
// or state-replacing action bumps it, and a background verification result
// is dropped when its captured epoch is no longer current.
type Store struct {
	storage ports.SessionStorage
	backend ports.BackendClient
	log     zerolog.Logger

	verifyTimeout time.Duration

	mu         sync.Mutex
	sess       domain.Session
	epoch      uint64
	verifyDone chan struct{}
}

// NewStore builds a Store over the given durable storage and backend
// client. The store starts empty and unhydrated.
func NewStore(storage ports.SessionStorage, backend ports.BackendClient, log zerolog.Logger) *Store {
	return &Store{
		storage:       storage,
		backend:       backend,
		log:           log,
		verifyTimeout: defaultVerifyTimeout,
	}
}

// Snapshot returns a consistent copy of the current session.
func (s *Store) Snapshot() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

// Login exchanges credentials for a session. On success the session is
// swapped atomically and persisted; on failure auth fields are cleared and
// the server-provided message (or a generic fallback) is recorded. The
// returned error is the result discriminator; it never panics past this
// boundary.
func (s *Store) Login(ctx context.Context, creds ports.Credentials) error {
	return s.authenticate(ctx, func() (*ports.AuthResult, error) {
		return s.backend.Login(ctx, creds)
	})
}

// Register creates an account; same contract as Login.
func (s *Store) Register(ctx context.Context, reg ports.Registration) error {
	return s.authenticate(ctx, func() (*ports.AuthResult, error) {
		return s.backend.Register(ctx, reg)
	})
}

func (s *Store) authenticate(ctx context.Context, call func() (*ports.AuthResult, error)) error {
	s.mu.Lock()
	s.sess.IsLoading = true
	s.sess.Error = ""
	s.mu.Unlock()

	res, err := call()
	if err == nil && (res == nil || res.User == nil || res.Token == "") {
		// A half-formed grant would violate the session invariant.
		err = &domain.APIError{Status: 502, Message: FallbackErrorMessage}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++

	if err != nil {
		s.sess.User = nil
		s.sess.Token = ""
		s.sess.IsAuthenticated = false
		s.sess.IsLoading = false
		s.sess.Error = userMessage(err)
		return err
	}

	s.sess = domain.Session{
		User:            res.User,
		Token:           res.Token,
		IsAuthenticated: true,
		HasHydrated:     true,
	}
	s.persistLocked(ctx)
	return nil
}

// Logout signs the client out. The backend call is best effort: a failure
// is logged and swallowed, and the local session plus every durable
// storage key is cleared regardless, so sign-out never depends on backend
// reachability.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.sess.Token
	s.mu.Unlock()

	if token != "" {
		if err := s.backend.Logout(ctx, token); err != nil {
			s.log.Warn().Err(err).Msg("backend logout failed; clearing local session anyway")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.sess = domain.Session{HasHydrated: true}
	s.clearStorageLocked(ctx)
}

// CheckAuth hydrates the session from durable storage and verifies the
// stored token against the backend:
//
//  1. unavailable storage: loading ends, auth state untouched;
//  2. no stored token: terminal unauthenticated state, no network call;
//  3. cached user: applied optimistically so rendering needn't wait on the
//     network — rolled back by step 4 if the backend disagrees;
//  4. background current-user fetch; rejection clears everything.
//
// Steps 1-3 complete before CheckAuth returns. The returned channel closes
// when step 4 settles; on the fast paths it is already closed. Repeat
// calls while hydrated return the channel of the in-flight (or finished)
// verification instead of re-running the flow. A login or logout that
// completes while the storage read is in flight wins over the read.
func (s *Store) CheckAuth(ctx context.Context) <-chan struct{} {
	s.mu.Lock()
	if s.sess.HasHydrated && s.verifyDone != nil {
		ch := s.verifyDone
		s.mu.Unlock()
		return ch
	}
	if !s.storage.Available() {
		s.sess.IsLoading = false
		s.sess.HasHydrated = true
		s.verifyDone = closedChan
		s.mu.Unlock()
		return closedChan
	}
	s.sess.IsLoading = true
	epoch := s.epoch
	s.mu.Unlock()

	persisted, err := s.storage.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("session storage read failed; treating as empty")
		persisted = nil
	}

	s.mu.Lock()

	if s.epoch != epoch {
		// A login or logout settled while the read was in flight; its
		// result wins, and the stale read is dropped.
		s.sess.IsLoading = false
		if s.verifyDone == nil {
			s.verifyDone = closedChan
		}
		ch := s.verifyDone
		s.mu.Unlock()
		return ch
	}

	if persisted == nil || persisted.Token == "" {
		s.sess = domain.Session{HasHydrated: true}
		s.verifyDone = closedChan
		s.mu.Unlock()
		return closedChan
	}

	if persisted.IsAuthenticated && persisted.User == nil {
		// Token without user is an invalid persisted state: full sign-out.
		s.epoch++
		s.sess = domain.Session{HasHydrated: true}
		s.verifyDone = closedChan
		s.clearStorageLocked(ctx)
		s.mu.Unlock()
		return closedChan
	}

	if tokenExpired(persisted.Token) {
		s.epoch++
		s.sess = domain.Session{HasHydrated: true}
		s.verifyDone = closedChan
		s.clearStorageLocked(ctx)
		s.mu.Unlock()
		return closedChan
	}

	token := persisted.Token
	if persisted.User != nil {
		// Optimistic hydration: trust the cached record until the backend
		// answers, so the first render needn't wait on the network.
		s.sess = domain.Session{
			User:            persisted.User,
			Token:           token,
			IsAuthenticated: true,
			IsLoading:       true,
			HasHydrated:     true,
		}
	} else {
		s.sess = domain.Session{
			Token:       token,
			IsLoading:   true,
			HasHydrated: true,
		}
	}

	done := make(chan struct{})
	s.verifyDone = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		s.verify(ctx, token, epoch)
	}()
	return done
}

// VerificationDone exposes the channel of the most recent hydration cycle,
// or nil when CheckAuth has never run. Guards wait on it for a bounded
// grace window.
func (s *Store) VerificationDone() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.verifyDone == nil {
		return nil
	}
	return s.verifyDone
}

func (s *Store) verify(ctx context.Context, token string, epoch uint64) {
	vctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.verifyTimeout)
	defer cancel()

	user, err := s.backend.CurrentUser(vctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		// A logout or fresh login superseded this verification; applying
		// it now would resurrect a dead session.
		return
	}

	if err != nil {
		// Expired or rejected token: silent sign-out. The user-visible
		// effect is only the redirect to login.
		s.epoch++
		s.sess = domain.Session{HasHydrated: true}
		s.clearStorageLocked(vctx)
		return
	}

	s.sess.User = user
	s.sess.Token = token
	s.sess.IsAuthenticated = true
	s.sess.IsLoading = false
	s.persistLocked(vctx)
}

// UpdateUser replaces the user record in memory and storage. Token and
// authentication flag are untouched.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.User = user
	s.persistLocked(ctx)
}

// ClearError drops the surfaced error message.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.Error = ""
}

// SetLoading overrides the loading flag.
func (s *Store) SetLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.IsLoading = v
}

func (s *Store) persistLocked(ctx context.Context) {
	if !s.storage.Available() {
		return
	}
	err := s.storage.Save(ctx, &domain.PersistedSession{
		User:            s.sess.User,
		Token:           s.sess.Token,
		IsAuthenticated: s.sess.IsAuthenticated,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("session storage write failed")
	}
}

func (s *Store) clearStorageLocked(ctx context.Context) {
	if !s.storage.Available() {
		return
	}
	if err := s.storage.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("session storage clear failed")
	}
}

// tokenExpired decodes the bearer token's registered claims without
// verifying the signature (only the backend holds the key) and reports
// whether it is already expired. Opaque non-JWT tokens are left for the
// backend to judge.
func tokenExpired(token string) bool {
	var claims jwt.RegisteredClaims
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}

func userMessage(err error) string {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return domain.ErrInvalidCredentials.Error()
	}
	return FallbackErrorMessage
}
