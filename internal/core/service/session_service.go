package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/carddemo/portal/internal/core/domain"
	"github.com/carddemo/portal/internal/core/ports"
	"github.com/carddemo/portal/internal/pkg/metrics"
)

const revokeTimeout = 5 * time.Second

// SessionService is the session state machine. It is the only writer of the
// credential store.
//
// Every operation bumps the generation counter when it starts and re-checks it
// before applying its result, so a slow validation or login that completes
// after a newer operation (typically a logout) is dropped instead of
// resurrecting the session.
//
// Lock order is storeMu then mu. storeMu serialises store writes together with
// the generation check that licenses them; mu guards the in-memory state only
// and is never held across store or network I/O.
type SessionService struct {
	store     ports.CredentialStore
	auth      ports.AuthGateway
	validator ports.SessionValidator
	log       zerolog.Logger

	storeMu sync.Mutex

	mu          sync.RWMutex
	generation  uint64
	initialized bool
	snap        domain.Snapshot
	creds       domain.CredentialPair
}

var _ ports.SessionService = (*SessionService)(nil)

func NewSessionService(
	store ports.CredentialStore,
	auth ports.AuthGateway,
	validator ports.SessionValidator,
	log zerolog.Logger,
) *SessionService {
	s := &SessionService{
		store:     store,
		auth:      auth,
		validator: validator,
		log:       log.With().Str("component", "session").Logger(),
		snap:      domain.UnknownSnapshot(),
	}
	metrics.SetSessionStatus(s.snap.Status.String())
	return s
}

// Initialize restores the session from the credential store and validates it.
// Only the first call does any work; later calls return the current snapshot.
//
// A rejected token clears the store and is revoked remotely. When ctx is
// cancelled before the validator answers, the session settles signed out but
// the stored credentials are kept for the next start.
func (s *SessionService) Initialize(ctx context.Context) domain.Snapshot {
	s.mu.Lock()
	if s.initialized {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	s.initialized = true
	gen := s.beginLocked()
	s.mu.Unlock()

	stored, err := s.store.Load(ctx)
	if err != nil {
		metrics.CredentialStoreErrorsTotal.WithLabelValues("load").Inc()
		s.log.Warn().Err(err).Msg("credential store unreadable, starting signed out")
		stored = nil
	}

	s.mu.Lock()
	if !s.currentLocked(gen) {
		s.discardLocked("initialize", gen)
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	if stored == nil {
		s.setLocked(domain.UnauthenticatedSnapshot(""))
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.log.Debug().Msg("no stored session")
		return snap
	}
	s.creds = stored.Credentials
	s.setLocked(domain.Snapshot{Status: domain.StatusValidating})
	s.mu.Unlock()

	token := stored.Credentials.AccessToken
	valid := s.validator.Validate(ctx, token)

	if valid || ctx.Err() != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.currentLocked(gen) {
			s.discardLocked("initialize", gen)
			return s.snapshotLocked()
		}
		if !valid {
			s.creds = domain.CredentialPair{}
			s.setLocked(domain.UnauthenticatedSnapshot(""))
			s.log.Warn().Err(ctx.Err()).Str("user_id", stored.Identity.UserID).Msg("session validation interrupted, stored session kept")
			return s.snapshotLocked()
		}
		s.setLocked(domain.AuthenticatedSnapshot(stored.Identity))
		s.log.Info().Str("user_id", stored.Identity.UserID).Str("role", stored.Identity.Role().String()).Msg("session restored")
		return s.snapshotLocked()
	}

	s.storeMu.Lock()
	s.mu.Lock()
	if !s.currentLocked(gen) {
		s.discardLocked("initialize", gen)
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.storeMu.Unlock()
		return snap
	}
	s.creds = domain.CredentialPair{}
	s.setLocked(domain.UnauthenticatedSnapshot(""))
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.clearStore(ctx)
	s.storeMu.Unlock()

	_ = s.revoke(ctx, token)
	s.log.Info().Str("user_id", stored.Identity.UserID).Msg("stored session rejected, signed out")
	return snap
}

// Login authenticates against the auth service. On success the token pair and
// identity are persisted and the session becomes authenticated. On failure
// LastError carries the server message (or a generic one) and nothing is
// persisted.
//
// Concurrent logins are not coordinated: the most recently started one wins
// and earlier ones return domain.ErrSuperseded.
func (s *SessionService) Login(ctx context.Context, userID, password string) error {
	uid := domain.NormalizeUserID(userID)

	s.mu.Lock()
	if s.snap.Status == domain.StatusAuthenticated {
		s.mu.Unlock()
		return domain.ErrAlreadyAuthenticated
	}
	s.initialized = true
	gen := s.beginLocked()
	s.snap.Loading = true
	s.snap.LastError = ""
	s.mu.Unlock()

	res, err := s.auth.Login(ctx, uid, password)

	s.mu.Lock()
	if !s.currentLocked(gen) {
		s.discardLocked("login", gen)
		s.mu.Unlock()
		if err == nil && res != nil {
			return s.superseded(ctx, res.Credentials.AccessToken)
		}
		return s.superseded(ctx, "")
	}
	if err != nil {
		defer s.mu.Unlock()
		var le *domain.LoginError
		if errors.As(err, &le) {
			metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
			s.setLocked(domain.UnauthenticatedSnapshot(le.Error()))
			s.log.Info().Str("user_id", uid).Msg("login rejected")
			return le
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		s.setLocked(domain.UnauthenticatedSnapshot(domain.GenericLoginFailure))
		s.log.Warn().Err(err).Str("user_id", uid).Msg("login failed")
		return err
	}
	if res == nil || !res.Credentials.Valid() {
		defer s.mu.Unlock()
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		s.setLocked(domain.UnauthenticatedSnapshot(domain.GenericLoginFailure))
		s.log.Warn().Str("user_id", uid).Msg("login response missing tokens")
		return &domain.LoginError{}
	}
	s.mu.Unlock()

	s.storeMu.Lock()
	s.mu.RLock()
	current := s.currentLocked(gen)
	s.mu.RUnlock()
	if !current {
		s.storeMu.Unlock()
		return s.superseded(ctx, res.Credentials.AccessToken)
	}
	saveErr := s.store.Save(context.WithoutCancel(ctx), res.Credentials, res.Identity)
	if saveErr != nil {
		metrics.CredentialStoreErrorsTotal.WithLabelValues("save").Inc()
		s.clearStore(ctx)
	}
	s.storeMu.Unlock()

	s.mu.Lock()
	if !s.currentLocked(gen) {
		s.discardLocked("login", gen)
		s.mu.Unlock()
		return s.superseded(ctx, res.Credentials.AccessToken)
	}
	defer s.mu.Unlock()

	if saveErr != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(saveErr).Str("user_id", uid).Msg("failed to persist session")
		s.setLocked(domain.UnauthenticatedSnapshot(domain.GenericLoginFailure))
		return saveErr
	}

	s.creds = res.Credentials
	s.setLocked(domain.AuthenticatedSnapshot(res.Identity))
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.log.Info().
		Str("user_id", res.Identity.UserID).
		Str("role", res.Identity.Role().String()).
		Msg("login successful")
	return nil
}

// Logout signs out locally and then tells the auth service, ignoring any
// failure from the remote call. Logging out while already signed out (and
// with no login in flight) leaves the snapshot untouched.
func (s *SessionService) Logout(ctx context.Context) {
	s.storeMu.Lock()
	s.mu.Lock()
	s.initialized = true
	if s.snap.Status == domain.StatusUnauthenticated && !s.snap.Loading {
		s.mu.Unlock()
		s.storeMu.Unlock()
		return
	}
	s.beginLocked()

	token := s.creds.AccessToken
	userID := ""
	if s.snap.Identity != nil {
		userID = s.snap.Identity.UserID
	}
	s.creds = domain.CredentialPair{}
	s.setLocked(domain.UnauthenticatedSnapshot(""))
	s.mu.Unlock()

	if token == "" {
		if stored, err := s.store.Load(context.WithoutCancel(ctx)); err == nil && stored != nil {
			token = stored.Credentials.AccessToken
		}
	}
	s.clearStore(ctx)
	s.storeMu.Unlock()

	remote := "skipped"
	if token != "" {
		remote = "ok"
		if err := s.revoke(ctx, token); err != nil {
			remote = "failed"
		}
	}
	metrics.LogoutsTotal.WithLabelValues(remote).Inc()
	s.log.Info().Str("user_id", userID).Str("remote", remote).Msg("logged out")
}

// Snapshot returns a copy of the current session state.
func (s *SessionService) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *SessionService) IsAuthenticated() bool { return s.Snapshot().IsAuthenticated() }

func (s *SessionService) IsAdmin() bool { return s.Snapshot().IsAdmin() }

func (s *SessionService) CustomerID() (int64, bool) { return s.Snapshot().CustomerID() }

// AccessToken is the bearer token for backend calls. It is only handed out
// while the session is authenticated.
func (s *SessionService) AccessToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap.Status != domain.StatusAuthenticated || s.creds.AccessToken == "" {
		return "", false
	}
	return s.creds.AccessToken, true
}

// revoke notifies the auth service; the error is only used for reporting.
func (s *SessionService) revoke(ctx context.Context, token string) error {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), revokeTimeout)
	defer cancel()
	if err := s.auth.Logout(rctx, token); err != nil {
		s.log.Debug().Err(err).Msg("remote logout failed, ignoring")
		return err
	}
	return nil
}

func (s *SessionService) beginLocked() uint64 {
	s.generation++
	return s.generation
}

func (s *SessionService) currentLocked(gen uint64) bool {
	return gen == s.generation
}

func (s *SessionService) discardLocked(op string, gen uint64) {
	metrics.StaleResultsTotal.WithLabelValues(op).Inc()
	s.log.Debug().
		Str("operation", op).
		Uint64("generation", gen).
		Uint64("current", s.generation).
		Msg("discarding stale session result")
}

// superseded finishes a login overtaken by a newer operation, revoking any
// token it obtained.
func (s *SessionService) superseded(ctx context.Context, token string) error {
	metrics.LoginAttemptsTotal.WithLabelValues("superseded").Inc()
	if token != "" {
		_ = s.revoke(ctx, token)
	}
	return domain.ErrSuperseded
}

// clearStore must be called with storeMu held.
func (s *SessionService) clearStore(ctx context.Context) {
	if err := s.store.Clear(context.WithoutCancel(ctx)); err != nil {
		metrics.CredentialStoreErrorsTotal.WithLabelValues("clear").Inc()
		s.log.Error().Err(err).Msg("failed to clear credential store")
	}
}

func (s *SessionService) setLocked(snap domain.Snapshot) {
	s.snap = snap
	metrics.SetSessionStatus(snap.Status.String())
}

func (s *SessionService) snapshotLocked() domain.Snapshot {
	snap := s.snap
	if snap.Identity != nil {
		id := *snap.Identity
		snap.Identity = &id
	}
	return snap
}
