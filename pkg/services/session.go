package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dasch-swiss/mls-app-ng/pkg/apperrors"
	"github.com/dasch-swiss/mls-app-ng/pkg/auth"
	"github.com/dasch-swiss/mls-app-ng/pkg/knora"
	"github.com/dasch-swiss/mls-app-ng/pkg/logging"
	"github.com/dasch-swiss/mls-app-ng/pkg/models"
)

const (
	// anonymousUser is the user reported by a failed login.
	anonymousUser = "-"

	missingCredentials = "email and password are required"
)

// SessionState tracks whether a user is logged in to the Knora API and
// notifies observers of every change.
type SessionState interface {
	// Login authenticates with email and password. Missing or rejected
	// credentials and upstream failures are reported in the result, which
	// then carries the failure message as Token; the session is left
	// unchanged and nothing is published.
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)

	// Logout ends the session. Upstream failures are reported in the result
	// and leave the session unchanged.
	Logout(ctx context.Context) (*models.LogoutResult, error)

	// Status returns the current session status.
	Status() models.SessionStatus

	// Token returns the session token, empty when logged out.
	Token() string

	// Subscribe registers fn for status changes. fn gets the current status
	// first and then every change, in order. Deliveries run on the goroutine
	// that made the change, so the replay happens before Subscribe returns
	// unless another delivery round is in progress. fn may call Login, Logout
	// or Subscribe; changes made from a callback are delivered after the
	// current round. After the returned function is called fn receives
	// nothing more.
	Subscribe(fn func(models.SessionStatus)) (unsubscribe func())
}

type subscriber struct {
	id uuid.UUID
	fn func(models.SessionStatus)
}

// delivery is one status bound for the subscribers registered when it was
// queued.
type delivery struct {
	status models.SessionStatus
	subs   []subscriber
}

type sessionState struct {
	client knora.API
	logger *zap.Logger

	mu     sync.RWMutex
	status models.SessionStatus
	token  string

	// notifyMu guards the subscribers and the delivery queue. It is never
	// held while a subscriber runs.
	notifyMu    sync.Mutex
	subscribers []subscriber
	pending     []delivery
	delivering  bool
}

// NewSessionState creates a logged-out session.
func NewSessionState(client knora.API, logger *zap.Logger) SessionState {
	return &sessionState{
		client: client,
		logger: logger.Named("session"),
	}
}

var _ SessionState = (*sessionState)(nil)

func (s *sessionState) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	if email == "" || password == "" {
		return &models.LoginResult{Success: false, Token: missingCredentials, User: anonymousUser}, nil
	}

	token, err := s.client.Login(ctx, "email", email, password)
	if err != nil {
		s.logger.Info("Login failed",
			zap.String("user", email),
			zap.String("error", logging.SanitizeError(err)))
		return &models.LoginResult{Success: false, Token: failurePayload(err), User: anonymousUser}, nil
	}

	status := models.SessionStatus{LoggedIn: true, User: email}
	if claims, err := auth.ParseUnverified(token); err == nil {
		status.UserIRI = claims.Subject
		status.ExpiresAt = claims.ExpiresAt()
	} else {
		s.logger.Debug("Session token is not a JWT", zap.String("token", logging.RedactToken(token)))
	}

	s.update(status, token)
	s.logger.Info("Logged in", zap.String("user", email), zap.String("user_iri", status.UserIRI))

	return &models.LoginResult{Success: true, Token: token, User: email}, nil
}

func (s *sessionState) Logout(ctx context.Context) (*models.LogoutResult, error) {
	msg, err := s.client.Logout(auth.ContextWithToken(ctx, s.Token()))
	if err != nil {
		s.logger.Info("Logout failed", zap.String("error", logging.SanitizeError(err)))
		return &models.LogoutResult{Success: false, Message: failurePayload(err)}, nil
	}

	s.update(models.SessionStatus{}, "")
	s.logger.Info("Logged out")

	return &models.LogoutResult{Success: true, Message: msg}, nil
}

func (s *sessionState) Status() models.SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *sessionState) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *sessionState) Subscribe(fn func(models.SessionStatus)) func() {
	sub := subscriber{id: uuid.New(), fn: fn}

	s.notifyMu.Lock()
	s.subscribers = append(s.subscribers, sub)
	s.pending = append(s.pending, delivery{status: s.Status(), subs: []subscriber{sub}})
	s.notifyMu.Unlock()

	s.deliver()

	id := sub.id
	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

func (s *sessionState) unsubscribe(id uuid.UUID) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	for i, sub := range s.subscribers {
		if sub.id == id {
			s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
			return
		}
	}
}

func (s *sessionState) isSubscribed(id uuid.UUID) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	for _, sub := range s.subscribers {
		if sub.id == id {
			return true
		}
	}
	return false
}

// update replaces the session and queues the new status for every subscriber.
// The state change and the queueing happen under notifyMu so deliveries
// follow the order of changes.
func (s *sessionState) update(status models.SessionStatus, token string) {
	s.notifyMu.Lock()
	s.mu.Lock()
	s.status = status
	s.token = token
	s.mu.Unlock()
	subs := append([]subscriber(nil), s.subscribers...)
	s.pending = append(s.pending, delivery{status: status, subs: subs})
	s.notifyMu.Unlock()

	s.deliver()
}

// deliver drains the queue unless another call is already draining it. That
// call picks up whatever was queued meanwhile, including changes made by a
// subscriber from inside its callback.
func (s *sessionState) deliver() {
	s.notifyMu.Lock()
	if s.delivering {
		s.notifyMu.Unlock()
		return
	}
	s.delivering = true
	s.notifyMu.Unlock()

	for {
		s.notifyMu.Lock()
		if len(s.pending) == 0 {
			s.delivering = false
			s.notifyMu.Unlock()
			return
		}
		d := s.pending[0]
		s.pending = s.pending[1:]
		s.notifyMu.Unlock()

		for _, sub := range d.subs {
			// a subscriber may unsubscribe another one during delivery
			if s.isSubscribed(sub.id) {
				sub.fn(d.status)
			}
		}
	}
}

// failurePayload is the upstream error text reported to the caller.
func failurePayload(err error) string {
	var upstream *apperrors.UpstreamError
	if errors.As(err, &upstream) && upstream.Payload != "" {
		return upstream.Payload
	}
	return err.Error()
}
