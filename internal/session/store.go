package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"farsha/internal/apiclient"
	"farsha/internal/domain"
	"farsha/internal/events"
	"farsha/internal/logging"
	"farsha/internal/metrics"
	"farsha/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

type Status string

const (
	StatusUnresolved    Status = "unresolved"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
)

type Outcome string

const (
	OutcomeSignedIn             Outcome = "signed_in"
	OutcomeVerificationRequired Outcome = "verification_required"
	OutcomeVerified             Outcome = "verified"
)

// Session is one signed-in actor. Business is set for partners only.
type Session[P any] struct {
	Token     string
	Refresh   string
	Principal *P
	Business  *models.Business
}

// State is a point-in-time view of a visitor's session.
type State[P any] struct {
	Status  Status
	Loading bool
	Session *Session[P]
}

func (s State[P]) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.Session != nil
}

// Result is what session operations report to the caller. Operations
// never return Go errors; failures carry a displayable message.
type Result struct {
	Success bool    `json:"success"`
	Error   string  `json:"error,omitempty"`
	Message string  `json:"message,omitempty"`
	Phone   string  `json:"phone_number,omitempty"`
	Outcome Outcome `json:"outcome,omitempty"`
}

func failure(msg string) Result {
	return Result{Success: false, Error: msg}
}

// Grant is a backend answer that may sign the visitor in. Without
// Access it only carries a message.
type Grant[P any] struct {
	Access    string
	Refresh   string
	Principal *P
	Business  *models.Business
	Message   string
	Phone     string
}

// Backend is the namespace specific part of the remote API.
type Backend[P any] interface {
	Login(ctx context.Context, creds models.Credentials) (*Grant[P], error)
	Me(ctx context.Context) (*P, *models.Business, error)
	Logout(ctx context.Context, refresh string) error
}

type Options struct {
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

type entry[P any] struct {
	status   Status
	loading  bool
	session  *Session[P]
	lastSeen time.Time
}

// Store holds the sessions of one namespace for all visitors.
type Store[P any] struct {
	ns      Namespace
	repo    domain.CredentialRepository
	backend Backend[P]
	events  domain.EventPublisher
	logger  *zerolog.Logger
	opts    Options
	now     func() time.Time

	mu     sync.Mutex
	states map[string]*entry[P]
	group  singleflight.Group
}

func NewStore[P any](ns Namespace, repo domain.CredentialRepository, backend Backend[P], publisher domain.EventPublisher, opts Options, logger *zerolog.Logger) *Store[P] {
	l := logging.Component(logger, "session").With().Str("namespace", string(ns.Name)).Logger()
	return &Store[P]{
		ns:      ns,
		repo:    repo,
		backend: backend,
		events:  publisher,
		logger:  &l,
		opts:    opts,
		now:     time.Now,
		states:  make(map[string]*entry[P]),
	}
}

func (s *Store[P]) Namespace() Namespace {
	return s.ns
}

// touch returns the visitor entry, creating an unresolved one. Caller
// holds mu.
func (s *Store[P]) touch(visitor string) *entry[P] {
	e, ok := s.states[visitor]
	if !ok {
		e = &entry[P]{status: StatusUnresolved}
		s.states[visitor] = e
	}
	e.lastSeen = s.now()
	return e
}

func (e *entry[P]) snapshot() State[P] {
	st := State[P]{Status: e.status, Loading: e.loading}
	if e.session != nil {
		cp := *e.session
		st.Session = &cp
	}
	return st
}

// Snapshot returns the current state without side effects.
func (s *Store[P]) Snapshot(visitor string) State[P] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.states[visitor]; ok {
		return e.snapshot()
	}
	return State[P]{Status: StatusUnresolved}
}

// Resolve settles an unresolved visitor by reading the persisted token
// and asking the backend who it belongs to. Concurrent calls share one
// backend request. When ctx ends first the still unresolved state is
// returned and resolution continues in the background.
func (s *Store[P]) Resolve(ctx context.Context, visitor string) State[P] {
	s.mu.Lock()
	e := s.touch(visitor)
	if e.status != StatusUnresolved {
		st := e.snapshot()
		s.mu.Unlock()
		return st
	}
	e.loading = true
	s.mu.Unlock()

	detached := context.WithoutCancel(WithVisitor(ctx, visitor))
	ch := s.group.DoChan(visitor, func() (any, error) {
		return s.resolve(detached, visitor), nil
	})

	select {
	case res := <-ch:
		return res.Val.(State[P])
	case <-ctx.Done():
		return s.Snapshot(visitor)
	}
}

func (s *Store[P]) resolve(ctx context.Context, visitor string) State[P] {
	keys := s.ns.Keys
	token, err := s.repo.Get(ctx, visitor, keys.Token)
	if err != nil {
		s.logger.Error().Err(err).Str("visitor", visitor).Msg("failed to read persisted token")
		return s.setAnonymous(visitor, events.EventSessionAnonymous, "storage error")
	}
	if token == "" {
		return s.setAnonymous(visitor, events.EventSessionAnonymous, "")
	}
	if tokenExpired(token, s.now()) {
		s.clear(ctx, visitor)
		return s.setAnonymous(visitor, events.EventSessionExpired, "token expired")
	}

	principal, business, err := s.backend.Me(ctx)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			// the 401 handler already expired this visitor
			return s.Snapshot(visitor)
		}
		s.logger.Warn().Err(err).Str("visitor", visitor).Msg("session check failed")
		s.clear(ctx, visitor)
		return s.setAnonymous(visitor, events.EventSessionAnonymous, "session check failed")
	}
	if principal == nil {
		s.clear(ctx, visitor)
		return s.setAnonymous(visitor, events.EventSessionAnonymous, "empty principal")
	}

	refresh, _ := s.repo.Get(ctx, visitor, keys.Refresh)
	sess := &Session[P]{Token: token, Refresh: refresh, Principal: principal, Business: business}
	if err := s.persistObjects(ctx, visitor, sess); err != nil {
		s.logger.Warn().Err(err).Str("visitor", visitor).Msg("failed to persist principal")
	}
	return s.setAuthenticated(visitor, sess)
}

// tokenExpired inspects the exp claim without verifying the signature.
// Tokens that are not JWTs never count as expired.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

// Login signs the visitor in with phone number and password.
func (s *Store[P]) Login(ctx context.Context, visitor string, creds models.Credentials) Result {
	ctx = WithVisitor(ctx, visitor)
	if !s.allowLogin(ctx, creds.PhoneNumber) {
		return failure(msgTooManyAttempts)
	}

	grant, err := s.backend.Login(ctx, creds)
	if err == nil && (grant == nil || grant.Access == "") {
		err = errors.New("login answer without access token")
	}
	if err != nil {
		s.logger.Info().Err(err).Str("visitor", visitor).Msg("login failed")
		s.dropUnlessAuthenticated(ctx, visitor)
		return failure(apiclient.MessageFrom(err, msgLoginFailed, loginFields...))
	}

	if err := s.signIn(ctx, visitor, grant); err != nil {
		return s.signInFailure(visitor, err)
	}
	return Result{Success: true, Message: msgWelcome, Outcome: OutcomeSignedIn}
}

// register runs a registration call and handles both answer shapes:
// with a token the visitor is signed in, otherwise verification is
// still pending and nothing changes.
func (s *Store[P]) register(ctx context.Context, visitor string, fields []string, call func(context.Context) (*Grant[P], error)) Result {
	ctx = WithVisitor(ctx, visitor)
	grant, err := call(ctx)
	if err != nil {
		return failure(apiclient.MessageFrom(err, msgRegisterFailed, fields...))
	}
	if grant == nil {
		grant = &Grant[P]{}
	}

	if grant.Access != "" {
		if err := s.signIn(ctx, visitor, grant); err != nil {
			return s.signInFailure(visitor, err)
		}
		return Result{Success: true, Message: msgWelcome, Phone: grant.Phone, Outcome: OutcomeSignedIn}
	}

	msg := grant.Message
	if msg == "" {
		msg = msgRegisterVerify
	}
	return Result{Success: true, Message: msg, Phone: grant.Phone, Outcome: OutcomeVerificationRequired}
}

// errMissingPrincipal marks a backend answer with a token but no user.
var errMissingPrincipal = errors.New("answer without principal")

func (s *Store[P]) signIn(ctx context.Context, visitor string, grant *Grant[P]) error {
	if grant.Principal == nil {
		return errMissingPrincipal
	}
	keys := s.ns.Keys
	if err := s.repo.Set(ctx, visitor, keys.Token, grant.Access); err != nil {
		return err
	}
	if grant.Refresh != "" {
		if err := s.repo.Set(ctx, visitor, keys.Refresh, grant.Refresh); err != nil {
			return err
		}
	} else if err := s.repo.Delete(ctx, visitor, keys.Refresh); err != nil {
		return err
	}

	sess := &Session[P]{
		Token:     grant.Access,
		Refresh:   grant.Refresh,
		Principal: grant.Principal,
		Business:  grant.Business,
	}
	if err := s.persistObjects(ctx, visitor, sess); err != nil {
		return err
	}
	s.setAuthenticated(visitor, sess)
	return nil
}

func (s *Store[P]) signInFailure(visitor string, err error) Result {
	if errors.Is(err, errMissingPrincipal) {
		s.logger.Warn().Str("visitor", visitor).Msg("sign-in answer without principal")
		return failure(msgMissingPrincipal)
	}
	s.logger.Error().Err(err).Str("visitor", visitor).Msg("failed to persist sign-in")
	return failure(msgStorageFailed)
}

func (s *Store[P]) persistObjects(ctx context.Context, visitor string, sess *Session[P]) error {
	if err := s.persistJSON(ctx, visitor, s.ns.Keys.Principal, sess.Principal); err != nil {
		return err
	}
	if s.ns.Keys.Business != "" && sess.Business != nil {
		return s.persistJSON(ctx, visitor, s.ns.Keys.Business, sess.Business)
	}
	return nil
}

func (s *Store[P]) persistJSON(ctx context.Context, visitor, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.repo.Set(ctx, visitor, key, string(raw))
}

// Logout tells the backend best-effort, then always clears the session.
func (s *Store[P]) Logout(ctx context.Context, visitor string) Result {
	ctx = WithVisitor(ctx, visitor)
	refresh, err := s.repo.Get(ctx, visitor, s.ns.Keys.Refresh)
	if err != nil {
		s.logger.Warn().Err(err).Str("visitor", visitor).Msg("failed to read refresh token")
	}
	if err := s.backend.Logout(ctx, refresh); err != nil {
		s.logger.Warn().Err(err).Str("visitor", visitor).Msg("logout call failed")
	}

	s.clear(ctx, visitor)
	s.setAnonymous(visitor, events.EventSessionAnonymous, "logout")
	return Result{Success: true, Message: msgLoggedOut}
}

// Expire drops the visitor's credentials after the backend rejected
// its token.
func (s *Store[P]) Expire(ctx context.Context, visitor string) {
	if visitor == "" {
		return
	}
	s.clear(ctx, visitor)
	s.setAnonymous(visitor, events.EventSessionExpired, "unauthorized")
}

func (s *Store[P]) clear(ctx context.Context, visitor string) {
	if err := s.repo.Delete(ctx, visitor, s.ns.Keys.all()...); err != nil {
		s.logger.Error().Err(err).Str("visitor", visitor).Msg("failed to clear credentials")
	}
}

func (s *Store[P]) dropUnlessAuthenticated(ctx context.Context, visitor string) {
	s.mu.Lock()
	authenticated := s.touch(visitor).status == StatusAuthenticated
	s.mu.Unlock()
	if authenticated {
		return
	}
	s.clear(ctx, visitor)
	s.setAnonymous(visitor, "", "")
}

// allowLogin counts attempts per client address and phone number,
// never per visitor id.
func (s *Store[P]) allowLogin(ctx context.Context, phone string) bool {
	if s.opts.LoginRateLimit <= 0 {
		return true
	}
	subject := fmt.Sprintf("login:%s:%s:%s", s.ns.Name, ClientAddrFrom(ctx), strings.TrimSpace(phone))
	allowed, err := s.repo.CheckRateLimit(ctx, subject, s.opts.LoginRateLimit, s.opts.LoginRateWindow)
	if err != nil {
		s.logger.Warn().Err(err).Msg("login rate limit check failed")
		return true
	}
	return allowed
}

func (s *Store[P]) setAuthenticated(visitor string, sess *Session[P]) State[P] {
	s.mu.Lock()
	e := s.touch(visitor)
	e.status = StatusAuthenticated
	e.loading = false
	e.session = sess
	st := e.snapshot()
	s.mu.Unlock()

	s.publish(events.EventSessionAuthenticated, visitor, principalID(sess.Principal), "")
	return st
}

// setAnonymous moves the visitor to anonymous. An empty event skips
// publishing.
func (s *Store[P]) setAnonymous(visitor, event, reason string) State[P] {
	s.mu.Lock()
	e := s.touch(visitor)
	e.status = StatusAnonymous
	e.loading = false
	e.session = nil
	st := e.snapshot()
	s.mu.Unlock()

	if event != "" {
		s.publish(event, visitor, 0, reason)
	}
	return st
}

// replace swaps the in-memory session objects after an update.
func (s *Store[P]) replace(visitor string, fn func(sess *Session[P])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.touch(visitor)
	if e.session != nil {
		cp := *e.session
		fn(&cp)
		e.session = &cp
	}
}

func (s *Store[P]) publish(event, visitor string, id int64, reason string) {
	metrics.IncSession(string(s.ns.Name), event)
	if s.events == nil {
		return
	}
	payload := events.SessionEventPayload{
		Namespace:   string(s.ns.Name),
		Visitor:     visitor,
		PrincipalID: id,
		Reason:      reason,
	}
	if err := s.events.PublishJSON(event, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", event).Msg("failed to publish session event")
	}
}

func principalID[P any](p *P) int64 {
	if p == nil {
		return 0
	}
	if ider, ok := any(*p).(interface{ Identity() int64 }); ok {
		return ider.Identity()
	}
	return 0
}

// Sweep forgets in-memory state of visitors idle longer than idle.
// Persisted credentials stay, so the next request resolves again.
func (s *Store[P]) Sweep(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-idle)
	n := 0
	for v, e := range s.states {
		if !e.loading && e.lastSeen.Before(cutoff) {
			delete(s.states, v)
			n++
		}
	}
	return n
}
