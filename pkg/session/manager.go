package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/warden/pkg/async"
	"github.com/platinummonkey/warden/pkg/auth"
	"github.com/platinummonkey/warden/pkg/notify"
	"github.com/platinummonkey/warden/pkg/observability"
	"github.com/platinummonkey/warden/pkg/rbac"
	"github.com/platinummonkey/warden/pkg/tokenstore"
)

// SessionExpiredMessage is shown when a scheduled refresh fails
const SessionExpiredMessage = "Your session has expired. Please log in again."

// DefaultBackgroundTimeout bounds a background refresh
const DefaultBackgroundTimeout = 30 * time.Second

// Directory is the remote identity service as seen by the Manager
type Directory interface {
	Login(ctx context.Context, username, password string) (*auth.LoginResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*auth.RefreshResponse, error)
	CurrentUser(ctx context.Context, accessToken string) (*auth.User, error)
}

// Manager drives the session lifecycle against a Directory
type Manager struct {
	dir    Directory
	tokens tokenstore.Store
	logger *logrus.Logger
	store  *Store
	clock  *TokenClock

	leeway      time.Duration
	now         func() time.Time
	afterFunc   AfterFunc
	metrics     *observability.Metrics
	instruments *observability.SessionInstruments
	navigator   Navigator
	notifier    notify.Sink
	tracer      trace.Tracer
	bgTimeout   time.Duration

	// commitMu orders "write session, persist, arm clock" against clears
	commitMu sync.Mutex

	bgCtx       context.Context
	bgCancel    context.CancelFunc
	unsubscribe func()
}

// Option configures a Manager
type Option func(*Manager)

// WithLeeway sets how long before expiry the silent refresh fires
func WithLeeway(d time.Duration) Option {
	return func(m *Manager) { m.leeway = d }
}

// WithMetrics records session metrics in prometheus
func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithInstruments records session operations through OpenTelemetry metrics
func WithInstruments(instruments *observability.SessionInstruments) Option {
	return func(m *Manager) { m.instruments = instruments }
}

// WithNavigator sets where navigation requests go
func WithNavigator(n Navigator) Option {
	return func(m *Manager) { m.navigator = n }
}

// WithNotifier sets the sink for operator notifications
func WithNotifier(sink notify.Sink) Option {
	return func(m *Manager) { m.notifier = sink }
}

// WithClock replaces the time source and timer factory
func WithClock(now func() time.Time, afterFunc AfterFunc) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
		if afterFunc != nil {
			m.afterFunc = afterFunc
		}
	}
}

// WithTracer sets the tracer used for session spans
func WithTracer(tracer trace.Tracer) Option {
	return func(m *Manager) { m.tracer = tracer }
}

// WithBackgroundTimeout bounds refreshes started by the token clock
func WithBackgroundTimeout(d time.Duration) Option {
	return func(m *Manager) { m.bgTimeout = d }
}

// NewManager creates a Manager with an empty session
func NewManager(dir Directory, tokens tokenstore.Store, logger *logrus.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	m := &Manager{
		dir:       dir,
		tokens:    tokens,
		logger:    logger,
		store:     NewStore(),
		leeway:    DefaultLeeway,
		now:       time.Now,
		afterFunc: realAfterFunc,
		navigator: noopNavigator{},
		bgTimeout: DefaultBackgroundTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.tokens == nil {
		m.tokens = tokenstore.NewMemoryStore()
	}
	if m.notifier == nil {
		m.notifier = notify.LogSink{Logger: logger}
	}
	if m.navigator == nil {
		m.navigator = noopNavigator{}
	}
	if m.tracer == nil {
		m.tracer = otel.Tracer(observability.InstrumentationName)
	}

	m.clock = NewTokenClock(m.leeway, m.onClockDue, WithClockNow(m.now), WithAfterFunc(m.afterFunc))
	m.bgCtx, m.bgCancel = context.WithCancel(context.Background())
	m.unsubscribe = m.store.Subscribe(func(s Session) {
		m.metrics.SetAuthenticated(s.Authenticated)
	})

	return m
}

// Close cancels the token clock and any background refresh
func (m *Manager) Close() {
	m.bgCancel()
	m.clock.Cancel()
	m.unsubscribe()
}

// Login authenticates against the Directory and establishes the session
func (m *Manager) Login(ctx context.Context, username, password string) (*auth.User, error) {
	ctx, span := m.tracer.Start(ctx, "session.Login", trace.WithAttributes(
		attribute.String("auth.username", username),
	))
	defer span.End()
	start := time.Now()
	log := observability.EntryFromContext(ctx, m.logger).WithField("username", username)

	epoch := m.store.Epoch()
	resp, err := m.dir.Login(ctx, username, password)
	if err == nil && (resp == nil || resp.Access == "" || resp.Refresh == "" || resp.User == nil) {
		err = fmt.Errorf("login: %w", ErrIncompleteResponse)
	}
	if err != nil {
		m.clearIf(ctx, epoch)
		log.WithError(err).Info("login failed")
		m.finish(ctx, span, "login", observability.StatusFailure, start, err)
		return nil, err
	}

	m.commitMu.Lock()
	err = m.store.ReplaceIf(epoch, Established(resp.User, resp.Access, resp.Refresh), true)
	if err == nil {
		m.saveTokens(ctx, tokenstore.Tokens{Access: resp.Access, Refresh: resp.Refresh})
		m.arm(ctx, resp.Access, true)
	}
	m.commitMu.Unlock()

	if err != nil {
		log.WithError(err).Info("login result discarded")
		m.finish(ctx, span, "login", statusFor(err), start, err)
		return nil, err
	}

	log.WithField("roles", resp.User.RoleNames()).Info("logged in")
	m.finish(ctx, span, "login", observability.StatusSuccess, start, nil)
	return resp.User.Clone(), nil
}

// Logout revokes the refresh token when possible and clears the session.
// Directory failures are logged and otherwise ignored.
func (m *Manager) Logout(ctx context.Context) {
	ctx, span := m.tracer.Start(ctx, "session.Logout")
	defer span.End()
	start := time.Now()
	log := observability.EntryFromContext(ctx, m.logger)

	refresh := m.refreshToken(ctx)
	if refresh != "" {
		if err := m.dir.Logout(ctx, refresh); err != nil {
			log.WithError(err).Warn("directory logout failed; clearing local session anyway")
			span.RecordError(err)
		}
	}

	m.commitMu.Lock()
	if _, err := m.store.Replace(Empty()); err != nil {
		log.WithError(err).Error("failed to clear session")
	}
	m.clock.Cancel()
	m.clearTokens(ctx)
	m.commitMu.Unlock()

	m.metrics.RecordLogout()
	m.instruments.Record(ctx, "logout", observability.StatusSuccess, time.Since(start))
	log.Info("logged out")
	m.navigator.Navigate(LoginPath)
}

// RefreshAccessToken exchanges the persisted refresh token for a new access
// token. Any failure clears the session.
func (m *Manager) RefreshAccessToken(ctx context.Context) (string, error) {
	return m.refresh(ctx, false)
}

func (m *Manager) refresh(ctx context.Context, scheduled bool) (string, error) {
	ctx, span := m.tracer.Start(ctx, "session.RefreshAccessToken", trace.WithAttributes(
		attribute.Bool("session.scheduled", scheduled),
	))
	defer span.End()
	start := time.Now()
	log := observability.EntryFromContext(ctx, m.logger)

	epoch := m.store.Epoch()
	refresh := m.refreshToken(ctx)
	if refresh == "" {
		m.finish(ctx, span, "refresh", observability.StatusMissingToken, start, ErrNoRefreshToken)
		if !m.clearIf(ctx, epoch) {
			return "", fmt.Errorf("%w: %w", ErrSessionSuperseded, ErrNoRefreshToken)
		}
		return "", ErrNoRefreshToken
	}

	resp, err := m.dir.Refresh(ctx, refresh)
	if err == nil && (resp == nil || resp.Access == "") {
		err = fmt.Errorf("refresh: %w", ErrIncompleteResponse)
	}
	if err != nil {
		log.WithError(err).Warn("token refresh failed")
		m.finish(ctx, span, "refresh", observability.StatusFailure, start, err)
		// a cancelled caller is not a rejected token
		if ctx.Err() == nil && !m.clearIf(ctx, epoch) {
			return "", fmt.Errorf("refresh access token: %w: %w", ErrSessionSuperseded, err)
		}
		return "", fmt.Errorf("refresh access token: %w", err)
	}

	m.commitMu.Lock()
	err = m.commitAccess(epoch, resp.Access)
	if err == nil {
		m.saveAccess(ctx, resp.Access)
		m.arm(ctx, resp.Access, false)
	}
	m.commitMu.Unlock()

	if err != nil {
		log.WithError(err).Info("refresh result discarded")
		m.finish(ctx, span, "refresh", statusFor(err), start, err)
		return "", err
	}

	log.Debug("access token refreshed")
	m.finish(ctx, span, "refresh", observability.StatusSuccess, start, nil)
	return resp.Access, nil
}

// commitAccess swaps the access token inside the current epoch. Without an
// established session only the epoch is checked; the token is still persisted.
func (m *Manager) commitAccess(epoch uint64, access string) error {
	cur := m.store.Current()
	if !cur.Authenticated {
		if m.store.Epoch() != epoch {
			return ErrSessionSuperseded
		}
		return nil
	}
	return m.store.ReplaceIf(epoch, cur.WithAccessToken(access), false)
}

// RestoreSession re-establishes a persisted session at startup. Having nothing
// persisted is not an error. Failures clear the persisted tokens and are
// logged at debug.
func (m *Manager) RestoreSession(ctx context.Context) error {
	ctx, span := m.tracer.Start(ctx, "session.RestoreSession")
	defer span.End()
	start := time.Now()
	log := observability.EntryFromContext(ctx, m.logger)

	epoch := m.store.Epoch()
	tokens, err := m.tokens.Load(ctx)
	if err == nil && tokens.IsZero() {
		m.finish(ctx, span, "restore", observability.StatusSkipped, start, nil)
		return nil
	}
	if err == nil && !tokens.Complete() {
		err = errors.New("incomplete persisted token pair")
	}

	var user *auth.User
	if err == nil {
		user, err = m.dir.CurrentUser(ctx, tokens.Access)
		if err == nil && user == nil {
			err = fmt.Errorf("current user: %w", ErrIncompleteResponse)
		}
	}
	if err != nil {
		m.clearIf(ctx, epoch)
		err = fmt.Errorf("%w: %w", ErrRestoreFailed, err)
		log.WithError(err).Debug("session not restored")
		m.finish(ctx, span, "restore", observability.StatusFailure, start, err)
		return err
	}

	m.commitMu.Lock()
	err = m.store.ReplaceIf(epoch, Established(user, tokens.Access, tokens.Refresh), true)
	if err == nil {
		m.arm(ctx, tokens.Access, true)
	}
	m.commitMu.Unlock()

	if err != nil {
		log.WithError(err).Debug("restored session discarded")
		m.finish(ctx, span, "restore", statusFor(err), start, err)
		return fmt.Errorf("%w: %w", ErrRestoreFailed, err)
	}

	log.WithField("username", user.Username).Info("session restored")
	m.finish(ctx, span, "restore", observability.StatusSuccess, start, nil)
	return nil
}

// Session returns a snapshot of the current session
func (m *Manager) Session() Session {
	return m.store.Current()
}

// Store exposes the underlying session store for subscribers
func (m *Manager) Store() *Store {
	return m.store
}

// Subscribe registers fn for every later session write
func (m *Manager) Subscribe(fn Listener) func() {
	return m.store.Subscribe(fn)
}

// IsAuthenticated reports whether a session is established
func (m *Manager) IsAuthenticated() bool {
	return m.store.Current().Authenticated
}

// CurrentUser returns a copy of the signed-in user, or nil
func (m *Manager) CurrentUser() *auth.User {
	return m.store.Current().User
}

// AccessToken returns the current access token, or ""
func (m *Manager) AccessToken() string {
	return m.store.Current().AccessToken
}

// HasRole reports whether the signed-in user holds the named role
func (m *Manager) HasRole(name string) bool {
	return rbac.HasRole(m.store.Current().User, name)
}

// HasPermission reports whether the signed-in user holds the permission codename
func (m *Manager) HasPermission(codename string) bool {
	return rbac.HasPermission(m.store.Current().User, codename)
}

// ClockDeadline reports when the next silent refresh is scheduled
func (m *Manager) ClockDeadline() (time.Time, bool) {
	return m.clock.Deadline()
}

// arm schedules the silent refresh for access. Must be called with commitMu held.
func (m *Manager) arm(ctx context.Context, access string, allowImmediate bool) {
	log := observability.EntryFromContext(ctx, m.logger)

	expiry, err := auth.ExpiresAt(access)
	if err != nil {
		log.WithError(err).Warn("cannot read access token expiry; silent refresh disabled")
		m.clock.Cancel()
		return
	}

	err = m.clock.Arm(expiry)
	switch {
	case err == nil:
		m.metrics.RecordClockArmed()
		deadline, _ := m.clock.Deadline()
		log.WithField("refresh_at", deadline).Debug("token refresh scheduled")
	case errors.Is(err, ErrTokenDue) && allowImmediate:
		log.WithField("expires_at", expiry).Info("access token due; refreshing now")
		m.refreshInBackground("immediate token refresh")
	default:
		log.WithField("expires_at", expiry).Warn("refreshed access token is already due; not refreshing again")
	}
}

func (m *Manager) onClockDue() {
	m.metrics.RecordClockFired()
	m.refreshInBackground("scheduled token refresh")
}

func (m *Manager) refreshInBackground(name string) {
	async.SafeGo(m.bgCtx, m.bgTimeout, name, m.scheduledRefresh)
}

func (m *Manager) scheduledRefresh(ctx context.Context) error {
	_, err := m.refresh(ctx, true)
	if err == nil || errors.Is(err, ErrSessionSuperseded) || ctx.Err() != nil {
		return nil
	}
	m.notifier.Notify(SessionExpiredMessage, notify.SeverityWarning, 0)
	m.navigator.Navigate(LoginPath)
	return err
}

// clearIf empties the session and persisted tokens unless the epoch moved on
func (m *Manager) clearIf(ctx context.Context, epoch uint64) bool {
	m.commitMu.Lock()
	defer m.commitMu.Unlock()

	if err := m.store.ReplaceIf(epoch, Empty(), true); err != nil {
		return false
	}
	m.clock.Cancel()
	m.clearTokens(ctx)
	return true
}

// refreshToken prefers the persisted token and falls back to memory
func (m *Manager) refreshToken(ctx context.Context) string {
	tokens, err := m.tokens.Load(ctx)
	if err != nil {
		observability.EntryFromContext(ctx, m.logger).WithError(err).Warn("failed to load persisted tokens")
	}
	if tokens.Refresh != "" {
		return tokens.Refresh
	}
	return m.store.Current().RefreshToken
}

func (m *Manager) saveTokens(ctx context.Context, tokens tokenstore.Tokens) {
	if err := m.tokens.Save(ctx, tokens); err != nil {
		observability.EntryFromContext(ctx, m.logger).WithError(err).Warn("failed to persist tokens")
	}
}

func (m *Manager) saveAccess(ctx context.Context, access string) {
	if err := m.tokens.SaveAccess(ctx, access); err != nil {
		observability.EntryFromContext(ctx, m.logger).WithError(err).Warn("failed to persist access token")
	}
}

func (m *Manager) clearTokens(ctx context.Context) {
	if err := m.tokens.Clear(ctx); err != nil {
		observability.EntryFromContext(ctx, m.logger).WithError(err).Warn("failed to erase persisted tokens")
	}
}

func (m *Manager) finish(ctx context.Context, span trace.Span, op, status string, start time.Time, err error) {
	elapsed := time.Since(start)
	span.SetAttributes(attribute.String("session.status", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	switch op {
	case "login":
		m.metrics.RecordLogin(status)
	case "refresh":
		m.metrics.RecordRefresh(status)
	case "restore":
		m.metrics.RecordRestore(status)
	}
	m.instruments.Record(ctx, op, status, elapsed)
}

func statusFor(err error) string {
	if errors.Is(err, ErrSessionSuperseded) {
		return observability.StatusSuperseded
	}
	return observability.StatusFailure
}
