package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/teller/internal/logging"
	"github.com/aretw0/teller/pkg/domain"
	"github.com/aretw0/teller/pkg/persistence/middleware"
	"github.com/aretw0/teller/pkg/ports"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Headers and cookie understood by the chat API.
const (
	SessionCookie = "teller_session"
	SessionHeader = "X-Session-Id"
	UserHeader    = "X-User-Id"
)

// MsgEmpty is the error returned for blank chat messages.
const MsgEmpty = "Message vide"

// ChatEngine is the part of the teller engine the API serves.
type ChatEngine interface {
	ports.TurnProcessor
	Context(ctx context.Context, sessionID string) (*domain.State, error)
	AnnualRate() float64
}

// Server exposes a ChatEngine over HTTP.
type Server struct {
	engine ChatEngine
	logger *slog.Logger

	allowedOrigins []string
	limit          rate.Limit
	burst          int
	limiters       *limiterSet
	metrics        http.Handler
	piiPatterns    []string
	secureCookie   bool
	trustProxy     bool
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAllowedOrigins enables CORS for the given origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithRateLimit caps chat messages per client to perSecond with the given burst.
// A zero rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		s.limit = rate.Limit(perSecond)
		s.burst = burst
	}
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithPIIPatterns sets the entity keys masked by the session inspection route.
func WithPIIPatterns(patterns []string) Option {
	return func(s *Server) {
		s.piiPatterns = patterns
	}
}

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(s *Server) {
		s.secureCookie = secure
	}
}

// WithTrustedProxy takes the client address from X-Forwarded-For and
// X-Real-IP. Only enable it behind a gateway that sets those headers.
func WithTrustedProxy(trust bool) Option {
	return func(s *Server) {
		s.trustProxy = trust
	}
}

// NewServer creates a Server.
func NewServer(engine ChatEngine, opts ...Option) *Server {
	s := &Server{
		engine:      engine,
		logger:      logging.NewNop(),
		piiPatterns: middleware.DefaultPIIPatterns,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.limit > 0 {
		if s.burst < 1 {
			s.burst = 1
		}
		s.limiters = newLimiterSet(s.limit, s.burst)
	}
	return s
}

// NewHandler returns the routed API for engine.
func NewHandler(engine ChatEngine, opts ...Option) http.Handler {
	return NewServer(engine, opts...).Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if s.trustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)

	if len(s.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", SessionHeader, UserHeader},
			ExposedHeaders:   []string{SessionHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", s.GetHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.With(s.rateLimit).Post("/chat", s.PostChat)
		r.Get("/chat/context", s.GetContext)
		r.Get("/chat/suggestions", s.GetSuggestions)
		r.Get("/chat/faq", s.GetFAQ)
		r.Get("/loans/rates", s.GetLoanRates)
		r.Get("/sessions/{id}", s.GetSession)
	})
	return r
}

type chatRequest struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// PostChat runs one conversation turn.
func (s *Server) PostChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "JSON invalide"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: MsgEmpty})
		return
	}

	userID, err := userFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Identifiant client invalide"})
		return
	}

	sid := s.sessionOrCreate(w, r)
	msg := domain.Message{SessionID: sid, UserID: userID, Text: req.Message}

	res, err := s.engine.ProcessMessage(r.Context(), msg)
	if err != nil {
		s.logger.Error("PostChat: turn failed", "session_id", sid, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, res)
		return
	}
	s.logger.Debug("PostChat: turn done", "session_id", sid, "intent", res.Intent)
	writeJSON(w, http.StatusOK, res)
}

type contextResponse struct {
	SessionID     string          `json:"session_id"`
	CurrentIntent domain.Intent   `json:"current_intent"`
	Entities      domain.Entities `json:"entities"`
	Turns         int             `json:"turns"`
}

// GetContext returns the caller's conversation state.
func (s *Server) GetContext(w http.ResponseWriter, r *http.Request) {
	resp := contextResponse{Entities: domain.Entities{}}
	sid := sessionFromRequest(r)
	if sid == "" {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.SessionID = sid

	st, err := s.engine.Context(r.Context(), sid)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
	case err != nil:
		s.logger.Error("GetContext: load failed", "session_id", sid, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Session indisponible"})
		return
	default:
		resp.CurrentIntent = st.CurrentIntent
		resp.Entities = st.Entities
		resp.Turns = st.Turns
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetSuggestions returns example prompts, depending on whether the caller is identified.
func (s *Server) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, _ := userFromRequest(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"suggestions":       domain.Suggestions(userID > 0),
		"available_actions": domain.AvailableActions,
	})
}

// GetFAQ returns the frequently asked questions.
func (s *Server) GetFAQ(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"faq": domain.FAQ()})
}

// GetLoanRates returns the published rate ranges and the simulation rate.
func (s *Server) GetLoanRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"rates":           domain.LoanRates,
		"simulation_rate": s.engine.AnnualRate(),
	})
}

// GetSession returns a stored session with personal data masked.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := s.engine.Context(r.Context(), id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Session introuvable"})
		return
	}
	if err != nil {
		s.logger.Error("GetSession: load failed", "session_id", id, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Session indisponible"})
		return
	}
	masked, err := middleware.MaskState(st, s.piiPatterns)
	if err != nil {
		s.logger.Error("GetSession: mask failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Erreur interne"})
		return
	}
	writeJSON(w, http.StatusOK, masked)
}

// GetHealth reports liveness.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiters == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiters.get(clientKey(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "Trop de requêtes, veuillez patienter"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sessionOrCreate resolves the caller's session, issuing a cookie for new ones.
func (s *Server) sessionOrCreate(w http.ResponseWriter, r *http.Request) string {
	if sid := sessionFromRequest(r); sid != "" {
		return sid
	}
	sid := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(SessionHeader, sid)
	return sid
}

func sessionFromRequest(r *http.Request) string {
	if sid := strings.TrimSpace(r.Header.Get(SessionHeader)); sid != "" {
		return sid
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func userFromRequest(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(UserHeader))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, errors.New("invalid user id")
	}
	return id, nil
}

// clientKey buckets rate limits per remote host. Session ids are chosen by
// the caller and cannot key a limit.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// limiterSet holds one token bucket per client. Buckets idle for longer than
// limiterIdle are dropped on the next lookup sweep.
type limiterSet struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	entries  map[string]*limiterEntry
	lastScan time.Time
}

type limiterEntry struct {
	limiter *rate.Limiter
	seen    time.Time
}

const limiterIdle = 10 * time.Minute

func newLimiterSet(limit rate.Limit, burst int) *limiterSet {
	return &limiterSet{
		limit:    limit,
		burst:    burst,
		entries:  make(map[string]*limiterEntry),
		lastScan: time.Now(),
	}
}

func (l *limiterSet) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastScan) > limiterIdle {
		for k, e := range l.entries {
			if now.Sub(e.seen) > limiterIdle {
				delete(l.entries, k)
			}
		}
		l.lastScan = now
	}

	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.seen = now
	return e.limiter
}
