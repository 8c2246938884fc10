package server

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/option"

	"github.com/calfront/calfront/internal/authflow"
	"github.com/calfront/calfront/internal/calendar"
	"github.com/calfront/calfront/internal/config"
	"github.com/calfront/calfront/internal/jsonutil"
	"github.com/calfront/calfront/internal/log"
	"github.com/calfront/calfront/internal/session"
)

// Handlers provides the front's HTTP handlers with dependency injection
type Handlers struct {
	cfg      config.Config
	flow     *authflow.Controller
	pipeline *calendar.Pipeline

	// calendarOpts lets tests point the provider client at a fake endpoint
	calendarOpts []option.ClientOption
}

// NewHandlers creates the front handlers
func NewHandlers(cfg config.Config, calendarOpts ...option.ClientOption) *Handlers {
	return &Handlers{
		cfg:          cfg,
		flow:         authflow.New(cfg.Front),
		pipeline:     calendar.NewPipeline(cfg.Calendar),
		calendarOpts: calendarOpts,
	}
}

// Routes builds the front's route table
func (h *Handlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.IndexHandler)
	mux.HandleFunc("GET /auth/login", h.LoginHandler)
	mux.HandleFunc("POST /auth/logout", h.LogoutHandler)
	mux.HandleFunc("GET /api/events", h.EventsHandler)
	mux.Handle("GET /health", NewHealthHandler())
	return mux
}

// IndexHandler classifies the page load against the callback decision
// procedure, then renders the locked or unlocked page. Completed callbacks
// are answered with a redirect to the bare path so the query string never
// survives into the rendered page.
func (h *Handlers) IndexHandler(w http.ResponseWriter, r *http.Request) {
	outcome := h.flow.HandleReturn(w, r)

	switch outcome.Status {
	case authflow.CallbackError:
		setNotice(w, "error", outcome.Reason.Message())
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
		return
	case authflow.CallbackSuccess:
		setNotice(w, "success", "Authentication successful. You are signed in.")
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
		return
	}

	kind, message := takeNotice(w, r)
	renderIndex(w, IndexPageData{
		Authenticated: session.HasToken(r),
		CalendarName:  h.cfg.Calendar.Name,
		EventTitle:    h.cfg.Calendar.EventTitle,
		Notice:        message,
		NoticeKind:    kind,
	})
}

// LoginHandler initiates an authorization attempt and redirects out.
func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.Initiate(w, r); err != nil {
		log.LogErrorWithFields("server", "Failed to initiate authorization", map[string]any{
			"error": err.Error(),
		})
		jsonutil.WriteInternalServerError(w, "Could not start sign-in")
	}
}

// LogoutHandler deletes the token cookie and returns to the locked page.
func (h *Handlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	session.DeleteToken(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// EventsHandler runs the calendar pipeline for the current session. Every
// provider failure surfaces as one display-level error; authentication state
// is never affected here.
func (h *Handlers) EventsHandler(w http.ResponseWriter, r *http.Request) {
	svc, err := calendar.NewService(r.Context(), session.Token(r), h.calendarOpts...)
	if err != nil {
		if errors.Is(err, calendar.ErrUnauthenticated) {
			jsonutil.WriteUnauthorized(w, "Sign in to view events")
			return
		}
		log.LogErrorWithFields("server", "Failed to create calendar service", map[string]any{
			"error": err.Error(),
		})
		jsonutil.WriteInternalServerError(w, "Could not load calendar events")
		return
	}

	lists, err := h.pipeline.Load(r.Context(), svc)
	if err != nil {
		if errors.Is(err, calendar.ErrCalendarNotFound) {
			jsonutil.WriteNotFound(w, "Calendar "+h.cfg.Calendar.Name+" was not found")
			return
		}
		log.LogErrorWithFields("server", "Calendar pipeline failed", map[string]any{
			"error": err.Error(),
		})
		jsonutil.WriteBadGateway(w, "Could not load calendar events")
		return
	}

	_ = jsonutil.Write(w, lists)
}

// noticeCookie carries the callback outcome across the URL-scrubbing
// redirect. One-shot: reading it clears it.
const noticeCookie = "oauth_notice"

func setNotice(w http.ResponseWriter, kind, message string) {
	value := base64.RawURLEncoding.EncodeToString([]byte(kind + "|" + message))
	http.SetCookie(w, &http.Cookie{
		Name:     noticeCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func takeNotice(w http.ResponseWriter, r *http.Request) (kind, message string) {
	c, err := r.Cookie(noticeCookie)
	if err != nil {
		return "", ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:   noticeCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	decoded, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return "", ""
	}
	kind, message, ok := strings.Cut(string(decoded), "|")
	if !ok {
		return "", ""
	}
	return kind, message
}
