// Package router maps the gateway's HTTP API onto client sessions.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	mylog "github.com/tonari-app/tonari/internal/logger"
	"github.com/tonari-app/tonari/internal/route"
	"github.com/tonari-app/tonari/internal/session"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "tonari_session"
)

// max accepted upload, before shrinking
const maxUploadBytes = 16 << 20

type Config struct {
	// OverrideLocation replaces the client's position fix when set.
	OverrideLocation string
	SessionTTL       time.Duration
}

type API struct {
	cfg      Config
	sessions *session.Registry
	logger   *slog.Logger
}

func New(cfg Config, sessions *session.Registry, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{cfg: cfg, sessions: sessions, logger: logger}
}

// Routes mounts the API on r.
func (a *API) Routes(r chi.Router) {
	r.Get("/app", a.handleApp)
	r.Get("/attributes", a.handleAttributes)

	r.Group(func(r chi.Router) {
		r.Use(a.withSession)

		r.Get("/state", a.handleState)
		r.Put("/settings", a.handleSettings)
		r.Get("/now", a.handleNowGPS)
		r.Get("/later", a.handleLater)
		r.Post("/add", a.handleAdd)
		r.Post("/gesture/replay", a.handleGestureReplay)

		r.Route("/now/{pos}", func(r chi.Router) {
			r.Get("/", a.handleScreen)
			r.Post("/choose", a.handleChoose)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", a.handleScreen)
				r.Get("/edit", a.handleScreen)
				r.Post("/edit", a.handleEdit)
				r.Get("/go", a.handleScreen)
				r.Get("/go/edit", a.handleScreen)
				r.Post("/go/edit", a.handleEdit)
				r.Post("/comments", a.handleComment)
				r.Post("/images", a.handleUpload)
				r.Post("/images/flag", a.handleFlag)
			})
		})
	})
}

type ctxKey int

const sessionKey ctxKey = iota

// withSession attaches the caller's session, minting one when the request
// carries no known id. The id travels back in a header and a cookie.
func (a *API) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if id == "" {
			if c, err := r.Cookie(SessionCookie); err == nil {
				id = c.Value
			}
		}
		sess, created := a.sessions.Get(id)
		if created {
			a.logger.DebugContext(r.Context(), "session created", "session_id", sess.ID())
		}

		w.Header().Set(SessionHeader, sess.ID())
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID(),
			Path:     "/",
			MaxAge:   int(a.cfg.SessionTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		flags := route.FlagsFrom(r.URL.Query())
		ctx := mylog.WithSessionID(r.Context(), sess.ID())
		ctx = session.WithDebugging(ctx, flags.Debugging)
		ctx = context.WithValue(ctx, sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey).(*session.Session)
	return s
}

// chiParam returns the unescaped URL parameter key.
func chiParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}
