// Package server is the HTTP surface: JSON endpoints for the browsing,
// playback, and admin screens, plus the public share watch page.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/reelhouse/reelhouse/internal/content"
	"github.com/reelhouse/reelhouse/internal/form"
	"github.com/reelhouse/reelhouse/internal/ratelimit"
	"github.com/reelhouse/reelhouse/internal/session"
	"github.com/reelhouse/reelhouse/internal/store"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// ThumbnailStore stages admin-uploaded thumbnail images; *storage.Storage is
// the production implementation.
type ThumbnailStore interface {
	UploadThumbnail(ctx context.Context, key string, body io.Reader, contentType string, size int64) error
	ThumbnailURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	DeleteThumbnail(ctx context.Context, key string) error
}

// accountAPI is the slice of the platform API the auth handlers call
// directly, outside the session manager.
type accountAPI interface {
	VerifyEmail(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, token, password string) error
}

type Config struct {
	Auth      *session.Manager
	Accounts  accountAPI
	Tokens    *session.Tokens
	Videos    *content.Videos
	Playlists *content.Playlists
	Comments  *content.Comments
	Users     *content.Users
	Feedback  *content.Feedback
	Watch     *content.Watch
	Shares    *content.Shares
	Store     *store.Store
	Storage   ThumbnailStore // nil disables thumbnail staging
	Pinger    Pinger
	BaseURL   string
}

type Server struct {
	router    chi.Router
	auth      *session.Manager
	accounts  accountAPI
	tokens    *session.Tokens
	videos    *content.Videos
	playlists *content.Playlists
	comments  *content.Comments
	users     *content.Users
	feedback  *content.Feedback
	watch     *content.Watch
	shares    *content.Shares
	store     *store.Store
	storage   ThumbnailStore
	pinger    Pinger
	forms     *form.Registry
}

func New(cfg Config) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(securityHeaders(cfg.BaseURL))

	s := &Server{
		router:    r,
		auth:      cfg.Auth,
		accounts:  cfg.Accounts,
		tokens:    cfg.Tokens,
		videos:    cfg.Videos,
		playlists: cfg.Playlists,
		comments:  cfg.Comments,
		users:     cfg.Users,
		feedback:  cfg.Feedback,
		watch:     cfg.Watch,
		shares:    cfg.Shares,
		store:     cfg.Store,
		storage:   cfg.Storage,
		pinger:    cfg.Pinger,
		forms:     form.NewRegistry(),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)

	authLimiter := ratelimit.NewLimiter(0.5, 5)
	s.router.Route("/api/auth", func(r chi.Router) {
		r.Use(authLimiter.Middleware)
		r.Post("/signup", s.handleSignUp)
		r.Post("/signin", s.handleSignIn)
		r.Post("/signout", s.handleSignOut)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/reset-password", s.handleResetPassword)
		r.Get("/verify-email", s.handleVerifyEmail)
	})

	s.router.Route("/api/videos", func(r chi.Router) {
		r.Get("/", s.handleListVideos)
		r.Get("/genre/{genre}", s.handleVideosByGenre)
		r.Get("/{id}", s.handleGetVideo)
		r.Get("/{id}/comments", s.handleListComments)

		commentLimiter := ratelimit.NewLimiter(1, 5)
		r.Group(func(r chi.Router) {
			r.Use(s.tokens.Middleware)
			r.With(commentLimiter.Middleware).Post("/{id}/comments", s.handleCreateComment)
			r.Post("/{id}/feedback", s.handleFilmFeedback)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.tokens.Middleware, session.RequireAdmin)
			r.Post("/", s.handleCreateVideo)
			r.Patch("/{id}", s.handleUpdateVideo)
			r.Delete("/{id}", s.handleDeleteVideo)
			r.Post("/{id}/thumbnail", s.handleUploadThumbnail)
		})
	})

	s.router.Route("/api/playlists", func(r chi.Router) {
		r.Get("/", s.handleListPlaylists)
		r.Get("/tag/{tag}", s.handlePlaylistsByTag)
		r.Get("/{id}", s.handleGetPlaylist)

		r.Group(func(r chi.Router) {
			r.Use(s.tokens.Middleware, session.RequireAdmin)
			r.Post("/", s.handleCreatePlaylist)
			r.Patch("/{id}", s.handleUpdatePlaylist)
			r.Delete("/{id}", s.handleDeletePlaylist)
		})
	})

	s.router.Route("/api/admin/comments", func(r chi.Router) {
		r.Use(s.tokens.Middleware, session.RequireAdmin)
		r.Get("/", s.handleAllComments)
		r.Patch("/{id}/status", s.handleModerateComment)
		r.Get("/export", s.handleExportComments)
	})

	s.router.With(s.tokens.Middleware, session.RequireAdmin).
		Get("/api/admin/feedback/export", s.handleExportFeedback)

	s.router.Get("/api/languages", s.handleLanguages)

	s.router.Route("/api/profile", func(r chi.Router) {
		r.Use(s.tokens.Middleware)
		r.Get("/", s.handleGetProfile)
		r.Patch("/", s.handleUpdateProfile)
		r.Put("/password", s.handleChangePassword)
		r.Delete("/", s.handleDeleteAccount)
		r.Get("/comments", s.handleOwnComments)
	})

	s.router.With(s.tokens.Middleware).Post("/api/feedback", s.handleGeneralFeedback)

	s.router.Route("/api/watch/sessions", func(r chi.Router) {
		r.Post("/", s.handleStartWatchSession)
		r.Patch("/{id}", s.handleWatchProgress)
		r.Post("/{id}/end", s.handleEndWatchSession)
	})

	s.router.With(s.tokens.Middleware).Post("/api/share-links", s.handleCreateShareLink)
	shareLimiter := ratelimit.NewLimiter(2, 10)
	s.router.With(shareLimiter.Middleware).Get("/watch/{token}", s.handleShareWatchPage)

	s.router.Route("/api/prefs", func(r chi.Router) {
		r.Get("/theme", s.handleGetTheme)
		r.Put("/theme", s.handleSetTheme)
		r.Get("/signup-draft", s.handleGetSignupDraft)
		r.Put("/signup-draft", s.handleSaveSignupDraft)
		r.Delete("/signup-draft", s.handleClearSignupDraft)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy","error":"database unreachable"}`))
			return
		}
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
