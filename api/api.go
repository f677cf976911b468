package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/rollcall-app/rollcall/api/auth"
	"github.com/rollcall-app/rollcall/api/handler"
	"github.com/rollcall-app/rollcall/avatar"
	"github.com/rollcall-app/rollcall/config"
	"github.com/rollcall-app/rollcall/database"
	"github.com/rollcall-app/rollcall/web"
)

type Server struct {
	cfg        *config.Config
	ginEngine  *gin.Engine
	store      database.Store
	avatars    *avatar.Storage
	httpServer *http.Server
}

func New(cfg *config.Config, store database.Store, avatars *avatar.Storage) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	s := &Server{
		cfg:       cfg,
		ginEngine: gin.Default(),
		store:     store,
		avatars:   avatars,
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	s.ginEngine.SetHTMLTemplate(tmpl)

	s.setupSession()
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupSession() {
	store := cookie.NewStore([]byte(s.cfg.Session.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   s.cfg.Session.MaxAge,
		HttpOnly: true,
		Secure:   s.cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions("rollcall_session", store))
}

func (s *Server) setupRoutes() {
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{avatar.URLPrefix})))

	h := handler.New(s.store, s.avatars, s.cfg.Gravatar)

	static, err := web.Static()
	if err == nil {
		s.ginEngine.StaticFS("/static", http.FS(static))
	}
	s.ginEngine.Static(avatar.URLPrefix, s.avatars.Dir())

	s.ginEngine.GET("/", h.Home)

	user := s.ginEngine.Group("/user")
	user.GET("/register", h.RegisterForm)
	user.POST("/register", h.Register)
	user.GET("/login", h.LoginForm)
	user.POST("/login2", h.Login)

	protected := user.Group("")
	protected.Use(auth.RequireAuth(s.store))
	protected.POST("/logout", h.Logout)
	protected.GET("/index", auth.RequireAdmin(), h.Index)
	protected.GET("/:id", h.Show)
	protected.GET("/:id/edit", h.EditForm)
	protected.PUT("/:id", h.Update)
	protected.DELETE("/:id", h.Delete)

	s.ginEngine.NoRoute(h.NotFound)
}

// Handler returns the server's http.Handler, including the method override
// wrapper. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return methodOverride(s.ginEngine)
}

func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s.Handler(),
	}
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// methodOverride lets HTML forms issue PUT and DELETE requests by tunneling
// the real verb through a _method query parameter or form field on a POST.
// It has to run before the router, which matches on the method.
func methodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			m := r.URL.Query().Get("_method")
			if m == "" && strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
				m = r.PostFormValue("_method")
			}
			switch strings.ToUpper(m) {
			case http.MethodPut:
				r.Method = http.MethodPut
			case http.MethodDelete:
				r.Method = http.MethodDelete
			}
		}
		next.ServeHTTP(w, r)
	})
}
