// Package dashboard serves the web UI: login with a security-question
// reset flow, record management, analytics and downloads.
package dashboard

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/cirodil/tenhens/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionCookie = "tenhens_session"

// Server is the dashboard HTTP server.
type Server struct {
	echo     *echo.Echo
	log      *zap.Logger
	svc      *service.Service
	auth     *Auth
	sessions *Sessions
}

type renderer struct {
	tpl *template.Template
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.tpl.ExecuteTemplate(w, name, data)
}

// NewServer builds the echo application with all routes registered.
func NewServer(log *zap.Logger, svc *service.Service, auth *Auth) (*Server, error) {
	tpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = &renderer{tpl: tpl}
	e.Use(middleware.Recover())

	s := &Server{
		echo:     e,
		log:      log,
		svc:      svc,
		auth:     auth,
		sessions: NewSessions(),
	}

	e.GET("/login", s.loginPage)
	e.POST("/login", s.login)
	e.GET("/register", s.registerPage)
	e.POST("/register", s.register)
	e.GET("/reset", s.resetPage)
	e.POST("/reset", s.reset)
	e.GET("/logout", s.logout)

	auth1 := e.Group("", s.requireSession)
	auth1.GET("/", s.overview)
	auth1.GET("/analytics", s.analyticsPage)
	auth1.POST("/records", s.addRecord)
	auth1.POST("/records/:id/update", s.updateRecord)
	auth1.POST("/records/:id/delete", s.deleteRecord)
	auth1.GET("/chart.png", s.chartPNG)
	auth1.GET("/export.xlsx", s.exportXLSX)

	return s, nil
}

// Start runs the HTTP listener until Shutdown.
func (s *Server) Start(addr string) error {
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// requireSession resolves the session cookie and stores the session in the
// request context; unauthenticated requests go to the login page.
func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(sessionCookie)
		if err != nil {
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		sess := s.sessions.Get(cookie.Value)
		if sess == nil {
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		c.Set("session", sess)
		return next(c)
	}
}

// session returns the request's session set by requireSession.
func (s *Server) session(c echo.Context) *Session {
	sess, _ := c.Get("session").(*Session)
	return sess
}

func (s *Server) setSessionCookie(c echo.Context, sess *Session) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
