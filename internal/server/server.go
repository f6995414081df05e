// Package server maps the HTTP surface onto the session actors and the keyed
// store. Every response is a {success, data, error} envelope.
package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/vietride/server/internal/chat"
	"github.com/vietride/server/internal/store"
	logx "github.com/vietride/server/pkg/logger"
)

const userIDKey = "userID"

// Server is the routing shim. It implements http.Handler.
type Server struct {
	echo  *echo.Echo
	chats *chat.Manager
	store *store.Store
}

// New builds the routing table.
func New(chats *chat.Manager, st *store.Store) *Server {
	s := &Server{
		echo:  echo.New(),
		chats: chats,
		store: st,
	}

	s.echo.Use(requestLogger)

	api := s.echo.Group("/api")

	session := api.Group("/chat/:sessionId")
	session.GET("/messages", s.getMessages)
	session.POST("/chat", s.postChat)
	session.DELETE("/clear", s.clearMessages)
	session.POST("/model", s.updateModel)

	api.POST("/sessions", s.createSession)
	api.GET("/sessions", s.listSessions)
	api.DELETE("/sessions", s.clearSessions)

	api.POST("/auth/register", s.register)
	api.POST("/auth/login", s.login)

	bookings := api.Group("/bookings")
	bookings.Use(s.requireAuth)
	bookings.POST("", s.addBooking)
	bookings.GET("", s.listBookings)

	s.echo.Any("/*", func(c *echo.Context) error {
		return fail(c, http.StatusNotFound, "Not found")
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(c *echo.Context, data any) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func fail(c *echo.Context, status int, msg string) error {
	return c.JSON(status, envelope{Success: false, Error: msg})
}

// requireAuth resolves the bearer token (a user id in this trust domain) and
// stores the authenticated user id on the request context.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			return fail(c, http.StatusUnauthorized, "Unauthorized")
		}
		user, err := s.store.GetUser(c.Request().Context(), token)
		if err != nil {
			return fail(c, http.StatusUnauthorized, "Unauthorized")
		}
		c.Set(userIDKey, user.ID)
		return next(c)
	}
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		start := time.Now()
		err := next(c)
		logx.Debug().
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Dur("elapsed", time.Since(start)).
			Err(err).
			Msg("request")
		return err
	}
}
