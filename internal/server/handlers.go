package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/vietride/server/internal/catalog"
	errx "github.com/vietride/server/internal/core/error"
)

// maxSeededTitleLen caps session titles derived from the first chat message.
const maxSeededTitleLen = 50

type chatRequest struct {
	Message string `json:"message"`
	Model   string `json:"model"`
}

type modelRequest struct {
	Model string `json:"model"`
}

type sessionRequest struct {
	Title        string `json:"title"`
	SessionID    string `json:"sessionId"`
	FirstMessage string `json:"firstMessage"`
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type bookingRequest struct {
	Trip catalog.Trip `json:"trip"`
}

// ── Chat (session scoped) ────────────────────────────────────────────────

func (s *Server) getMessages(c *echo.Context) error {
	state, err := s.chats.Session(c.Param("sessionId")).State(c.Request().Context())
	if err != nil {
		return fail(c, errx.StatusOf(err), errx.MessageOf(err))
	}
	return ok(c, state)
}

func (s *Server) postChat(c *echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	state, err := s.chats.Session(c.Param("sessionId")).Submit(c.Request().Context(), req.Message, req.Model)
	if err != nil {
		return fail(c, errx.StatusOf(err), errx.MessageOf(err))
	}
	return ok(c, state)
}

func (s *Server) clearMessages(c *echo.Context) error {
	state, err := s.chats.Session(c.Param("sessionId")).Clear(c.Request().Context())
	if err != nil {
		return fail(c, errx.StatusOf(err), errx.MessageOf(err))
	}
	return ok(c, state)
}

func (s *Server) updateModel(c *echo.Context) error {
	var req modelRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	state, err := s.chats.Session(c.Param("sessionId")).SetModel(c.Request().Context(), req.Model)
	if err != nil {
		return fail(c, errx.StatusOf(err), errx.MessageOf(err))
	}
	return ok(c, state)
}

// ── Sessions (global) ────────────────────────────────────────────────────

func (s *Server) createSession(c *echo.Context) error {
	var req sessionRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	id := req.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	title := req.Title
	if title == "" && req.FirstMessage != "" {
		title = seedTitle(req.FirstMessage)
	}

	info, err := s.store.AddSession(c.Request().Context(), id, title)
	if err != nil {
		return fail(c, errx.StatusOf(err), errx.MessageOf(err))
	}
	return ok(c, map[string]any{"sessionId": info.ID, "title": info.Title})
}

func (s *Server) listSessions(c *echo.Context) error {
	sessions, err := s.store.ListSessions(c.Request().Context())
	if err != nil {
		return fail(c, errx.StatusOf(err), errx.MessageOf(err))
	}
	return ok(c, sessions)
}

func (s *Server) clearSessions(c *echo.Context) error {
	count, err := s.store.ClearAllSessions(c.Request().Context())
	if err != nil {
		return fail(c, errx.StatusOf(err), errx.MessageOf(err))
	}
	return ok(c, map[string]any{"deletedCount": count})
}

// seedTitle derives a session title from the first chat message.
func seedTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= maxSeededTitleLen {
		return message
	}
	return string(runes[:maxSeededTitleLen]) + "..."
}

// ── Auth ─────────────────────────────────────────────────────────────────

func (s *Server) register(c *echo.Context) error {
	var req authRequest
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "Email and password are required")
	}
	data, err := s.store.RegisterUser(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, errx.StatusOf(err), errx.MessageOf(err))
	}
	return ok(c, data)
}

func (s *Server) login(c *echo.Context) error {
	var req authRequest
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "Email and password are required")
	}
	data, err := s.store.LoginUser(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, errx.StatusOf(err), errx.MessageOf(err))
	}
	return ok(c, data)
}

// ── Bookings (authenticated) ─────────────────────────────────────────────

func (s *Server) addBooking(c *echo.Context) error {
	var req bookingRequest
	if err := c.Bind(&req); err != nil || req.Trip.ID == "" {
		return fail(c, http.StatusBadRequest, "Trip is required")
	}
	userID, _ := c.Get(userIDKey).(string)
	booking, err := s.store.AddBooking(c.Request().Context(), userID, req.Trip)
	if err != nil {
		return fail(c, errx.StatusOf(err), errx.MessageOf(err))
	}
	return ok(c, booking)
}

func (s *Server) listBookings(c *echo.Context) error {
	userID, _ := c.Get(userIDKey).(string)
	bookings, err := s.store.GetBookings(c.Request().Context(), userID)
	if err != nil {
		return fail(c, errx.StatusOf(err), errx.MessageOf(err))
	}
	return ok(c, bookings)
}
