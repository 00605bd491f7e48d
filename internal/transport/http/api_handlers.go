package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/amananurag20/Virtual-focus-room-sub000/internal/auth"
	"github.com/amananurag20/Virtual-focus-room-sub000/internal/core"
	"github.com/amananurag20/Virtual-focus-room-sub000/internal/store"
)

// chatHistoryLimit caps how many persisted messages one request returns.
const chatHistoryLimit = 100

// APIHandlers provides HTTP handlers for REST API endpoints.
type APIHandlers struct {
	authService *auth.Service
	hub         *core.Hub
	records     store.RecordStore
	log         *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(authService *auth.Service, hub *core.Hub, records store.RecordStore, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		authService: authService,
		hub:         hub,
		records:     records,
		log:         logger,
	}
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response body.
type AuthResponse struct {
	Token string `json:"token"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Register handles user registration.
// POST /api/register
func (h *APIHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid register request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	token, err := h.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "user already exists"})
			return
		}
		h.log.Error().Err(err).Str("username", req.Username).Msg("failed to register user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("username", req.Username).Msg("user registered successfully")
	c.JSON(http.StatusCreated, AuthResponse{Token: token})
}

// Login handles user login.
// POST /api/login
func (h *APIHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid login request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		h.log.Error().Err(err).Str("username", req.Username).Msg("failed to login user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("username", req.Username).Msg("user logged in successfully")
	c.JSON(http.StatusOK, AuthResponse{Token: token})
}

// GuestLogin returns a token for a guest user. A request carrying a
// known guest_session cookie resumes that identity instead of minting a
// new one.
// POST /api/guest
func (h *APIHandlers) GuestLogin(c *gin.Context) {
	if sessionID, err := c.Cookie("guest_session"); err == nil && sessionID != "" {
		token, resumeErr := h.authService.ResumeGuestUser(c.Request.Context(), sessionID)
		if resumeErr == nil {
			h.log.Info().Str("session_id", sessionID).Msg("guest session resumed")
			c.JSON(http.StatusOK, AuthResponse{Token: token})
			return
		}
		// Unknown or expired session: fall through and mint a new one.
		h.log.Debug().Err(resumeErr).Str("session_id", sessionID).Msg("guest session not resumable")
	}

	token, sessionID, err := h.authService.CreateGuestUser(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create guest user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	// Set session cookie
	c.SetCookie(
		"guest_session",
		sessionID,
		3600*24*7, // 7 days
		"/",
		"",
		false, // secure (set to true in production with HTTPS)
		true,  // httpOnly
	)

	h.log.Info().Str("session_id", sessionID).Msg("guest user created")
	c.JSON(http.StatusOK, AuthResponse{Token: token})
}

// ListRooms returns the current public room directory.
// GET /api/rooms
func (h *APIHandlers) ListRooms(c *gin.Context) {
	summaries, err := h.hub.Snapshot(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to snapshot rooms")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Debug().Int("room_count", len(summaries)).Msg("rooms listed successfully")
	c.JSON(http.StatusOK, roomSummaries(summaries))
}

// ChatRecordResponse is one persisted chat message in API responses.
type ChatRecordResponse struct {
	ConnectionID string `json:"connectionId"`
	DisplayName  string `json:"displayName"`
	Text         string `json:"text"`
	Timestamp    int64  `json:"timestamp"`
}

// RoomChatHistory returns the persisted chat records for a room, oldest
// first. The room itself may already be gone; records outlive it.
// GET /api/rooms/:id/chat
func (h *APIHandlers) RoomChatHistory(c *gin.Context) {
	roomID := c.Param("id")
	if roomID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "room id is required"})
		return
	}

	records, err := h.records.ListChatRecords(c.Request.Context(), roomID, chatHistoryLimit)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to list chat records")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]ChatRecordResponse, 0, len(records))
	for _, rec := range records {
		response = append(response, ChatRecordResponse{
			ConnectionID: rec.ConnID,
			DisplayName:  rec.DisplayName,
			Text:         rec.Text,
			Timestamp:    rec.CreatedAt.UnixMilli(),
		})
	}

	h.log.Debug().Str("room_id", roomID).Int("record_count", len(response)).Msg("chat history listed")
	c.JSON(http.StatusOK, response)
}
