package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gamerank/leaderboard/internal/config"
	"github.com/gamerank/leaderboard/internal/domain"
	"github.com/gamerank/leaderboard/internal/service"
	"github.com/gamerank/leaderboard/internal/websocket"
)

// Handler provides HTTP handlers for the leaderboard API
type Handler struct {
	service *service.LeaderboardService
	hub     *websocket.Hub
	config  *config.LeaderboardConfig
	logger  *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(svc *service.LeaderboardService, hub *websocket.Hub, cfg *config.LeaderboardConfig, logger *slog.Logger) *Handler {
	return &Handler{
		service: svc,
		hub:     hub,
		config:  cfg,
		logger:  logger,
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)

	// Health check
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler())

	// WebSocket endpoint
	r.Get("/ws", h.HandleWebSocket)

	// Account operations
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)

	// Score submission
	r.Post("/submit-score", h.SubmitScore)

	// Reads
	r.Get("/leaderboard/top", h.GetTop)
	r.Route("/player/{playerID}", func(r chi.Router) {
		r.Get("/", h.GetProfile)
		r.Get("/history", h.GetHistory)
	})

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeSuccess writes a successful JSON response
func (h *Handler) writeSuccess(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeError writes an error JSON response
func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   err.Error(),
	})
}

// writeServiceError maps a service error to an HTTP status
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsNotFoundError(err):
		h.writeError(w, http.StatusNotFound, err)
	case domain.IsInvalidArgument(err), errors.Is(err, domain.ErrPlayerExists):
		h.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrInvalidCredentials):
		h.writeError(w, http.StatusUnauthorized, err)
	case domain.IsRetryable(err):
		h.writeError(w, http.StatusServiceUnavailable, err)
	default:
		h.logger.Error("request failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
	}
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "ready"})
}

type signupRequest struct {
	Name         string `json:"name"`
	PhoneOrEmail string `json:"phone_or_email"`
	Password     string `json:"password"`
}

// Signup registers a new player
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	if err := h.service.Signup(r.Context(), req.Name, req.PhoneOrEmail, req.Password); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    map[string]string{"message": "signup successful"},
	})
}

type loginRequest struct {
	PhoneOrEmail string `json:"phone_or_email"`
	Password     string `json:"password"`
}

type loginResponse struct {
	PlayerID uuid.UUID `json:"player_id"`
	Name     string    `json:"name"`
	Token    string    `json:"token"`
}

// Login verifies credentials and returns a signed token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}
	if req.PhoneOrEmail == "" || req.Password == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	player, token, err := h.service.Login(r.Context(), req.PhoneOrEmail, req.Password)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeSuccess(w, loginResponse{
		PlayerID: player.ID,
		Name:     player.Name,
		Token:    token,
	})
}

// SubmitScore handles score submission. The player is identified by a bearer
// token when one is present, otherwise by the player_id in the body.
func (h *Handler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var submission domain.ScoreSubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	playerID := submission.PlayerID
	if token := bearerToken(r); token != "" {
		id, err := h.service.IdentifyToken(token)
		if err != nil {
			h.writeError(w, http.StatusUnauthorized, err)
			return
		}
		playerID = id
	}
	if playerID == uuid.Nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	if err := h.service.SubmitScore(r.Context(), playerID, submission.Score); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeSuccess(w, map[string]string{"message": "score submitted"})
}

// bearerToken extracts the token from an Authorization header, if any
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return auth[7:]
	}
	return ""
}

type topResponse struct {
	Total int                       `json:"total"`
	Items []domain.LeaderboardEntry `json:"items"`
}

// GetTop returns the top N leaderboard rows
func (h *Handler) GetTop(w http.ResponseWriter, r *http.Request) {
	n := h.config.DefaultTopN
	if nStr := r.URL.Query().Get("n"); nStr != "" {
		parsed, err := strconv.Atoi(nStr)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, domain.ErrInvalidLimit)
			return
		}
		n = parsed
	}

	entries, err := h.service.GetTop(r.Context(), n)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeSuccess(w, topResponse{
		Total: len(entries),
		Items: entries,
	})
}

// GetProfile returns a player's identity, best score and current rank
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	playerID, err := uuid.Parse(chi.URLParam(r, "playerID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), playerID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeSuccess(w, profile)
}

type historyResponse struct {
	PlayerID uuid.UUID           `json:"player_id"`
	Name     string              `json:"name"`
	History  []domain.ScoreEvent `json:"history"`
}

// GetHistory returns a player's most recent submissions, newest first
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	playerID, err := uuid.Parse(chi.URLParam(r, "playerID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	limit := h.config.DefaultHistoryLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, domain.ErrInvalidLimit)
			return
		}
		limit = parsed
	}

	history, err := h.service.GetHistory(r.Context(), playerID, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeSuccess(w, historyResponse{
		PlayerID: history.PlayerID,
		Name:     history.Name,
		History:  history.Items,
	})
}
