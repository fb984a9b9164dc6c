package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/cs-tungthanh/fcc-microservices/internal/apperr"
	"github.com/cs-tungthanh/fcc-microservices/internal/logger"
	"github.com/cs-tungthanh/fcc-microservices/internal/model"
	"github.com/cs-tungthanh/fcc-microservices/internal/service"
	"github.com/cs-tungthanh/fcc-microservices/internal/validator"
)

// ExerciseHandler handles HTTP requests for users and their exercise logs
type ExerciseHandler struct {
	service  *service.ExerciseService
	validate *validator.Validator
	log      *logger.Logger
}

// NewExerciseHandler creates a new handler instance
func NewExerciseHandler(svc *service.ExerciseService, log *logger.Logger) *ExerciseHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &ExerciseHandler{
		service:  svc,
		validate: validator.New(),
		log:      log,
	}
}

// Routes mounts the exercise tracker API
func (h *ExerciseHandler) Routes(r chi.Router) {
	r.Route("/api/users", func(r chi.Router) {
		r.Post("/", h.HandleCreateUser)
		r.Get("/", h.HandleListUsers)
		r.Post("/{id}/exercises", h.HandleCreateExercise)
		r.Get("/{id}/logs", h.HandleGetLogs)
	})
}

// ============ HANDLERS ============

// HandleCreateUser registers a user
// POST /api/users
func (h *ExerciseHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := bind(w, r, &req, func(v url.Values) {
		req.Username = v.Get("username")
	}); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	resp, err := h.service.CreateUser(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleListUsers returns every user
// GET /api/users
func (h *ExerciseHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// HandleCreateExercise appends an exercise to a user's log
// POST /api/users/{id}/exercises
func (h *ExerciseHandler) HandleCreateExercise(w http.ResponseWriter, r *http.Request) {
	var req model.CreateExerciseRequest
	if err := bind(w, r, &req, func(v url.Values) {
		req.Description = v.Get("description")
		req.Duration = model.FlexString(v.Get("duration"))
		req.Date = v.Get("date")
	}); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	resp, err := h.service.CreateExercise(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, r, h.log, apperr.NotFound("user"))
			return
		}
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleGetLogs returns a user's exercises, optionally bounded by
// from/to dates and truncated to limit entries.
// GET /api/users/{id}/logs?from=&to=&limit=
func (h *ExerciseHandler) HandleGetLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q, err := service.ParseLogQuery(query.Get("from"), query.Get("to"), query.Get("limit"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	resp, err := h.service.GetLogs(r.Context(), chi.URLParam(r, "id"), q)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			// Reported in the body with 200, not as an HTTP error.
			writeJSON(w, http.StatusOK, apperr.Response{Error: "user not found"})
			return
		}
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
