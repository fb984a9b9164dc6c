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
)

const (
	msgInvalidURL  = "Invalid URL"
	msgURLNotFound = "URL Does Not Exist"
)

// ShortURLHandler handles HTTP requests for URL operations. Bad input and
// unknown codes are answered with 200 and an error body.
type ShortURLHandler struct {
	service *service.ShortURLService
	log     *logger.Logger
}

// NewShortURLHandler creates a new handler instance
func NewShortURLHandler(svc *service.ShortURLService, log *logger.Logger) *ShortURLHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &ShortURLHandler{service: svc, log: log}
}

// Routes mounts the shortener API
func (h *ShortURLHandler) Routes(r chi.Router) {
	r.Get("/api/hello", h.HandleHello)
	r.Post("/api/shorturl", h.HandleShorten)
	r.Get("/api/shorturl/{code}", h.HandleRedirect)
}

// ============ HANDLERS ============

// HandleShorten creates or reuses a short code
// POST /api/shorturl
func (h *ShortURLHandler) HandleShorten(w http.ResponseWriter, r *http.Request) {
	var req model.ShortenRequest
	if err := bind(w, r, &req, func(v url.Values) {
		req.URL = v.Get("url")
	}); err != nil {
		if apperr.IsKind(err, apperr.KindValidation) {
			writeJSON(w, http.StatusOK, apperr.Response{Error: msgInvalidURL})
			return
		}
		writeError(w, r, h.log, err)
		return
	}

	resp, err := h.service.Shorten(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, service.ErrInvalidURL) {
			writeJSON(w, http.StatusOK, apperr.Response{Error: msgInvalidURL})
			return
		}
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleRedirect redirects to the original URL
// GET /api/shorturl/{code}
func (h *ShortURLHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	original, err := h.service.Resolve(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		if errors.Is(err, service.ErrURLNotFound) {
			writeJSON(w, http.StatusOK, apperr.Response{Error: msgURLNotFound})
			return
		}
		writeError(w, r, h.log, err)
		return
	}

	// Location is written verbatim: http.Redirect would resolve scheme-less
	// originals such as "example.com" against this request's path.
	w.Header().Set("Location", original)
	w.WriteHeader(http.StatusFound)
}

// HandleHello is a trivial probe kept for existing clients
// GET /api/hello
func (h *ShortURLHandler) HandleHello(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"greeting": "hello API"})
}
