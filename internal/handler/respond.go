package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/cs-tungthanh/fcc-microservices/internal/apperr"
	"github.com/cs-tungthanh/fcc-microservices/internal/logger"
	"github.com/cs-tungthanh/fcc-microservices/internal/validator"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError is the single place where errors become responses.
// AppErrors keep their status, request validation failures become 400 with
// the first failed field, anything else is a logged 500.
func writeError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	log = logger.FromContext(r.Context(), log)

	if appErr, ok := apperr.As(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			log.Error("request failed", "path", r.URL.Path, "error", err.Error())
		}
		appErr.WriteJSON(w)
		return
	}

	if msg, ok := validator.FirstMessage(err); ok {
		apperr.BadRequest(msg).WriteJSON(w)
		return
	}

	log.Error("request failed", "path", r.URL.Path, "error", err.Error())
	apperr.Internal(err).WriteJSON(w)
}

// bind reads a JSON body into dst, or hands url-encoded and multipart
// form values to fromForm.
func bind(w http.ResponseWriter, r *http.Request, dst any, fromForm func(url.Values)) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		err := json.NewDecoder(r.Body).Decode(dst)
		if err != nil && !errors.Is(err, io.EOF) {
			return apperr.InvalidBody(err)
		}
		return nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return apperr.InvalidBody(err)
		}
	default:
		if err := r.ParseForm(); err != nil {
			return apperr.InvalidBody(err)
		}
	}

	fromForm(r.PostForm)
	return nil
}

func notFound(w http.ResponseWriter, r *http.Request) {
	apperr.WriteJSON(w, http.StatusNotFound, "not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	apperr.WriteJSON(w, http.StatusMethodNotAllowed, "method not allowed")
}
