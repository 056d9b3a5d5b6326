package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cheetahbyte/licensemgr/internal/handlers/dto"
	"github.com/cheetahbyte/licensemgr/internal/registry"
	"github.com/cheetahbyte/licensemgr/internal/services"
	"github.com/go-chi/render"
	"schneider.vip/problem"
)

const (
	msgHostRequired = "No host defined in request body"
	msgNotFound     = "License not found"
	msgKeySpace     = "Could not generate a unique license key"
	msgUnauthorized = "Unauthorized"
	msgInternal     = "Internal server error"
	msgInvalidRoute = "Invalid route"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, dto.ErrorResponse{Error: msg})
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, registry.ErrHostRequired):
		writeMessage(w, r, http.StatusInternalServerError, msgHostRequired)
	case errors.Is(err, registry.ErrNotFound):
		writeMessage(w, r, http.StatusInternalServerError, msgNotFound)
	case errors.Is(err, registry.ErrKeySpace):
		writeMessage(w, r, http.StatusInternalServerError, msgKeySpace)
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		writeMessage(w, r, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, services.ErrAuthDisabled):
		writeMessage(w, r, http.StatusNotFound, msgInvalidRoute)
	default:
		slog.ErrorContext(r.Context(), "unhandled error", "err", err.Error())
		writeMessage(w, r, http.StatusInternalServerError, msgInternal)
	}
}

// decodeJSON reads the whole body, bounded by maxBodyBytes, and decodes it.
// Anything after the first JSON value is a malformed body. On failure the
// problem response has already been written.
func (h *Handlers) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_, _ = problem.Of(http.StatusRequestEntityTooLarge).
				Append(problem.Title("Request body too large")).
				Append(problem.Instance(r.URL.Path)).
				WriteTo(w)
			return err
		}
		return h.malformedBody(w, r, err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return h.malformedBody(w, r, err)
	}

	return nil
}

func (h *Handlers) malformedBody(w http.ResponseWriter, r *http.Request, err error) error {
	_, _ = problem.Of(http.StatusBadRequest).
		Append(problem.Title("Malformed request body")).
		Append(problem.Detail(err.Error())).
		Append(problem.Instance(r.URL.Path)).
		WriteTo(w)
	return err
}

func InvalidRoute(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, r, http.StatusNotFound, msgInvalidRoute)
}
