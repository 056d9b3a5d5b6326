package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/cheetahbyte/licensemgr/internal/handlers/dto"
	"schneider.vip/problem"
)

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var data dto.LoginRequest
	if err := h.decodeJSON(w, r, &data); err != nil {
		return
	}

	if err := h.validate.Struct(data); err != nil {
		_, _ = problem.Of(http.StatusBadRequest).
			Append(problem.Title("password is required")).
			Append(problem.Instance(r.URL.Path)).
			WriteTo(w)
		return
	}

	result, err := h.Services.Auth().Login(r.Context(), data.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// RequireAdmin lets requests through untouched while the admin gate is off.
func (h *Handlers) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := h.Services.Auth()
		if !auth.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeMessage(w, r, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		if err := auth.Verify(strings.TrimSpace(token)); err != nil {
			slog.WarnContext(r.Context(), "admin token rejected", "err", err.Error(), "path", r.URL.Path)
			h.writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}
