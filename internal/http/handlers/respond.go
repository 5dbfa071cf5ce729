package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/internal/session"
)

const maxBodyBytes = 1 << 20

// envelope is the console response shape shared with the system of record.
type envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: true, Message: message})
}

func jsonError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, envelope{Message: message})
}

// statusFor maps a backend or validation failure onto the console status
// code and the message shown to the user.
func statusFor(err error) (int, string) {
	if fe, ok := records.AsFieldErrors(err); ok && len(fe) > 0 {
		return http.StatusBadRequest, "Datos inválidos"
	}

	var upstream *records.UpstreamError
	if errors.As(err, &upstream) {
		status := upstream.Status
		switch {
		case status >= 500:
			status = http.StatusBadGateway
		case status < 400:
			status = http.StatusBadGateway
		}
		return status, upstream.Message
	}

	switch {
	case errors.Is(err, records.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Credenciales inválidas"
	case errors.Is(err, records.ErrUnauthorized), errors.Is(err, session.ErrSessionNotFound):
		return http.StatusUnauthorized, "Sesión inválida o expirada"
	case errors.Is(err, records.ErrNotFound):
		return http.StatusNotFound, "Recurso no encontrado"
	case errors.Is(err, records.ErrNotSupported):
		return http.StatusNotImplemented, "Operación no soportada"
	}
	return http.StatusBadGateway, err.Error()
}

// decodeBody reads a JSON body into dst and returns the raw bytes so callers
// can record which fields were sent.
func decodeBody(r *http.Request, dst any) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(raw) > maxBodyBytes {
		return nil, fmt.Errorf("body too large")
	}
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return raw, nil
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}
