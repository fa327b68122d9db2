package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang/glog"

	"intellitest/internal/domain"
)

type errorPayload struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type meta struct {
	RequestID string `json:"requestId,omitempty"`
}

type envelope struct {
	OK    bool          `json:"ok"`
	Data  any           `json:"data,omitempty"`
	Error *errorPayload `json:"error,omitempty"`
	Meta  meta          `json:"meta"`
}

func writeOK(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeEnvelope(w, status, envelope{OK: true, Data: data, Meta: meta{RequestID: middleware.GetReqID(r.Context())}})
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	payload := &errorPayload{Message: err.Error()}

	var (
		verr    *domain.ValidationError
		illegal *domain.IllegalTransitionError
		ierr    *domain.DataIntegrityError
	)
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		payload.Message = "invalid profile"
		payload.Fields = verr.Fields
	case errors.As(err, &illegal):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrBankNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrPositionOutOfRange), errors.Is(err, domain.ErrInvalidOption):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNoBanks):
		status = http.StatusServiceUnavailable
	case errors.As(err, &ierr):
		payload.Message = "question bank failed its integrity check"
	}
	if status >= http.StatusInternalServerError {
		glog.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		if ierr == nil {
			payload.Message = http.StatusText(status)
		}
	}
	payload.Code = codeFromStatus(status)
	writeEnvelope(w, status, envelope{Error: payload, Meta: meta{RequestID: middleware.GetReqID(r.Context())}})
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	writeEnvelope(w, http.StatusBadRequest, envelope{
		Error: &errorPayload{Code: codeFromStatus(http.StatusBadRequest), Message: msg},
		Meta:  meta{RequestID: middleware.GetReqID(r.Context())},
	})
}

func writeEnvelope(w http.ResponseWriter, status int, res envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}

func codeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "illegal_transition"
	case http.StatusUnprocessableEntity:
		return "unprocessable_entity"
	case http.StatusServiceUnavailable:
		return "unavailable"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return "error"
	}
}
