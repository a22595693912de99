package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tonari-app/tonari/internal/gallery"
	"github.com/tonari-app/tonari/internal/route"
	"github.com/tonari-app/tonari/internal/session"
)

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

type errorBody struct {
	Error  string   `json:"error"`
	Alerts []string `json:"alerts,omitempty"`
}

// statusFor maps an operation error to its HTTP status and user facing text.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrEmptyName),
		errors.Is(err, session.ErrUnknownPosition),
		errors.Is(err, session.ErrEmptyComment),
		errors.Is(err, gallery.ErrUnsupportedImage),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, session.ErrNoFacility):
		return http.StatusNotFound, route.MsgMissingFacility
	case errors.Is(err, route.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, route.ErrUnimplemented):
		return http.StatusNotImplemented, route.MsgUnimplemented
	}
	return http.StatusBadGateway, err.Error()
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusFor(err)
	body := errorBody{Error: msg}
	if s := sessionFrom(r.Context()); s != nil {
		body.Alerts = s.TakeAlerts()
	}
	if code >= http.StatusInternalServerError {
		a.logger.WarnContext(r.Context(), "request failed", "path", r.URL.Path, "status", code, "err", err)
	}
	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return badRequest("decode body: %v", err)
	}
	return nil
}
