package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/exoticmods/exoticbill/internal/errs"
	"github.com/exoticmods/exoticbill/internal/httpx"
)

// actor extracts the acting identity for audit attribution. Authentication is
// an external collaborator; all this layer needs is a string.
func actor(r *http.Request) string {
	if a := r.Header.Get("X-Actor"); a != "" {
		return a
	}
	return "system"
}

// writeErr maps the error taxonomy onto HTTP responses. Store failures keep a
// generic body; their detail goes to the caller's logs, not the wire.
func writeErr(w http.ResponseWriter, err error) {
	status := errs.HTTPStatus(err)
	msg := err.Error()
	if errors.Is(err, errs.ErrStore) || status == http.StatusInternalServerError {
		msg = "internal error"
	}
	httpx.JSONError(w, status, msg, nil)
}

// timeWindow parses optional from/to query params (RFC 3339), defaulting to
// the trailing 30 days.
func timeWindow(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return from, to, errs.Validationf("invalid from timestamp %q", v)
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return from, to, errs.Validationf("invalid to timestamp %q", v)
		}
		to = t
	}
	return from, to, nil
}
