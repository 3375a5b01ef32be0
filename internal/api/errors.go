package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"careeragent/internal/outreach"
	"careeragent/internal/pipeline"
	"careeragent/internal/profile"
	"careeragent/internal/scoring"
	"careeragent/internal/store"
	"careeragent/internal/tracker"
)

const noProfileMsg = "No resume profile found. Please upload a resume first."

// httpStatus maps a service error to its response code.
func httpStatus(err error) int {
	var tv *tracker.ValidationError
	var pv *profile.ValidationError
	switch {
	case errors.As(err, &tv), errors.As(err, &pv):
		return http.StatusBadRequest
	case errors.Is(err, tracker.ErrNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, scoring.ErrNoProfile),
		errors.Is(err, outreach.ErrNoEligibleJob):
		return http.StatusNotFound
	case errors.Is(err, tracker.ErrConflict), errors.Is(err, pipeline.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, outreach.ErrSenderUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage is the client-facing text for err. Internal errors are
// not echoed.
func errorMessage(err error, code int) string {
	switch {
	case code == http.StatusInternalServerError:
		return "internal server error"
	case errors.Is(err, scoring.ErrNoProfile):
		return noProfileMsg
	case errors.Is(err, tracker.ErrNotFound):
		return "Job not found."
	}
	return err.Error()
}

func jsonOK(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
