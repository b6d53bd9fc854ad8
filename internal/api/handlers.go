// Package api exposes the canonical health operations over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"example.com/healthbridge/internal/auth"
	"example.com/healthbridge/internal/domain"
	"example.com/healthbridge/internal/engine"
)

// defaultLimit applies when a query omits the limit field entirely. An
// explicit limit <= 0 means unlimited.
const defaultLimit = 100

// Handler coordinates HTTP requests with the engine.
type Handler struct {
	engine *engine.Engine
}

// NewHandler builds a Handler.
func NewHandler(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/availability", h.availability)
	mux.HandleFunc("POST /v1/authorization/request", h.requestAuthorization)
	mux.HandleFunc("POST /v1/authorization/check", h.checkAuthorization)
	mux.HandleFunc("POST /v1/samples/query", h.readSamples)
	mux.HandleFunc("POST /v1/samples", h.saveSample)
	mux.HandleFunc("POST /v1/workouts/query", h.queryWorkouts)
	mux.HandleFunc("POST /v1/sleep/query", h.querySleep)
	mux.HandleFunc("POST /v1/hydration/query", h.queryHydration)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) availability(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, auth.ScopeHealthRead) {
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Availability(r.Context()))
}

// AuthorizationRequest is the payload for both authorization endpoints.
type AuthorizationRequest struct {
	Read  []string `json:"read"`
	Write []string `json:"write"`
}

func (h *Handler) requestAuthorization(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, auth.ScopeHealthWrite) {
		return
	}
	var req AuthorizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	status, err := h.engine.RequestAuthorization(r.Context(), req.Read, req.Write)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) checkAuthorization(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, auth.ScopeHealthRead) {
		return
	}
	var req AuthorizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	status, err := h.engine.CheckAuthorization(r.Context(), req.Read, req.Write)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// QueryRequest carries the window/limit/ordering fields shared by all query
// endpoints. Dates are ISO-8601 strings.
type QueryRequest struct {
	DataType    string `json:"dataType,omitempty"`
	WorkoutType string `json:"workoutType,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Limit       *int   `json:"limit,omitempty"`
	Ascending   *bool  `json:"ascending,omitempty"`
}

// Options resolves the shared query defaults.
func (r QueryRequest) Options() (engine.QueryOptions, error) {
	opts := engine.QueryOptions{Limit: defaultLimit}
	if r.Limit != nil {
		opts.Limit = *r.Limit
	}
	if r.Ascending != nil {
		opts.Ascending = *r.Ascending
	}
	var err error
	if opts.StartDate, err = parseDate(r.StartDate); err != nil {
		return engine.QueryOptions{}, domain.Validationf("invalid startDate %q", r.StartDate)
	}
	if opts.EndDate, err = parseDate(r.EndDate); err != nil {
		return engine.QueryOptions{}, domain.Validationf("invalid endDate %q", r.EndDate)
	}
	return opts, nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}

func (h *Handler) readSamples(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, auth.ScopeHealthRead) {
		return
	}
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	opts, err := req.Options()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	samples, err := h.engine.ReadSamples(r.Context(), req.DataType, opts)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"samples": samples})
}

// SaveSampleRequest is the payload for POST /v1/samples.
type SaveSampleRequest struct {
	DataType  string            `json:"dataType"`
	Value     *float64          `json:"value"`
	Unit      string            `json:"unit,omitempty"`
	StartDate string            `json:"startDate,omitempty"`
	EndDate   string            `json:"endDate,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (h *Handler) saveSample(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, auth.ScopeHealthWrite) {
		return
	}
	var req SaveSampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	input := engine.SaveSampleInput{
		DataType: req.DataType,
		Value:    req.Value,
		Unit:     req.Unit,
		Metadata: req.Metadata,
	}
	var err error
	if input.StartDate, err = parseDate(req.StartDate); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid startDate")
		return
	}
	if input.EndDate, err = parseDate(req.EndDate); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid endDate")
		return
	}

	if err := h.engine.SaveSample(r.Context(), input); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) queryWorkouts(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, auth.ScopeHealthRead) {
		return
	}
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	opts, err := req.Options()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	workouts, err := h.engine.QueryWorkouts(r.Context(), req.WorkoutType, opts)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"workouts": workouts})
}

func (h *Handler) querySleep(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, auth.ScopeHealthRead) {
		return
	}
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	opts, err := req.Options()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	sessions, err := h.engine.QuerySleep(r.Context(), opts)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sleepSessions": sessions})
}

func (h *Handler) queryHydration(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, auth.ScopeHealthRead) {
		return
	}
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	opts, err := req.Options()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	records, err := h.engine.QueryHydration(r.Context(), opts)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"hydrationRecords": records})
}

// requireScope enforces bearer claims carrying the scope. health:write
// implies health:read.
func requireScope(w http.ResponseWriter, r *http.Request, scope string) bool {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return false
	}
	if claims.HasScope(scope) {
		return true
	}
	if scope == auth.ScopeHealthRead && claims.HasScope(auth.ScopeHealthWrite) {
		return true
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+scope+" required")
	return false
}

// writeEngineError maps the engine error taxonomy onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	var permission *domain.PermissionError
	if errors.As(err, &permission) {
		writeError(w, http.StatusForbidden, "permission_denied", err.Error())
		return
	}
	var platform *domain.PlatformError
	if errors.As(err, &platform) {
		writeError(w, http.StatusBadGateway, "store_error", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "server_error", err.Error())
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
