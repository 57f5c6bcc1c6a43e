// ABOUTME: HTTP handler exposing any Backend over the record-service wire contract
// ABOUTME: Lets a self-hosted SQLite or Charm store stand in for the hosted service
package records

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// HandlerOptions restricts access to callers presenting matching credentials.
// Empty values disable the check.
type HandlerOptions struct {
	ProjectID string
	PublicKey string
}

type handler struct {
	backend Backend
	opts    HandlerOptions
}

// NewHandler serves the routes that Client calls.
func NewHandler(backend Backend, opts HandlerOptions) http.Handler {
	h := &handler{backend: backend, opts: opts}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/tables/{table}/fetch", h.fetch)
	mux.HandleFunc("GET /v1/tables/{table}/records/{id}", h.get)
	mux.HandleFunc("POST /v1/tables/{table}/records", h.create)
	mux.HandleFunc("PATCH /v1/tables/{table}/records", h.update)
	mux.HandleFunc("DELETE /v1/tables/{table}/records", h.remove)

	return h.authorize(mux)
}

func (h *handler) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.opts.ProjectID != "" && r.Header.Get(HeaderProjectID) != h.opts.ProjectID {
			writeJSON(w, http.StatusUnauthorized, GetResponse{Success: false, Message: "unknown project"})
			return
		}
		if h.opts.PublicKey != "" && r.Header.Get(HeaderPublicKey) != h.opts.PublicKey {
			writeJSON(w, http.StatusUnauthorized, GetResponse{Success: false, Message: "invalid public key"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handler) fetch(w http.ResponseWriter, r *http.Request) {
	var params FetchParams
	if !decode(w, r, &params) {
		return
	}
	resp, err := h.backend.FetchRecords(r.Context(), r.PathValue("table"), params)
	respond(w, resp, err)
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, GetResponse{Success: false, Message: "invalid record id"})
		return
	}
	var fields []string
	if f := r.URL.Query().Get("fields"); f != "" {
		fields = strings.Split(f, ",")
	}
	resp, err := h.backend.GetRecordByID(r.Context(), r.PathValue("table"), id, fields)
	respond(w, resp, err)
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.backend.CreateRecord(r.Context(), r.PathValue("table"), req.Records)
	respond(w, resp, err)
}

func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.backend.UpdateRecord(r.Context(), r.PathValue("table"), req.Records)
	respond(w, resp, err)
}

func (h *handler) remove(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.backend.DeleteRecord(r.Context(), r.PathValue("table"), req.RecordIds)
	respond(w, resp, err)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, GetResponse{Success: false, Message: "invalid request body"})
		return false
	}
	return true
}

func respond(w http.ResponseWriter, resp any, err error) {
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, GetResponse{Success: false, Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
