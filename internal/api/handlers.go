package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"floorsense/internal/assess"
	"floorsense/internal/history"
	"floorsense/internal/layout"
)

// AssessRequest is the body of POST /v1/assessments and POST /v1/links.
type AssessRequest struct {
	Layout layout.Layout              `json:"layout"`
	Links  []layout.CollaborationLink `json:"links,omitempty"`
}

// AssessResponse is the body returned by POST /v1/assessments.
type AssessResponse struct {
	RunID  string        `json:"run_id,omitempty"`
	Report assess.Report `json:"report"`
}

// LinksResponse is the body returned by POST /v1/links.
type LinksResponse struct {
	Links   []layout.CollaborationLink `json:"links"`
	Skipped []assess.SkippedLink       `json:"skipped,omitempty"`
}

// Problem is one field-level validation failure.
type Problem struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error    string    `json:"error"`
	Problems []Problem `json:"problems,omitempty"`
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) createAssessment(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	report, err := s.engine.Assess(r.Context(), req.Layout, req.Links)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := AssessResponse{Report: report}
	if s.history != nil {
		hash, err := layoutHash(req)
		if err != nil {
			writeError(w, err)
			return
		}
		run, err := s.history.Record(report, hash, "api")
		if err != nil {
			s.logger.ErrorContext(r.Context(), "api: record run", "layout", report.Layout, "err", err)
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "could not record assessment"})
			return
		}
		resp.RunID = run.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getAssessment(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "assessment history is disabled"})
		return
	}
	id := mux.Vars(r)["id"]
	run, err := s.history.Get(id)
	if err != nil {
		if errors.Is(err, history.ErrRunNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	report, err := run.Report()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, AssessResponse{RunID: run.ID, Report: report})
}

func (s *Server) listLinks(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	links, skipped, err := s.engine.Links(r.Context(), req.Layout, req.Links)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LinksResponse{Links: links, Skipped: skipped})
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (AssessRequest, bool) {
	var req AssessRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("decode request: %v", err)})
		return AssessRequest{}, false
	}
	if req.Layout.Name == "" {
		req.Layout.Name = "layout"
	}
	return req, true
}

// writeError maps engine errors onto status codes: invalid layouts and
// unusable links are 422, anything else is 500.
func writeError(w http.ResponseWriter, err error) {
	var verrs layout.ValidationErrors
	if errors.As(err, &verrs) {
		resp := ErrorResponse{Error: "invalid layout"}
		for _, v := range verrs {
			resp.Problems = append(resp.Problems, Problem{Field: v.Field, Message: v.Message})
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	var lerr *assess.LinkError
	if errors.As(err, &lerr) {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:    "invalid link",
			Problems: []Problem{{Field: "links." + lerr.LinkID, Message: lerr.Error()}},
		})
		return
	}
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

func layoutHash(req AssessRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("hash layout: %w", err)
	}
	return layout.Hash(data), nil
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encode response"}`, http.StatusInternalServerError)
	}
}
