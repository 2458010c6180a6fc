package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/spa-builder/internal/db"
	"github.com/jonathan/spa-builder/internal/pipeline"
	"github.com/jonathan/spa-builder/internal/project"
	"github.com/jonathan/spa-builder/internal/schemas"
)

// loginRequest is the POST /api/login body.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin checks the admin credential and issues a bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		s.errorResponse(w, http.StatusBadRequest, "username and password are required")
		return
	}

	if !s.auth.VerifyPassword(req.Username, req.Password) {
		err := &ErrInvalidCredentials{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	token, expiresAt, err := s.jwtService.GenerateToken(req.Username)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": expiresAt,
	})
}

// handleBuild runs a full build and streams progress, generated tokens and
// the final result as Server-Sent Events.
func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	spec, err := schemas.ParseBuildSpec(string(body))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.runMu.TryLock() {
		busy := &ErrBusy{}
		s.errorResponse(w, HTTPStatus(busy), busy.Error())
		return
	}
	defer s.runMu.Unlock()

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := pipeline.RunBuild(r.Context(), spec, s.pipelineOptions(sse))
	if err != nil {
		sse.WriteError(err.Error())
		return
	}
	sse.WriteComplete(result)
}

// updateRequest is the POST /api/projects/{name}/update body.
type updateRequest struct {
	Request string `json:"request"`
}

// handleUpdate applies a natural-language change to an existing project,
// streaming progress the same way a build does.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Request == "" {
		verr := &ErrValidation{Field: "request", Message: "must not be empty"}
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return
	}

	if !s.runMu.TryLock() {
		busy := &ErrBusy{}
		s.errorResponse(w, HTTPStatus(busy), busy.Error())
		return
	}
	defer s.runMu.Unlock()

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := pipeline.RunUpdate(r.Context(), name, req.Request, s.pipelineOptions(sse))
	if err != nil {
		sse.WriteError(err.Error())
		return
	}
	sse.WriteComplete(result)
}

// pipelineOptions wires the server's shared dependencies and the SSE stream
// into a pipeline run.
func (s *Server) pipelineOptions(sse *SSEWriter) pipeline.Options {
	return pipeline.Options{
		Cfg:        s.cfg,
		Client:     s.client,
		Database:   s.db,
		Server:     s.supervisor,
		OnProgress: sse.WriteProgress,
		OnToken:    sse.WriteToken,
	}
}

// handleListProjects returns every project in the workspace, newest first.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	infos, err := project.ListProjects(s.cfg.WorkspaceDir)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if infos == nil {
		infos = []project.Info{}
	}
	s.jsonResponse(w, http.StatusOK, infos)
}

// handleProjectFiles returns the file listing for one project.
func (s *Server) handleProjectFiles(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	proj, err := project.Open(s.cfg.WorkspaceDir, name)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"project": proj.Name,
		"files":   proj.Files(),
	})
}

// handleListRuns returns run history, filterable by project and status.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusNotImplemented, "run persistence is not configured")
		return
	}

	filters := db.RunFilters{
		ProjectName: r.URL.Query().Get("project"),
		Status:      r.URL.Query().Get("status"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			s.errorResponse(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		filters.Limit = limit
	}

	runs, err := s.db.ListRuns(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	s.jsonResponse(w, http.StatusOK, runs)
}

// handleGetRun returns one run by ID.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusNotImplemented, "run persistence is not configured")
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid run ID")
		return
	}

	run, err := s.db.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "run not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}

// handleRunArtifacts lists the artifacts recorded for a run.
func (s *Server) handleRunArtifacts(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusNotImplemented, "run persistence is not configured")
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid run ID")
		return
	}

	artifacts, err := s.db.ListArtifacts(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if artifacts == nil {
		artifacts = []db.ArtifactSummary{}
	}
	s.jsonResponse(w, http.StatusOK, artifacts)
}

// handleDeleteRun removes a run and its artifacts.
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusNotImplemented, "run persistence is not configured")
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid run ID")
		return
	}

	if err := s.db.DeleteRun(r.Context(), runID); err != nil {
		s.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
