// pattern: Imperative Shell

package web

import (
	"bytes"
	"encoding/json"
	"net/http"

	"tsgraph/internal/graph"
	"tsgraph/internal/instance"
)

// ProjectSummary is the JSON representation of one inferred project.
type ProjectSummary struct {
	Root     string          `json:"root"`
	Targets  []TargetSummary `json:"targets"`
	Commands int             `json:"commands"`
}

// TargetSummary is the JSON representation of one target in a summary.
type TargetSummary struct {
	Name     string   `json:"name"`
	Commands []string `json:"commands"`
	Sync     bool     `json:"sync"`
}

// summarize condenses a project node for list views.
func summarize(node graph.ProjectNode) ProjectSummary {
	sum := ProjectSummary{Root: node.Root, Targets: []TargetSummary{}}
	for _, name := range node.TargetNames() {
		target := node.Targets[name]
		sum.Targets = append(sum.Targets, TargetSummary{
			Name:     name,
			Commands: target.Options.Commands,
			Sync:     target.HasSyncGenerators(),
		})
		sum.Commands += len(target.Options.Commands)
	}
	return sum
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := instance.HealthStatus{
		Status:    "ok",
		Workspace: s.source.Root(),
		LastError: s.currentError(),
	}
	if snap, ok := s.source.Last(); ok {
		status.Projects = len(snap.Result.Projects)
		status.ConfigFiles = len(snap.ConfigFiles)
		status.GeneratedAt = snap.GeneratedAt
	}
	writeJSON(w, http.StatusOK, status)
}

// handleGraph handles GET /api/graph. The optional format query parameter
// selects json (default) or yaml.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.source.Last()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "graph not ready")
		return
	}

	format := graph.FormatJSON
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := graph.ParseFormat(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = f
	}

	var buf bytes.Buffer
	if err := graph.Encode(&buf, snap.Result, format); err != nil {
		s.logger.Error("encode graph", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to encode graph")
		return
	}

	contentType := "application/json"
	if format == graph.FormatYAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleListProjects handles GET /api/projects.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.source.Last()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "graph not ready")
		return
	}

	projects := make([]ProjectSummary, 0, len(snap.Result.Projects))
	for _, root := range snap.Result.Roots() {
		projects = append(projects, summarize(snap.Result.Projects[root]))
	}
	writeJSON(w, http.StatusOK, projects)
}

// handleGetProject handles GET /api/projects/{root...}. The workspace root
// project is addressed as ".".
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.source.Last()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "graph not ready")
		return
	}

	node, ok := snap.Result.Project(r.PathValue("root"))
	if !ok {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// handleRefresh handles POST /api/refresh.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresh == nil {
		writeError(w, http.StatusNotImplemented, "refresh not available")
		return
	}
	if err := s.refresh(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.handleHealth(w, r)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
