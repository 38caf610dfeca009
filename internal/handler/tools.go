package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/toolshare/internal/security/audit"
	"github.com/yourorg/toolshare/internal/service"
)

// CreateToolRequest carries the fields for listing a tool
type CreateToolRequest struct {
	OwnerID     string `json:"ownerId"`
	ToolName    string `json:"toolName"`
	Description string `json:"description"`
	Condition   string `json:"condition"`
}

// ToolsHandler serves the tool listing endpoints
type ToolsHandler struct {
	lending *service.LendingService
	audit   *audit.Logger
	logger  *slog.Logger
}

// NewToolsHandler creates a new tools handler
func NewToolsHandler(lending *service.LendingService, auditLog *audit.Logger, logger *slog.Logger) *ToolsHandler {
	return &ToolsHandler{lending: lending, audit: auditLog, logger: logger}
}

// Create handles POST /api/tools
func (h *ToolsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, h.logger, "invalid request body")
		return
	}

	tool, err := h.lending.CreateTool(r.Context(), req.OwnerID, req.ToolName, req.Description, req.Condition)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, h.logger, http.StatusCreated, tool)
}

// Get handles GET /api/tools/{id}
func (h *ToolsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tool, err := h.lending.GetTool(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, h.logger, http.StatusOK, tool)
}

// List handles GET /api/tools
func (h *ToolsHandler) List(w http.ResponseWriter, r *http.Request) {
	tools, err := h.lending.ListTools(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, h.logger, http.StatusOK, tools)
}

// Available handles GET /api/tools/available
func (h *ToolsHandler) Available(w http.ResponseWriter, r *http.Request) {
	tools, err := h.lending.ViewAvailableTools(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, h.logger, http.StatusOK, tools)
}

// Update handles PUT /api/tools/{id}. The payload is decoded into the
// partial-update shape, so toolId and ownerId in the input are ignored.
func (h *ToolsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var update service.ToolUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondBadRequest(w, h.logger, "invalid request body")
		return
	}

	tool, err := h.lending.UpdateTool(r.Context(), r.PathValue("id"), update)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, h.logger, http.StatusOK, tool)
}

// Delete handles DELETE /api/tools/{id}
func (h *ToolsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	toolID := r.PathValue("id")
	if err := h.lending.DeleteTool(r.Context(), toolID); err != nil {
		h.audit.LogDeletion(r.Context(), "tool", toolID, "failed", err.Error())
		respondError(w, h.logger, err)
		return
	}
	h.audit.LogDeletion(r.Context(), "tool", toolID, "success", "")
	respondData(w, h.logger, http.StatusOK, map[string]string{"toolId": toolID})
}
