package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"meterhub/internal/service"
)

// TemplatesHandler exposes formula definition authoring operations.
type TemplatesHandler struct {
	svc    *service.TemplateService
	logger *zap.Logger
}

// NewTemplatesHandler builds handler.
func NewTemplatesHandler(svc *service.TemplateService, logger *zap.Logger) *TemplatesHandler {
	return &TemplatesHandler{svc: svc, logger: logger}
}

type setMainRequest struct {
	DefinitionID int64 `json:"definition_id"`
}

// HandleSetMain handles POST /internal/templates/definitions/main.
func (h *TemplatesHandler) HandleSetMain(w http.ResponseWriter, r *http.Request) {
	var req setMainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.DefinitionID == 0 {
		writeError(w, http.StatusBadRequest, "definition_id is required")
		return
	}

	if err := h.svc.SetMainDefinition(r.Context(), req.DefinitionID); err != nil {
		if writeTaxonomyError(w, err) {
			return
		}
		h.logger.Error("set main definition failed", zap.Int64("definition_id", req.DefinitionID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to set main definition")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
