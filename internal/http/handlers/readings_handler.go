package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"meterhub/internal/models"
	"meterhub/internal/repository"
	"meterhub/internal/service"
)

type readingIngester interface {
	Ingest(ctx context.Context, input service.IngestInput) (*service.IngestResult, error)
}

// ReadingsHandler accepts submitted sensor readings.
type ReadingsHandler struct {
	svc    readingIngester
	logger *zap.Logger
}

// NewReadingsHandler builds handler.
func NewReadingsHandler(svc readingIngester, logger *zap.Logger) *ReadingsHandler {
	return &ReadingsHandler{svc: svc, logger: logger}
}

type readingDetailRequest struct {
	ReadingTypeID int64           `json:"reading_type_id"`
	Value         decimal.Decimal `json:"value"`
}

type ingestRequest struct {
	MeterCode         string                 `json:"meter_code"`
	UserID            int64                  `json:"user_id"`
	TakenAt           time.Time              `json:"taken_at"`
	CorrectsSessionID *int64                 `json:"corrects_session_id,omitempty"`
	Details           []readingDetailRequest `json:"details"`
}

// HandleIngest handles POST /readings.
func (h *ReadingsHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.MeterCode == "" {
		writeError(w, http.StatusBadRequest, "meter_code is required")
		return
	}
	if len(req.Details) == 0 {
		writeError(w, http.StatusBadRequest, "details are required")
		return
	}

	input := service.IngestInput{
		MeterCode:         req.MeterCode,
		UserID:            req.UserID,
		TakenAt:           req.TakenAt,
		CorrectsSessionID: req.CorrectsSessionID,
	}
	for _, d := range req.Details {
		input.Details = append(input.Details, models.ReadingDetailInput{
			ReadingTypeID: d.ReadingTypeID,
			Value:         d.Value,
		})
	}

	result, err := h.svc.Ingest(r.Context(), input)
	if err != nil {
		if repository.IsSerializationFailure(err) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusConflict, "a concurrent reading for this meter was committed first, retry")
			return
		}
		if writeTaxonomyError(w, err) {
			return
		}
		h.logger.Error("ingest failed", zap.String("meter", req.MeterCode), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to ingest reading")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
