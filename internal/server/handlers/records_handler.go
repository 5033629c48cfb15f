package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/cropledger/internal/domain/models"
	"github.com/mamadbah2/cropledger/internal/service/records"
)

// RecordCapturer stores submitted records.
type RecordCapturer interface {
	CaptureProduction(ctx context.Context, in records.ProductionInput) (models.ProductionRecord, error)
	CaptureCost(ctx context.Context, record models.InputCostRecord) (models.InputCostRecord, error)
}

// RecordsHandler handles record capture requests.
type RecordsHandler struct {
	svc    RecordCapturer
	logger *zap.Logger
}

// NewRecordsHandler constructs the HTTP handler adapter.
func NewRecordsHandler(svc RecordCapturer, logger *zap.Logger) *RecordsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordsHandler{svc: svc, logger: logger}
}

// CreateProduction stores a production record.
func (h *RecordsHandler) CreateProduction(c *gin.Context) {
	var in records.ProductionInput
	if !bindJSON(c, h.logger, &in) {
		return
	}

	record, err := h.svc.CaptureProduction(c.Request.Context(), in)
	if err != nil {
		h.captureFailed(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// CreateCost stores an input-cost record.
func (h *RecordsHandler) CreateCost(c *gin.Context) {
	var in models.InputCostRecord
	if !bindJSON(c, h.logger, &in) {
		return
	}

	record, err := h.svc.CaptureCost(c.Request.Context(), in)
	if err != nil {
		h.captureFailed(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *RecordsHandler) captureFailed(c *gin.Context, err error) {
	if errors.Is(err, records.ErrInvalidRecord) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error("failed storing record", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store record"})
}
