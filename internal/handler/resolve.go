package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"alphapicks/internal/ledger"
	"alphapicks/internal/resolution"
)

type ResolveHandler struct {
	Engine *resolution.Engine
	Logger *zap.Logger
}

func (h *ResolveHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1")
	group.POST("/resolve", h.resolveSingle)
	group.POST("/resolve/batch", h.resolveBatch)
	group.POST("/preview", h.preview)
}

type resolveSingleRequest struct {
	Wallet   string `json:"wallet"`
	Category string `json:"category"` // top|worst
	SlotRank int    `json:"slot_rank"`
}

// @Summary Resolve one prediction slot
// @Tags resolve
// @Accept json
// @Produce json
// @Param request body resolveSingleRequest true "slot address"
// @Success 200 {object} resolution.SingleResult
// @Router /api/v1/resolve [post]
func (h *ResolveHandler) resolveSingle(c *gin.Context) {
	var req resolveSingleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	category, err := ledger.ParseCategory(strings.TrimSpace(req.Category))
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), map[string]any{"code": resolution.CodeInvalidAgent})
		return
	}
	result, err := h.Engine.ResolveSingle(c.Request.Context(), strings.TrimSpace(req.Wallet), category, req.SlotRank)
	if err != nil {
		h.renderError(c, err)
		return
	}
	Ok(c, result, nil)
}

type resolveBatchRequest struct {
	Wallet string `json:"wallet"`
}

// @Summary Resolve every eligible slot of a wallet in one transaction
// @Tags resolve
// @Accept json
// @Produce json
// @Param request body resolveBatchRequest true "wallet"
// @Success 200 {object} resolution.BatchResult
// @Router /api/v1/resolve/batch [post]
func (h *ResolveHandler) resolveBatch(c *gin.Context) {
	var req resolveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	result, err := h.Engine.ResolveBatch(c.Request.Context(), strings.TrimSpace(req.Wallet))
	if err != nil {
		h.renderError(c, err)
		return
	}
	Ok(c, result, nil)
}

type previewRequest struct {
	AssetID        string  `json:"asset_id"`
	EntryTimestamp int64   `json:"entry_timestamp"`
	Duration       int64   `json:"duration"`
	EntryPrice     float64 `json:"entry_price"`
	PredictedPct   float64 `json:"predicted_pct"`
	Category       string  `json:"category"`
}

// @Summary Project the score a pick would earn right now
// @Tags resolve
// @Accept json
// @Produce json
// @Param request body previewRequest true "pick parameters"
// @Success 200 {object} resolution.PreviewResult
// @Router /api/v1/preview [post]
func (h *ResolveHandler) preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	result, err := h.Engine.Preview(c.Request.Context(), resolution.PreviewRequest{
		AssetID:        strings.TrimSpace(req.AssetID),
		EntryTimestamp: req.EntryTimestamp,
		Duration:       req.Duration,
		EntryPrice:     req.EntryPrice,
		PredictedPct:   req.PredictedPct,
		Category:       strings.TrimSpace(req.Category),
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	Ok(c, result, nil)
}

func (h *ResolveHandler) renderError(c *gin.Context, err error) {
	coded, ok := resolution.AsError(err)
	if !ok {
		if h.Logger != nil {
			h.Logger.Error("resolution failed", zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, "internal error", nil)
		return
	}
	meta := map[string]any{"code": coded.Code, "retryable": coded.Retryable}
	Error(c, statusForCode(coded.Code), coded.Message, meta)
}

func statusForCode(code resolution.Code) int {
	switch code {
	case resolution.CodeLockHeld:
		return http.StatusConflict
	case resolution.CodeAccountNotFound:
		return http.StatusNotFound
	case resolution.CodePriceFetchFailed, resolution.CodeTransactionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
