package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"alphapicks/internal/repository"
)

type RecordsHandler struct {
	Repo repository.Repository
}

func (h *RecordsHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1")
	group.GET("/records", h.list)
	group.GET("/sweeps", h.sweeps)
}

// @Summary List resolution audit records
// @Tags records
// @Produce json
// @Param wallet query string false "filter by wallet"
// @Param category query string false "filter by category (top|worst)"
// @Param asset query string false "filter by asset"
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} map[string]any
// @Router /api/v1/records [get]
func (h *RecordsHandler) list(c *gin.Context) {
	params := repository.ListResolutionRecordsParams{
		Limit:  parseInt(c.Query("limit"), 100),
		Offset: parseInt(c.Query("offset"), 0),
	}
	if wallet := strings.TrimSpace(c.Query("wallet")); wallet != "" {
		params.Wallet = &wallet
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		params.Category = &category
	}
	if asset := strings.TrimSpace(c.Query("asset")); asset != "" {
		params.Asset = &asset
	}

	items, err := h.Repo.ListResolutionRecords(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountResolutionRecords(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"total": total})
}

// @Summary List recent sweep runs
// @Tags records
// @Produce json
// @Param limit query int false "page size"
// @Success 200 {object} map[string]any
// @Router /api/v1/sweeps [get]
func (h *RecordsHandler) sweeps(c *gin.Context) {
	items, err := h.Repo.ListSweepRuns(c.Request.Context(), parseInt(c.Query("limit"), 50))
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return val
}
