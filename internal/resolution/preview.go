package resolution

import (
	"context"
	"fmt"

	"alphapicks/internal/ledger"
)

// PreviewRequest carries explicit pick parameters; nothing is read from the
// ledger and no lock is taken.
type PreviewRequest struct {
	AssetID        string
	EntryTimestamp int64
	Duration       int64
	EntryPrice     float64
	PredictedPct   float64
	Category       string
}

type PreviewResult struct {
	ResolutionPrice float64 `json:"resolution_price"`
	ActualPct       float64 `json:"actual_pct"`
	Points          uint64  `json:"points"`
	Label           string  `json:"label"`
}

// Preview projects the score a pick would earn if resolved against the
// current oracle view. Prices come from the short-lived preview cache, kept
// separate from the long-lived resolution cache.
func (e *Engine) Preview(ctx context.Context, req PreviewRequest) (*PreviewResult, error) {
	category, err := ledger.ParseCategory(req.Category)
	if err != nil {
		return nil, newError(CodeInvalidAgent, err.Error())
	}
	if req.AssetID == "" {
		return nil, newError(CodeEmptySlot, "asset id is required")
	}
	if req.EntryTimestamp <= 0 {
		return nil, newError(CodeNoTimestamp, "entry timestamp is required")
	}
	if req.Duration <= 0 {
		return nil, newError(CodeNoDuration, "duration is required")
	}
	if req.EntryPrice <= 0 {
		return nil, newError(CodeEmptySlot, "entry price is required")
	}

	target := req.EntryTimestamp + req.Duration
	price, ok := e.Prices.GetPreviewPrice(ctx, req.AssetID, target)
	if !ok {
		return nil, newRetryable(CodePriceFetchFailed, fmt.Sprintf("no price for %s at %d", req.AssetID, target))
	}

	actualPct := ActualChangePct(req.EntryPrice, price)
	points, label := Score(category, req.PredictedPct, actualPct)
	return &PreviewResult{
		ResolutionPrice: price,
		ActualPct:       actualPct,
		Points:          points,
		Label:           label,
	}, nil
}
