package resolution

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"alphapicks/internal/ledger"
	"alphapicks/internal/lock"
	"alphapicks/internal/models"
	"alphapicks/internal/oracle"
	"alphapicks/internal/repository"
)

// priceDecimals is the implied decimal count of on-chain fixed-point prices.
const priceDecimals = 9

const priceScale = 1e9

// MaxBatchSlots caps one batch submission at the whole account.
const MaxBatchSlots = 2 * ledger.SlotsPerCategory

// PriceSource is the oracle surface the engine needs.
type PriceSource interface {
	GetPrice(ctx context.Context, assetID string, target int64) (float64, bool)
	GetPrices(ctx context.Context, queries []oracle.PriceQuery) map[oracle.PriceQuery]oracle.PriceResult
	GetPreviewPrice(ctx context.Context, assetID string, target int64) (float64, bool)
}

type Config struct {
	SingleLockTTL    time.Duration
	BatchLockTTL     time.Duration
	ResolverIdentity string
}

// Engine drives the resolve workflow: lock, load, select, price, score,
// submit, persist, unlock. The lock is released on every exit path.
type Engine struct {
	Ledger    ledger.AccountReader
	Submitter ledger.TxSubmitter
	Prices    PriceSource
	Locks     lock.Manager
	Repo      repository.Repository
	Logger    *zap.Logger
	Config    Config

	// Now is swappable for tests; nil means time.Now.
	Now func() time.Time
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return zap.NewNop()
}

// SlotOutcome is the scored result for one slot.
type SlotOutcome struct {
	Category        string  `json:"category"`
	SlotRank        int     `json:"slot_rank"`
	Asset           string  `json:"asset"`
	EntryTimestamp  int64   `json:"entry_timestamp"`
	Duration        int64   `json:"duration"`
	EntryPrice      float64 `json:"entry_price"`
	ResolutionPrice float64 `json:"resolution_price"`
	PredictedPct    float64 `json:"predicted_pct"`
	ActualPct       float64 `json:"actual_pct"`
	Points          uint64  `json:"points"`
	Label           string  `json:"label"`
}

type SingleResult struct {
	Outcome   SlotOutcome `json:"outcome"`
	NewTotal  uint64      `json:"new_total"`
	Signature string      `json:"signature"`
}

type BatchResult struct {
	ResolvedCount      int           `json:"resolved_count"`
	TotalPointsAwarded uint64        `json:"total_points_awarded"`
	NewTotal           uint64        `json:"new_total"`
	Signature          string        `json:"signature"`
	Breakdown          []SlotOutcome `json:"breakdown"`
}

// selectedSlot pairs a slot with its address within the account.
type selectedSlot struct {
	category ledger.Category
	rank     int
	slot     ledger.PredictionSlot
}

// ResolveSingle resolves exactly one named slot.
func (e *Engine) ResolveSingle(ctx context.Context, wallet string, category ledger.Category, rank int) (*SingleResult, error) {
	if err := validateWallet(wallet); err != nil {
		return nil, err
	}
	if rank < 0 || rank >= ledger.SlotsPerCategory {
		return nil, newError(CodeInvalidAgent, fmt.Sprintf("slot rank %d out of range [0,%d)", rank, ledger.SlotsPerCategory))
	}

	acquired, err := e.Locks.Acquire(ctx, wallet, e.Config.SingleLockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock acquire: %w", err)
	}
	if !acquired {
		return nil, newRetryable(CodeLockHeld, "a resolution for this wallet is already in flight")
	}
	defer e.releaseLock(wallet)

	account, err := e.loadAccount(ctx, wallet)
	if err != nil {
		return nil, err
	}

	slot := *account.Slot(category, rank)
	if err := e.checkEligible(slot); err != nil {
		return nil, err
	}

	target := slot.EntryTimestamp + slot.Duration
	price, ok := e.Prices.GetPrice(ctx, slot.Asset, target)
	if !ok {
		return nil, newRetryable(CodePriceFetchFailed, fmt.Sprintf("no price for %s at %d", slot.Asset, target))
	}

	outcome := e.score(selectedSlot{category: category, rank: rank, slot: slot}, price)

	clearIx, err := ledger.ClearSingleSlot(category, rank)
	if err != nil {
		return nil, err
	}
	newTotal := account.TotalPoints + outcome.Points
	signature, err := e.submit(ctx, wallet, []SlotOutcome{outcome}, newTotal, clearIx)
	if err != nil {
		return nil, err
	}

	e.persist(ctx, wallet, signature, []SlotOutcome{outcome})
	e.logger().Info("resolved slot",
		zap.String("wallet", wallet),
		zap.String("category", category.String()),
		zap.Int("rank", rank),
		zap.Uint64("points", outcome.Points),
		zap.String("label", outcome.Label),
		zap.String("signature", signature),
	)

	return &SingleResult{Outcome: outcome, NewTotal: newTotal, Signature: signature}, nil
}

// ResolveBatch resolves every eligible slot of the wallet in one submission.
// Slots whose price lookup fails are dropped unless nothing is left. The
// trailing clear wipes the entire account, dropped slots included.
func (e *Engine) ResolveBatch(ctx context.Context, wallet string) (*BatchResult, error) {
	if err := validateWallet(wallet); err != nil {
		return nil, err
	}

	acquired, err := e.Locks.Acquire(ctx, wallet, e.Config.BatchLockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock acquire: %w", err)
	}
	if !acquired {
		return nil, newRetryable(CodeLockHeld, "a resolution for this wallet is already in flight")
	}
	defer e.releaseLock(wallet)

	account, err := e.loadAccount(ctx, wallet)
	if err != nil {
		return nil, err
	}

	selected := e.selectEligible(account)
	if len(selected) == 0 {
		return nil, newError(CodeNoReadyPredictions, "no predictions are ready to resolve")
	}

	queries := make([]oracle.PriceQuery, 0, len(selected))
	for _, s := range selected {
		queries = append(queries, oracle.PriceQuery{
			Asset:     s.slot.Asset,
			Timestamp: s.slot.EntryTimestamp + s.slot.Duration,
		})
	}
	prices := e.Prices.GetPrices(ctx, queries)

	outcomes := make([]SlotOutcome, 0, len(selected))
	for i, s := range selected {
		result, ok := prices[queries[i]]
		if !ok || !result.OK {
			e.logger().Warn("dropping slot, price unavailable",
				zap.String("wallet", wallet),
				zap.String("category", s.category.String()),
				zap.Int("rank", s.rank),
				zap.String("asset", s.slot.Asset),
			)
			continue
		}
		outcomes = append(outcomes, e.score(s, result.Price))
	}
	if len(outcomes) == 0 {
		return nil, newRetryable(CodePriceFetchFailed, "no prices available for any eligible prediction")
	}

	var awarded uint64
	for _, o := range outcomes {
		awarded += o.Points
	}
	newTotal := account.TotalPoints + awarded

	signature, err := e.submit(ctx, wallet, outcomes, newTotal, ledger.ClearAllSlots())
	if err != nil {
		return nil, err
	}

	e.persist(ctx, wallet, signature, outcomes)
	e.logger().Info("resolved batch",
		zap.String("wallet", wallet),
		zap.Int("resolved", len(outcomes)),
		zap.Uint64("points", awarded),
		zap.String("signature", signature),
	)

	return &BatchResult{
		ResolvedCount:      len(outcomes),
		TotalPointsAwarded: awarded,
		NewTotal:           newTotal,
		Signature:          signature,
		Breakdown:          outcomes,
	}, nil
}

func (e *Engine) releaseLock(wallet string) {
	// Release must not inherit a canceled request context.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Locks.Release(ctx, wallet); err != nil {
		e.logger().Warn("lock release failed", zap.String("wallet", wallet), zap.Error(err))
	}
}

func (e *Engine) loadAccount(ctx context.Context, wallet string) (*ledger.PredictionAccount, error) {
	data, err := e.Ledger.GetAccountData(ctx, wallet)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return nil, wrapError(CodeAccountNotFound, "no prediction account for this wallet", err)
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	account, err := ledger.DecodeAccount(data)
	if err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	return account, nil
}

// checkEligible validates a named slot for single-mode resolution; each
// violation maps to its own caller error.
func (e *Engine) checkEligible(slot ledger.PredictionSlot) error {
	if slot.Asset == "" {
		return newError(CodeEmptySlot, "slot holds no prediction")
	}
	if slot.EntryTimestamp <= 0 {
		return newError(CodeNoTimestamp, "slot has no entry timestamp")
	}
	if slot.Duration <= 0 {
		return newError(CodeNoDuration, "slot has no duration")
	}
	if slot.EntryPrice == 0 {
		return newError(CodeEmptySlot, "slot has no entry price")
	}
	resolveAt := slot.EntryTimestamp + slot.Duration
	if now := e.now().Unix(); now < resolveAt {
		remaining := time.Duration(resolveAt-now) * time.Second
		return newError(CodeNotReady, fmt.Sprintf("prediction resolves in %s", remaining))
	}
	return nil
}

// selectEligible scans all slots and collects every one ready to resolve,
// capped at the account size.
func (e *Engine) selectEligible(account *ledger.PredictionAccount) []selectedSlot {
	selected := make([]selectedSlot, 0, MaxBatchSlots)
	for _, category := range ledger.Categories() {
		for rank := 0; rank < ledger.SlotsPerCategory; rank++ {
			if len(selected) == MaxBatchSlots {
				return selected
			}
			slot := *account.Slot(category, rank)
			if e.checkEligible(slot) != nil {
				continue
			}
			selected = append(selected, selectedSlot{category: category, rank: rank, slot: slot})
		}
	}
	return selected
}

func (e *Engine) score(s selectedSlot, resolutionPrice float64) SlotOutcome {
	entryPrice := float64(s.slot.EntryPrice) / priceScale
	actualPct := ActualChangePct(entryPrice, resolutionPrice)
	predictedPct := float64(s.slot.PredictedPct)
	points, label := Score(s.category, predictedPct, actualPct)
	return SlotOutcome{
		Category:        s.category.String(),
		SlotRank:        s.rank,
		Asset:           s.slot.Asset,
		EntryTimestamp:  s.slot.EntryTimestamp,
		Duration:        s.slot.Duration,
		EntryPrice:      entryPrice,
		ResolutionPrice: resolutionPrice,
		PredictedPct:    predictedPct,
		ActualPct:       actualPct,
		Points:          points,
		Label:           label,
	}
}

// submit builds the one transaction of the workflow: a price write per scored
// slot, a single cumulative points update, and the trailing clear.
func (e *Engine) submit(ctx context.Context, wallet string, outcomes []SlotOutcome, newTotal uint64, clear ledger.Instruction) (string, error) {
	instructions := make([]ledger.Instruction, 0, len(outcomes)+2)
	for _, o := range outcomes {
		category, err := ledger.ParseCategory(o.Category)
		if err != nil {
			return "", err
		}
		fixedPrice := uint64(math.Round(o.ResolutionPrice * priceScale))
		ix, err := ledger.SetResolutionPrice(category, o.SlotRank, fixedPrice)
		if err != nil {
			return "", err
		}
		instructions = append(instructions, ix)
	}
	instructions = append(instructions, ledger.UpdateUserPoints(newTotal), clear)

	signature, err := e.Submitter.Submit(ctx, wallet, instructions)
	if err != nil {
		return "", wrapError(CodeTransactionFailed, "ledger submission failed: "+err.Error(), err)
	}
	return signature, nil
}

// persist mirrors outcomes into the read-store. The ledger already holds the
// truth, so failures here are logged and swallowed.
func (e *Engine) persist(ctx context.Context, wallet, signature string, outcomes []SlotOutcome) {
	resolvedAt := e.now().UTC()
	for _, o := range outcomes {
		record := &models.ResolutionRecord{
			Wallet:          wallet,
			Category:        o.Category,
			SlotRank:        o.SlotRank,
			EntryTimestamp:  o.EntryTimestamp,
			Asset:           o.Asset,
			Duration:        o.Duration,
			EntryPrice:      decimal.NewFromFloat(o.EntryPrice).Round(priceDecimals),
			ResolutionPrice: decimal.NewFromFloat(o.ResolutionPrice).Round(priceDecimals),
			PredictedPct:    o.PredictedPct,
			ActualPct:       o.ActualPct,
			Points:          o.Points,
			Label:           o.Label,
			TxSignature:     signature,
			ResolvedBy:      e.Config.ResolverIdentity,
			ResolvedAt:      resolvedAt,
		}
		if err := e.Repo.UpsertResolutionRecord(ctx, record); err != nil {
			e.logger().Warn("resolution record persist failed",
				zap.String("wallet", wallet),
				zap.String("category", o.Category),
				zap.Int("rank", o.SlotRank),
				zap.Error(err),
			)
		}
	}
}

func validateWallet(wallet string) error {
	if wallet == "" {
		return newError(CodeMissingWallet, "wallet address is required")
	}
	if _, err := ledger.DecodeAddress(wallet); err != nil {
		return newError(CodeMissingWallet, "wallet address is invalid: "+err.Error())
	}
	return nil
}
