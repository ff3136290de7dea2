package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alphapicks/internal/config"
	"alphapicks/internal/models"
	"alphapicks/internal/repository"
	"alphapicks/internal/resolution"
)

// SweepService periodically runs batch resolution for wallets that resolved
// recently and so likely hold fresh expired picks. Best-effort: a held lock
// or an empty account is a normal per-wallet outcome, not a sweep failure.
// Disabled by default (see config).
type SweepService struct {
	Engine *resolution.Engine
	Repo   repository.Repository
	Config config.SweepConfig
	Logger *zap.Logger
}

type sweepWalletOutcome struct {
	Wallet   string `json:"wallet"`
	Resolved int    `json:"resolved,omitempty"`
	Points   uint64 `json:"points,omitempty"`
	Skipped  string `json:"skipped,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (s *SweepService) RunOnce(ctx context.Context) error {
	if s == nil || s.Engine == nil || s.Repo == nil {
		return nil
	}
	startedAt := time.Now().UTC()
	lookback := s.Config.LookbackDays
	if lookback <= 0 {
		lookback = 14
	}
	maxWallets := s.Config.MaxWallets
	if maxWallets <= 0 {
		maxWallets = 100
	}

	since := startedAt.AddDate(0, 0, -lookback)
	wallets, err := s.Repo.ListRecentWallets(ctx, since, maxWallets)
	if err != nil {
		return err
	}

	run := &models.SweepRun{StartedAt: startedAt, WalletsScanned: len(wallets)}
	outcomes := make([]sweepWalletOutcome, 0, len(wallets))
	for _, wallet := range wallets {
		outcome := s.resolveWallet(ctx, wallet)
		switch outcome.Skipped {
		case "":
			if outcome.Error != "" {
				run.Failures++
			} else {
				run.SlotsResolved += outcome.Resolved
				run.PointsAwarded += outcome.Points
			}
		case string(resolution.CodeLockHeld):
			run.WalletsLocked++
		}
		outcomes = append(outcomes, outcome)
	}

	run.FinishedAt = time.Now().UTC()
	if breakdown, err := json.Marshal(outcomes); err == nil {
		run.Breakdown = datatypes.JSON(breakdown)
	}
	if err := s.Repo.InsertSweepRun(ctx, run); err != nil {
		s.Logger.Warn("sweep run persist failed", zap.Error(err))
	}

	s.Logger.Info("sweep finished",
		zap.Int("wallets", run.WalletsScanned),
		zap.Int("locked", run.WalletsLocked),
		zap.Int("resolved", run.SlotsResolved),
		zap.Int("failures", run.Failures),
		zap.Uint64("points", run.PointsAwarded),
	)
	return nil
}

func (s *SweepService) resolveWallet(ctx context.Context, wallet string) sweepWalletOutcome {
	outcome := sweepWalletOutcome{Wallet: wallet}
	result, err := s.Engine.ResolveBatch(ctx, wallet)
	if err == nil {
		outcome.Resolved = result.ResolvedCount
		outcome.Points = result.TotalPointsAwarded
		return outcome
	}
	if coded, ok := resolution.AsError(err); ok {
		switch coded.Code {
		case resolution.CodeLockHeld, resolution.CodeNoReadyPredictions, resolution.CodeAccountNotFound:
			outcome.Skipped = string(coded.Code)
			return outcome
		}
	}
	s.Logger.Warn("sweep wallet resolution failed", zap.String("wallet", wallet), zap.Error(err))
	outcome.Error = err.Error()
	return outcome
}
