package repository

import (
	"context"
	"time"

	"alphapicks/internal/models"
)

type ListResolutionRecordsParams struct {
	Wallet   *string
	Category *string
	Asset    *string
	Since    *time.Time
	OrderBy  string
	Asc      *bool
	Limit    int
	Offset   int
}

// Repository is the persistence boundary of the resolver. The ledger is the
// source of truth; everything here is a secondary read-model.
type Repository interface {
	UpsertResolutionRecord(ctx context.Context, item *models.ResolutionRecord) error
	ListResolutionRecords(ctx context.Context, params ListResolutionRecordsParams) ([]models.ResolutionRecord, error)
	CountResolutionRecords(ctx context.Context, params ListResolutionRecordsParams) (int64, error)

	// ListRecentWallets returns distinct wallets with records since the cutoff,
	// most recently resolved first. Used by the sweep job.
	ListRecentWallets(ctx context.Context, since time.Time, limit int) ([]string, error)

	InsertSweepRun(ctx context.Context, item *models.SweepRun) error
	ListSweepRuns(ctx context.Context, limit int) ([]models.SweepRun, error)
}
