package service

import (
	"context"
	"encoding/binary"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"alphapicks/internal/config"
	"alphapicks/internal/ledger"
	"alphapicks/internal/lock"
	"alphapicks/internal/models"
	"alphapicks/internal/oracle"
	"alphapicks/internal/repository"
	"alphapicks/internal/resolution"
)

const (
	sweepEntryTS  = int64(1_700_000_000)
	sweepDuration = int64(3600)
)

// oneSlotAccount builds a full-schema payload holding a single matured top
// pick for the given asset.
func oneSlotAccount(asset string) []byte {
	data := make([]byte, ledger.FullAccountSize)
	copy(data[40:], asset)                                          // top slot 0 asset
	binary.LittleEndian.PutUint64(data[360:], uint64(sweepEntryTS)) // entry ts
	binary.LittleEndian.PutUint16(data[440:], 10)                   // predicted pct
	binary.LittleEndian.PutUint64(data[460:], 100_000_000_000)      // entry price 100.0
	binary.LittleEndian.PutUint64(data[620:], uint64(sweepDuration)) // duration
	return data
}

type sweepReader struct {
	accounts map[string][]byte
}

func (r *sweepReader) GetAccountData(_ context.Context, wallet string) ([]byte, error) {
	data, ok := r.accounts[wallet]
	if !ok {
		return nil, ledger.ErrAccountNotFound
	}
	return data, nil
}

type sweepSubmitter struct{}

func (sweepSubmitter) Submit(context.Context, string, []ledger.Instruction) (string, error) {
	return "sig-sweep", nil
}

type sweepPrices struct {
	price float64
}

func (p sweepPrices) GetPrice(context.Context, string, int64) (float64, bool) {
	return p.price, true
}

func (p sweepPrices) GetPreviewPrice(ctx context.Context, asset string, target int64) (float64, bool) {
	return p.GetPrice(ctx, asset, target)
}

func (p sweepPrices) GetPrices(ctx context.Context, queries []oracle.PriceQuery) map[oracle.PriceQuery]oracle.PriceResult {
	results := make(map[oracle.PriceQuery]oracle.PriceResult, len(queries))
	for _, q := range queries {
		price, ok := p.GetPrice(ctx, q.Asset, q.Timestamp)
		results[q] = oracle.PriceResult{Price: price, OK: ok}
	}
	return results
}

type sweepRepo struct {
	wallets []string
	runs    []models.SweepRun
}

func (r *sweepRepo) UpsertResolutionRecord(context.Context, *models.ResolutionRecord) error {
	return nil
}

func (r *sweepRepo) ListResolutionRecords(context.Context, repository.ListResolutionRecordsParams) ([]models.ResolutionRecord, error) {
	return nil, nil
}

func (r *sweepRepo) CountResolutionRecords(context.Context, repository.ListResolutionRecordsParams) (int64, error) {
	return 0, nil
}

func (r *sweepRepo) ListRecentWallets(context.Context, time.Time, int) ([]string, error) {
	return r.wallets, nil
}

func (r *sweepRepo) InsertSweepRun(_ context.Context, item *models.SweepRun) error {
	r.runs = append(r.runs, *item)
	return nil
}

func (r *sweepRepo) ListSweepRuns(context.Context, int) ([]models.SweepRun, error) {
	return nil, nil
}

func TestSweepRunOnce(t *testing.T) {
	walletReady := strings.Repeat("aa", 32)
	walletLocked := strings.Repeat("bb", 32)
	walletGone := strings.Repeat("cc", 32)

	locks := lock.NewMemoryManager()
	repo := &sweepRepo{wallets: []string{walletReady, walletLocked, walletGone}}
	engine := &resolution.Engine{
		Ledger: &sweepReader{accounts: map[string][]byte{
			walletReady:  oneSlotAccount("bitcoin"),
			walletLocked: oneSlotAccount("ethereum"),
		}},
		Submitter: sweepSubmitter{},
		Prices:    sweepPrices{price: 111},
		Locks:     locks,
		Repo:      repo,
		Logger:    zap.NewNop(),
		Config:    resolution.Config{BatchLockTTL: time.Minute},
		Now:       func() time.Time { return time.Unix(sweepEntryTS+sweepDuration+10, 0) },
	}

	if ok, _ := locks.Acquire(context.Background(), walletLocked, time.Minute); !ok {
		t.Fatalf("setup acquire failed")
	}

	sweep := &SweepService{
		Engine: engine,
		Repo:   repo,
		Config: config.SweepConfig{LookbackDays: 7, MaxWallets: 10},
		Logger: zap.NewNop(),
	}
	if err := sweep.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if len(repo.runs) != 1 {
		t.Fatalf("got %d sweep runs, want 1", len(repo.runs))
	}
	run := repo.runs[0]
	if run.WalletsScanned != 3 || run.WalletsLocked != 1 || run.Failures != 0 {
		t.Fatalf("run = %+v", run)
	}
	if run.SlotsResolved != 1 || run.PointsAwarded != 1000 {
		t.Fatalf("resolved=%d points=%d", run.SlotsResolved, run.PointsAwarded)
	}
	if len(run.Breakdown) == 0 {
		t.Fatalf("breakdown not recorded")
	}
}

func TestSweepRunOnce_NilDependencies(t *testing.T) {
	var sweep *SweepService
	if err := sweep.RunOnce(context.Background()); err != nil {
		t.Fatalf("nil sweep errored: %v", err)
	}
}
