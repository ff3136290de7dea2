package gormrepository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alphapicks/internal/models"
	"alphapicks/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) UpsertResolutionRecord(ctx context.Context, item *models.ResolutionRecord) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.Wallet) == "" {
		return nil
	}
	// Uniqueness is enforced by uniq_resolution_slot
	// (wallet, category, slot_rank, entry_timestamp).
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "wallet"},
			{Name: "category"},
			{Name: "slot_rank"},
			{Name: "entry_timestamp"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"asset",
			"duration",
			"entry_price",
			"resolution_price",
			"predicted_pct",
			"actual_pct",
			"points",
			"label",
			"tx_signature",
			"resolved_by",
			"resolved_at",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) ListResolutionRecords(ctx context.Context, params repository.ListResolutionRecordsParams) ([]models.ResolutionRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.applyRecordFilters(ctx, params)
	query = applyOrder(query, params.OrderBy, params.Asc, "resolved_at")
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.ResolutionRecord
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountResolutionRecords(ctx context.Context, params repository.ListResolutionRecordsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.applyRecordFilters(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) applyRecordFilters(ctx context.Context, params repository.ListResolutionRecordsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.ResolutionRecord{})
	if params.Wallet != nil && strings.TrimSpace(*params.Wallet) != "" {
		query = query.Where("wallet = ?", strings.TrimSpace(*params.Wallet))
	}
	if params.Category != nil && strings.TrimSpace(*params.Category) != "" {
		query = query.Where("category = ?", strings.TrimSpace(*params.Category))
	}
	if params.Asset != nil && strings.TrimSpace(*params.Asset) != "" {
		query = query.Where("asset = ?", strings.TrimSpace(*params.Asset))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("resolved_at >= ?", *params.Since)
	}
	return query
}

func (s *Store) ListRecentWallets(ctx context.Context, since time.Time, limit int) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 100)
	var wallets []string
	err := s.db.WithContext(ctx).
		Model(&models.ResolutionRecord{}).
		Where("resolved_at >= ?", since).
		Group("wallet").
		Order("MAX(resolved_at) DESC").
		Limit(limit).
		Pluck("wallet", &wallets).Error
	if err != nil {
		return nil, err
	}
	return wallets, nil
}

func (s *Store) InsertSweepRun(ctx context.Context, item *models.SweepRun) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListSweepRuns(ctx context.Context, limit int) ([]models.SweepRun, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 50)
	var items []models.SweepRun
	err := s.db.WithContext(ctx).
		Model(&models.SweepRun{}).
		Order("finished_at desc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
