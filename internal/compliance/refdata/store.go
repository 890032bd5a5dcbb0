// Package refdata provides the sanctions reference list: the SQL-backed store,
// a Redis snapshot cache in front of it, and loaders for seeding.
package refdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/Aidin1998/sanctions_matcher/internal/compliance/screening"
	"github.com/Aidin1998/sanctions_matcher/internal/database"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SanctionRow is one entry of the consolidated sanctions table.
type SanctionRow struct {
	EntNum      int64  `gorm:"column:ent_num;primaryKey;autoIncrement:false"`
	SDNName     string `gorm:"column:sdn_name;not null"`
	SDNType     string `gorm:"column:sdn_type"`
	Country     string `gorm:"column:country;index"`
	CleanedName string `gorm:"column:cleaned_name;not null"`
}

func (SanctionRow) TableName() string {
	return "ofac_consolidated"
}

func (r SanctionRow) record() screening.ReferenceRecord {
	return screening.ReferenceRecord{
		EntNum:      r.EntNum,
		SDNName:     r.SDNName,
		SDNType:     r.SDNType,
		Country:     r.Country,
		CleanedName: r.CleanedName,
	}
}

// Store reads and writes the reference list through gorm.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ screening.ReferenceSource = (*Store)(nil)

func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// AutoMigrate creates or updates the reference table.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&SanctionRow{})
}

// FetchAll returns the whole list ordered by ent_num.
func (s *Store) FetchAll(ctx context.Context) ([]screening.ReferenceRecord, error) {
	var rows []SanctionRow
	if err := s.db.WithContext(ctx).Order("ent_num").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch reference list: %w", database.WrapError(err))
	}
	return toRecords(rows), nil
}

// FetchByCountry returns rows whose country contains filter, ignoring case.
func (s *Store) FetchByCountry(ctx context.Context, filter string) ([]screening.ReferenceRecord, error) {
	var rows []SanctionRow
	err := s.db.WithContext(ctx).
		Where("LOWER(country) LIKE ?", "%"+strings.ToLower(filter)+"%").
		Order("ent_num").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch reference list for country %q: %w", filter, database.WrapError(err))
	}
	return toRecords(rows), nil
}

// Upsert inserts or replaces records by ent_num. cleaned_name is always
// recomputed from sdn_name so stored rows match the runtime normalizer.
func (s *Store) Upsert(ctx context.Context, records []screening.ReferenceRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]SanctionRow, len(records))
	for i, r := range records {
		rows[i] = SanctionRow{
			EntNum:      r.EntNum,
			SDNName:     r.SDNName,
			SDNType:     r.SDNType,
			Country:     r.Country,
			CleanedName: screening.Normalize(r.SDNName),
		}
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ent_num"}},
			DoUpdates: clause.AssignmentColumns([]string{"sdn_name", "sdn_type", "country", "cleaned_name"}),
		}).
		CreateInBatches(&rows, 500).Error
	if err != nil {
		return fmt.Errorf("upsert %d reference rows: %w", len(rows), database.WrapError(err))
	}
	s.logger.Debug("reference rows upserted", zap.Int("rows", len(rows)))
	return nil
}

// Count returns the number of stored rows.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&SanctionRow{}).Count(&n).Error; err != nil {
		return 0, database.WrapError(err)
	}
	return n, nil
}

func toRecords(rows []SanctionRow) []screening.ReferenceRecord {
	out := make([]screening.ReferenceRecord, len(rows))
	for i, r := range rows {
		out[i] = r.record()
	}
	return out
}
