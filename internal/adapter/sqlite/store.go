// Package sqlite implements the measurement storage gateway on SQLite via
// GORM and the pure-Go glebarez driver.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/couchcryptid/soil-data-ingest-service/internal/domain"
)

// Store persists and queries measurement records.
type Store struct {
	db *gorm.DB
}

// Open creates the database file (and parent directory) if needed, runs the
// schema migration, and returns a ready Store.
func Open(dsn string) (*Store, error) {
	if err := ensureDirectory(dsn); err != nil {
		return nil, fmt.Errorf("ensure sqlite directory: %w", err)
	}

	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.AutoMigrate(&measurementRow{}); err != nil {
		return nil, fmt.Errorf("migrate measurements: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing gorm handle. Used by tests.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// InsertBatch writes a normalized batch in one transaction and returns the
// number of rows persisted. On error the transaction is rolled back and
// nothing from this batch remains.
func (s *Store) InsertBatch(ctx context.Context, batch []domain.Measurement) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	rows := make([]measurementRow, len(batch))
	for i, m := range batch {
		rows[i] = toRow(m)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		return 0, fmt.Errorf("insert measurements: %w", err)
	}
	return len(rows), nil
}

// ListAll returns every record, newest first by device timestamp. Ties are
// broken by insertion order.
func (s *Store) ListAll(ctx context.Context) ([]domain.Measurement, error) {
	return s.list(ctx, 0)
}

// ListRecent returns at most limit records, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]domain.Measurement, error) {
	return s.list(ctx, limit)
}

func (s *Store) list(ctx context.Context, limit int) ([]domain.Measurement, error) {
	query := s.db.WithContext(ctx).Order("ts DESC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []measurementRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query measurements: %w", err)
	}

	out := make([]domain.Measurement, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

// GetByID fetches one record by its store-assigned identifier. A malformed
// or unknown id yields domain.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (domain.Measurement, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return domain.Measurement{}, domain.ErrNotFound
	}

	var row measurementRow
	if err := s.db.WithContext(ctx).First(&row, n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Measurement{}, domain.ErrNotFound
		}
		return domain.Measurement{}, fmt.Errorf("query measurement %q: %w", id, err)
	}
	return fromRow(row), nil
}

// Count returns the total number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&measurementRow{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count measurements: %w", err)
	}
	return count, nil
}

// Ping verifies the underlying database connection, used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// measurementRow is the relational shape of a measurement. The legacy
// "username" column exists only for rows written before identity
// normalization; new writes always fill "user".
type measurementRow struct {
	ID           uint64   `gorm:"column:id;primaryKey;autoIncrement"`
	User         string   `gorm:"column:user;index"`
	Username     string   `gorm:"column:username"`
	TS           int64    `gorm:"column:ts;index"`
	N            *float64 `gorm:"column:n"`
	P            *float64 `gorm:"column:p"`
	K            *float64 `gorm:"column:k"`
	Ph           *float64 `gorm:"column:ph"`
	Ec           *float64 `gorm:"column:ec"`
	Temp         *float64 `gorm:"column:temp"`
	Hum          *float64 `gorm:"column:hum"`
	Latitude     *float64 `gorm:"column:latitude"`
	Longitude    *float64 `gorm:"column:longitude"`
	LocationName *string  `gorm:"column:location_name"`
	Note         *string  `gorm:"column:note"`
	ProjectName  *string  `gorm:"column:project_name;index"`
	CreatedAt    time.Time
}

func (measurementRow) TableName() string {
	return "measurements"
}

func toRow(m domain.Measurement) measurementRow {
	row := measurementRow{
		User:        m.User,
		TS:          m.TS,
		N:           m.N,
		P:           m.P,
		K:           m.K,
		Ph:          m.Ph,
		Ec:          m.Ec,
		Temp:        m.Temp,
		Hum:         m.Hum,
		Latitude:    m.Location.Latitude,
		Longitude:   m.Location.Longitude,
		Note:        m.Note,
		ProjectName: m.ProjectName,
		CreatedAt:   m.ReceivedAt,
	}
	if m.LocationName != "" {
		name := m.LocationName
		row.LocationName = &name
	}
	return row
}

func fromRow(row measurementRow) domain.Measurement {
	m := domain.Measurement{
		ID:   strconv.FormatUint(row.ID, 10),
		User: row.User,
		TS:   row.TS,
		N:    row.N,
		P:    row.P,
		K:    row.K,
		Ph:   row.Ph,
		Ec:   row.Ec,
		Temp: row.Temp,
		Hum:  row.Hum,
		Location: domain.Location{
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
		},
		Note:        row.Note,
		ProjectName: row.ProjectName,
		ReceivedAt:  row.CreatedAt,
	}
	// Identity reconciliation for rows stored before normalization existed.
	if m.User == "" {
		m.User = row.Username
	}
	if row.LocationName != nil {
		m.LocationName = *row.LocationName
	}
	return m
}

func ensureDirectory(dsn string) error {
	candidate := strings.TrimSpace(dsn)
	if candidate == "" || candidate == ":memory:" {
		return nil
	}
	if strings.HasPrefix(strings.ToLower(candidate), "file:") {
		candidate = candidate[len("file:"):]
	}
	if idx := strings.Index(candidate, "?"); idx >= 0 {
		candidate = candidate[:idx]
	}

	dir := filepath.Dir(candidate)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
