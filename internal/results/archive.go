package results

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/EmpoweredVote/election-results/internal/db"
	"github.com/EmpoweredVote/election-results/internal/results/provider"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultArchiveSchema = "results"
	DefaultHistoryLimit  = 20
	MaxHistoryLimit      = 100
)

// SnapshotRecord is one archived snapshot. Payload holds the full snapshot
// as JSON; the other columns exist for querying without decoding it.
type SnapshotRecord struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RetrievedAt      time.Time       `gorm:"not null;index" json:"retrievedAt"`
	Provider         string          `gorm:"not null" json:"provider"`
	TotalSeats       int             `gorm:"not null" json:"totalSeats"`
	ResultsPublished int             `gorm:"not null" json:"resultsPublished"`
	NewsFlash        string          `json:"newsFlash"`
	SourceURIs       pq.StringArray  `gorm:"type:text[]" json:"sourceUris"`
	Payload          json.RawMessage `gorm:"type:jsonb;not null" json:"payload"`
	CreatedAt        time.Time       `json:"createdAt"`
}

func (SnapshotRecord) TableName() string {
	return DefaultArchiveSchema + ".snapshots"
}

// NewSnapshotRecord flattens snap into its archive row.
func NewSnapshotRecord(snap provider.Snapshot) (SnapshotRecord, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return SnapshotRecord{}, fmt.Errorf("encode snapshot: %w", err)
	}
	uris := make(pq.StringArray, 0, len(snap.GroundingSources))
	for _, s := range snap.GroundingSources {
		uris = append(uris, s.URI)
	}
	return SnapshotRecord{
		ID:               snap.ID,
		RetrievedAt:      snap.RetrievedAt,
		Provider:         snap.Provider,
		TotalSeats:       snap.Summary.TotalSeats,
		ResultsPublished: snap.Summary.ResultsPublished,
		NewsFlash:        snap.NewsFlash,
		SourceURIs:       uris,
		Payload:          payload,
	}, nil
}

// Snapshot decodes the archived payload.
func (r SnapshotRecord) Snapshot() (provider.Snapshot, error) {
	var s provider.Snapshot
	if err := json.Unmarshal(r.Payload, &s); err != nil {
		return provider.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", r.ID, err)
	}
	return s, nil
}

// Archive stores accepted snapshots in Postgres.
type Archive struct {
	db    *gorm.DB
	table string
}

var (
	_ Recorder     = (*Archive)(nil)
	_ HistoryStore = (*Archive)(nil)
)

// NewArchive ensures schema and the snapshots table exist.
func NewArchive(d *gorm.DB, schema string) (*Archive, error) {
	if schema == "" {
		schema = DefaultArchiveSchema
	}
	if err := db.EnsureSchema(d, schema); err != nil {
		return nil, fmt.Errorf("ensure schema %s: %w", schema, err)
	}
	a := &Archive{db: d, table: schema + ".snapshots"}
	if err := a.scope(context.Background()).AutoMigrate(&SnapshotRecord{}); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", a.table, err)
	}
	return a, nil
}

func (a *Archive) scope(ctx context.Context) *gorm.DB {
	return a.db.WithContext(ctx).Table(a.table)
}

// Record inserts snap. Re-recording the same snapshot ID is a no-op.
func (a *Archive) Record(ctx context.Context, snap provider.Snapshot) error {
	rec, err := NewSnapshotRecord(snap)
	if err != nil {
		return err
	}
	return a.scope(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&rec).Error
}

// Recent returns up to limit records, newest first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]SnapshotRecord, error) {
	limit = clampLimit(limit)
	var out []SnapshotRecord
	err := a.scope(ctx).
		Order("retrieved_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	}
	return limit
}
