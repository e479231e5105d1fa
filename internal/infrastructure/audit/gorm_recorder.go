package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apporder "github.com/supplytrace/backend/internal/application/order"
	"github.com/supplytrace/backend/internal/infrastructure/persistence"
)

// Record is one row of the append-only purchase order audit trail.
// Rows are never updated or deleted.
type Record struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	EventType       string         `gorm:"type:varchar(50);not null;index"`
	POID            uuid.UUID      `gorm:"column:po_id;type:uuid;not null;index"`
	ActorCompanyID  uuid.UUID      `gorm:"type:uuid;not null;index"`
	OldState        string         `gorm:"type:varchar(30)"`
	NewState        string         `gorm:"type:varchar(30)"`
	ChangedFields   []string       `gorm:"serializer:json"`
	BusinessContext map[string]any `gorm:"serializer:json"`
	RecordedAt      time.Time      `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Record) TableName() string {
	return "po_audit_log"
}

// GormRecorder writes audit entries to the relational store. When the
// calling service runs inside a transaction the entry joins it, so a
// rejected audit write rolls the whole change back.
type GormRecorder struct {
	db *gorm.DB
}

// NewGormRecorder creates a database-backed audit recorder
func NewGormRecorder(db *gorm.DB) *GormRecorder {
	return &GormRecorder{db: db}
}

// Record appends one audit entry
func (r *GormRecorder) Record(ctx context.Context, entry apporder.AuditEntry) error {
	row := Record{
		ID:              uuid.New(),
		EventType:       entry.EventType,
		POID:            entry.POID,
		ActorCompanyID:  entry.ActorCompanyID,
		OldState:        entry.OldState,
		NewState:        entry.NewState,
		ChangedFields:   entry.ChangedFields,
		BusinessContext: entry.BusinessContext,
		RecordedAt:      time.Now().UTC(),
	}
	if err := persistence.Session(ctx, r.db).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

var _ apporder.AuditRecorder = (*GormRecorder)(nil)
