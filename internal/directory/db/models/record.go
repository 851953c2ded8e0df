// Package models contains the persisted shapes of the catalog, configured
// to work using GORM as the ORM.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompanyRecord stores one raw company document exactly as it was imported.
// Validation happens when the catalog is loaded, never on write, so invalid
// and duplicate documents are kept and reported like any other source.
type CompanyRecord struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// CompanyID is the document's id when it had a string one.
	CompanyID string `gorm:"size:255;index"`
	// Position preserves input order.
	Position  int    `gorm:"index"`
	Payload   string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (CompanyRecord) TableName() string {
	return "company_records"
}
