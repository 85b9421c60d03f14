package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Produto is a sellable catalog item.
type Produto struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome         string          `gorm:"not null"`
	CodigoBarras *string         `gorm:"uniqueIndex"`
	PrecoVenda   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Ativo        bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
