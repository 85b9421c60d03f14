package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MetodoPagamento is a way a customer can pay, configured by an administrator
// and read-only to the settlement calculator at quote time.
//
// TaxaPercentual is a percentage in [0, 100); TaxaFixa is charged once per
// transaction. When PermiteParcelamento is false, MaxParcelas is forced to 1.
type MetodoPagamento struct {
	ID                       uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome                     string          `gorm:"not null"`
	TaxaPercentual           decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TaxaFixa                 decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PermiteParcelamento      bool            `gorm:"not null;default:false"`
	MaxParcelas              int             `gorm:"not null;default:1"`
	DiasRecebimentoBase      int             `gorm:"not null;default:0"`
	DiasIncrementoPorParcela int             `gorm:"not null;default:0"`

	// OrdemExibicao is the administrator-defined display order; listings are
	// sorted by it (then by name, so the order is stable across restarts).
	OrdemExibicao int  `gorm:"not null;default:0;index"`
	Ativo         bool `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MetodoPagamento) TableName() string { return "metodos_pagamento" }
