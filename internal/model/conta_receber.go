package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receivable status values. Pendente → recebida on settlement, or
// pendente → cancelada when the originating sale is voided.
const (
	ContaPendente  = "pendente"
	ContaRecebida  = "recebida"
	ContaCancelada = "cancelada"
)

// ContaReceber is one installment of a settled payment, owed to the merchant
// by the payment processor. One row per parcel of a settlement quote.
type ContaReceber struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VendaID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	NumeroParcela int             `gorm:"not null"`
	Valor         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// DataVencimento is a calendar date; the time component is always midnight UTC.
	DataVencimento time.Time `gorm:"type:date;not null;index"`
	Status         string    `gorm:"type:varchar(20);not null;default:'pendente'"`
	RecebidaEm     *time.Time

	CreatedAt time.Time
}

func (ContaReceber) TableName() string { return "contas_receber" }
