package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venda is a completed PDV sale. Settlement figures (taxa, líquido, parcelas)
// are frozen at registration time from the quote the sale was confirmed with.
// Estado: "concluida" | "anulada".
type Venda struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroTicket int64     `gorm:"uniqueIndex;not null"`
	SessaoID     uuid.UUID `gorm:"type:uuid;not null;index"`
	OperadorID   uuid.UUID `gorm:"type:uuid;not null"`
	MetodoID     uuid.UUID `gorm:"type:uuid;not null"`

	ValorBruto   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxaTotal    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ValorLiquido decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Parcelas     int             `gorm:"not null;default:1"`

	Estado         string  `gorm:"type:varchar(20);not null;default:'concluida'"`
	MotivoAnulacao *string
	ClienteEmail   *string

	Items []VendaItem `gorm:"foreignKey:VendaID"`

	Metodo *MetodoPagamento `gorm:"foreignKey:MetodoID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// VendaItem is one product line of a sale.
type VendaItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VendaID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProdutoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Quantidade    int             `gorm:"not null"`
	PrecoUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}
