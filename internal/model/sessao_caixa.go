package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session status values. A session is created "aberta" and the only
// transition is aberta → fechada, via CaixaService.Fechar. There is no reopen.
const (
	SessaoAberta  = "aberta"
	SessaoFechada = "fechada"
)

// SessaoCaixa represents one operator's open-to-close cash-drawer period.
// A partial unique index on (operador_id) WHERE status = 'aberta' backs the
// at-most-one-open-session invariant at the storage layer; the service layer
// enforces it under a per-operator advisory lock.
type SessaoCaixa struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OperadorID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ValorInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status       string          `gorm:"type:varchar(20);not null;default:'aberta'"`

	// Accumulated while the session is open, always under the session row lock.
	TotalVendas      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	QuantidadeVendas int             `gorm:"not null;default:0"`

	// Set only on close; a closed session is immutable.
	ValorFinal *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Diferenca  *decimal.Decimal `gorm:"type:decimal(12,2)"`

	ObservacoesAbertura   *string
	ObservacoesFechamento *string

	OpenedAt time.Time
	ClosedAt *time.Time
}

func (SessaoCaixa) TableName() string { return "sessoes_caixa" }

// ValorEsperado is the cash the drawer should contain at close time.
func (s *SessaoCaixa) ValorEsperado() decimal.Decimal {
	return s.ValorInicial.Add(s.TotalVendas)
}

// Aberta reports whether the session still accepts sales.
func (s *SessaoCaixa) Aberta() bool { return s.Status == SessaoAberta }
