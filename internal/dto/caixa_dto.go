package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCaixaRequest struct {
	ValorInicial decimal.Decimal `json:"valor_inicial" validate:"min=0"`
	Observacoes  *string         `json:"observacoes"`
}

type FecharCaixaRequest struct {
	SessaoID    string          `json:"sessao_id"   validate:"required,uuid"`
	ValorFinal  decimal.Decimal `json:"valor_final" validate:"min=0"`
	Observacoes *string         `json:"observacoes"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SessaoCaixaResponse struct {
	ID                    string           `json:"id"`
	OperadorID            string           `json:"operador_id"`
	Status                string           `json:"status"`
	ValorInicial          decimal.Decimal  `json:"valor_inicial"`
	TotalVendas           decimal.Decimal  `json:"total_vendas"`
	QuantidadeVendas      int              `json:"quantidade_vendas"`
	ValorEsperado         decimal.Decimal  `json:"valor_esperado"`
	ValorFinal            *decimal.Decimal `json:"valor_final,omitempty"`
	Diferenca             *decimal.Decimal `json:"diferenca,omitempty"`
	ObservacoesAbertura   *string          `json:"observacoes_abertura,omitempty"`
	ObservacoesFechamento *string          `json:"observacoes_fechamento,omitempty"`
	OpenedAt              string           `json:"opened_at"`
	ClosedAt              *string          `json:"closed_at,omitempty"`
}

type HistoricoCaixaResponse struct {
	Data  []SessaoCaixaResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
