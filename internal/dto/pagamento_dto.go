package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SimularPagamentoRequest struct {
	Valor    decimal.Decimal `json:"valor"     validate:"required,gt=0"`
	MetodoID string          `json:"metodo_id" validate:"required,uuid"`
	Parcelas int             `json:"parcelas"  validate:"required,min=1"`
}

type CriarMetodoRequest struct {
	Nome                     string          `json:"nome"                        validate:"required,min=2"`
	TaxaPercentual           decimal.Decimal `json:"taxa_percentual"             validate:"min=0,lt=100"`
	TaxaFixa                 decimal.Decimal `json:"taxa_fixa"                   validate:"min=0"`
	PermiteParcelamento      bool            `json:"permite_parcelamento"`
	MaxParcelas              int             `json:"max_parcelas"                validate:"min=1"`
	DiasRecebimentoBase      int             `json:"dias_recebimento_base"       validate:"min=0"`
	DiasIncrementoPorParcela int             `json:"dias_incremento_por_parcela" validate:"min=0"`
	OrdemExibicao            int             `json:"ordem_exibicao"`
}

type AtualizarMetodoRequest struct {
	Nome                     *string          `json:"nome"`
	TaxaPercentual           *decimal.Decimal `json:"taxa_percentual"`
	TaxaFixa                 *decimal.Decimal `json:"taxa_fixa"`
	PermiteParcelamento      *bool            `json:"permite_parcelamento"`
	MaxParcelas              *int             `json:"max_parcelas"`
	DiasRecebimentoBase      *int             `json:"dias_recebimento_base"`
	DiasIncrementoPorParcela *int             `json:"dias_incremento_por_parcela"`
	OrdemExibicao            *int             `json:"ordem_exibicao"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MetodoPagamentoResponse struct {
	ID                       string          `json:"id"`
	Nome                     string          `json:"nome"`
	TaxaPercentual           decimal.Decimal `json:"taxa_percentual"`
	TaxaFixa                 decimal.Decimal `json:"taxa_fixa"`
	PermiteParcelamento      bool            `json:"permite_parcelamento"`
	MaxParcelas              int             `json:"max_parcelas"`
	DiasRecebimentoBase      int             `json:"dias_recebimento_base"`
	DiasIncrementoPorParcela int             `json:"dias_incremento_por_parcela"`
	OrdemExibicao            int             `json:"ordem_exibicao"`
	Ativo                    bool            `json:"ativo"`
}

type ParcelaResponse struct {
	NumeroParcela  int             `json:"numero_parcela"`
	Valor          decimal.Decimal `json:"valor"`
	DataVencimento string          `json:"data_vencimento"` // YYYY-MM-DD
}

type CotacaoResponse struct {
	ValorBruto   decimal.Decimal   `json:"valor_bruto"`
	Parcelas     int               `json:"parcelas"`
	TaxaTotal    decimal.Decimal   `json:"taxa_total"`
	ValorLiquido decimal.Decimal   `json:"valor_liquido"`
	Recebiveis   []ParcelaResponse `json:"recebiveis"`
}
