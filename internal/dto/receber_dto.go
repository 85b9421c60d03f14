package dto

import "github.com/shopspring/decimal"

type ContaReceberResponse struct {
	ID             string          `json:"id"`
	VendaID        string          `json:"venda_id"`
	NumeroParcela  int             `json:"numero_parcela"`
	Valor          decimal.Decimal `json:"valor"`
	DataVencimento string          `json:"data_vencimento"` // YYYY-MM-DD
	Status         string          `json:"status"`
	RecebidaEm     *string         `json:"recebida_em,omitempty"`
}

type ContaReceberListResponse struct {
	Data  []ContaReceberResponse `json:"data"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}
