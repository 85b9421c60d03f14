package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVendaRequest struct {
	ProdutoID  string `json:"produto_id" validate:"required,uuid"`
	Quantidade int    `json:"quantidade" validate:"required,min=1"`
}

type RegistrarVendaRequest struct {
	SessaoID     string             `json:"sessao_id" validate:"required,uuid"`
	MetodoID     string             `json:"metodo_id" validate:"required,uuid"`
	Parcelas     int                `json:"parcelas"  validate:"required,min=1"`
	Items        []ItemVendaRequest `json:"items"     validate:"required,min=1,dive"`
	ClienteEmail *string            `json:"cliente_email" validate:"omitempty,email"`
}

type AnularVendaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVendaResponse struct {
	Produto       string          `json:"produto"`
	Quantidade    int             `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type VendaResponse struct {
	ID           string              `json:"id"`
	NumeroTicket int64               `json:"numero_ticket"`
	SessaoID     string              `json:"sessao_id"`
	Metodo       string              `json:"metodo"`
	Parcelas     int                 `json:"parcelas"`
	ValorBruto   decimal.Decimal     `json:"valor_bruto"`
	TaxaTotal    decimal.Decimal     `json:"taxa_total"`
	ValorLiquido decimal.Decimal     `json:"valor_liquido"`
	Estado       string              `json:"estado"`
	Items        []ItemVendaResponse `json:"items"`
	Recebiveis   []ParcelaResponse   `json:"recebiveis,omitempty"`
	CreatedAt    string              `json:"created_at"`
}

type VendaListResponse struct {
	Data  []VendaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
