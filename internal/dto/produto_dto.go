package dto

import "github.com/shopspring/decimal"

type CriarProdutoRequest struct {
	Nome         string          `json:"nome"          validate:"required,min=2"`
	CodigoBarras *string         `json:"codigo_barras"`
	PrecoVenda   decimal.Decimal `json:"preco_venda"   validate:"required,gt=0"`
}

type AtualizarProdutoRequest struct {
	Nome         *string          `json:"nome"`
	CodigoBarras *string          `json:"codigo_barras"`
	PrecoVenda   *decimal.Decimal `json:"preco_venda"`
}

type ProdutoResponse struct {
	ID           string          `json:"id"`
	Nome         string          `json:"nome"`
	CodigoBarras *string         `json:"codigo_barras,omitempty"`
	PrecoVenda   decimal.Decimal `json:"preco_venda"`
	Ativo        bool            `json:"ativo"`
}
