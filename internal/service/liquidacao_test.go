package service_test

import (
	"testing"
	"time"

	"gestorpdv/internal/apperror"
	"gestorpdv/internal/model"
	"gestorpdv/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hoje = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func metodoCredito() *model.MetodoPagamento {
	return &model.MetodoPagamento{
		Nome:                     "Cartão de Crédito",
		TaxaPercentual:           decimal.NewFromFloat(3),
		TaxaFixa:                 decimal.NewFromFloat(0.30),
		PermiteParcelamento:      true,
		MaxParcelas:              12,
		DiasRecebimentoBase:      30,
		DiasIncrementoPorParcela: 2,
	}
}

func metodoDinheiro() *model.MetodoPagamento {
	return &model.MetodoPagamento{
		Nome:        "Dinheiro",
		MaxParcelas: 1,
	}
}

func TestCalcularLiquidacao_TaxaEValorLiquido(t *testing.T) {
	c, err := service.CalcularLiquidacao(decimal.NewFromInt(1000), metodoCredito(), 1, hoje)
	require.NoError(t, err)

	// 1000 * 3% + 0.30 = 30.30
	assert.Equal(t, "30.30", c.TaxaTotal.StringFixed(2))
	assert.Equal(t, "969.70", c.ValorLiquido.StringFixed(2))
	require.Len(t, c.Recebiveis, 1)
	assert.Equal(t, "969.70", c.Recebiveis[0].Valor.StringFixed(2))
}

func TestCalcularLiquidacao_SomaDasParcelasExata(t *testing.T) {
	// 100 líquido em 3 parcelas: 33.33 + 33.33 + 33.34
	m := &model.MetodoPagamento{
		Nome:                "Crédito sem taxa",
		PermiteParcelamento: true,
		MaxParcelas:         12,
	}
	c, err := service.CalcularLiquidacao(decimal.NewFromInt(100), m, 3, hoje)
	require.NoError(t, err)
	require.Len(t, c.Recebiveis, 3)

	assert.Equal(t, "33.33", c.Recebiveis[0].Valor.StringFixed(2))
	assert.Equal(t, "33.33", c.Recebiveis[1].Valor.StringFixed(2))
	assert.Equal(t, "33.34", c.Recebiveis[2].Valor.StringFixed(2))

	soma := decimal.Zero
	for _, p := range c.Recebiveis {
		soma = soma.Add(p.Valor)
	}
	assert.True(t, soma.Equal(c.ValorLiquido), "soma das parcelas deve igualar o líquido")
}

func TestCalcularLiquidacao_ArredondamentoMeioParaCima(t *testing.T) {
	// 10.005 deve arredondar para 10.01, nunca truncar para 10.00
	m := &model.MetodoPagamento{Nome: "Débito", TaxaPercentual: decimal.NewFromFloat(0.05), MaxParcelas: 1}
	c, err := service.CalcularLiquidacao(decimal.NewFromInt(10010), m, 1, hoje)
	require.NoError(t, err)
	// 10010 * 0.05% = 5.005 → 5.01
	assert.Equal(t, "5.01", c.TaxaTotal.StringFixed(2))
}

func TestCalcularLiquidacao_Vencimentos(t *testing.T) {
	c, err := service.CalcularLiquidacao(decimal.NewFromInt(300), metodoCredito(), 3, hoje)
	require.NoError(t, err)
	require.Len(t, c.Recebiveis, 3)

	// dias = 30 + (3-1)*2 = 34; parcelas a cada 30 dias
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, base.AddDate(0, 0, 34), c.Recebiveis[0].Vencimento)
	assert.Equal(t, base.AddDate(0, 0, 64), c.Recebiveis[1].Vencimento)
	assert.Equal(t, base.AddDate(0, 0, 94), c.Recebiveis[2].Vencimento)

	for i, p := range c.Recebiveis {
		assert.Equal(t, i+1, p.Numero)
		assert.Equal(t, 0, p.Vencimento.Hour(), "vencimento deve ser data civil")
	}
}

func TestCalcularLiquidacao_Deterministica(t *testing.T) {
	a, err := service.CalcularLiquidacao(decimal.NewFromFloat(123.45), metodoCredito(), 6, hoje)
	require.NoError(t, err)
	b, err := service.CalcularLiquidacao(decimal.NewFromFloat(123.45), metodoCredito(), 6, hoje)
	require.NoError(t, err)

	assert.True(t, a.TaxaTotal.Equal(b.TaxaTotal))
	assert.True(t, a.ValorLiquido.Equal(b.ValorLiquido))
	for i := range a.Recebiveis {
		assert.True(t, a.Recebiveis[i].Valor.Equal(b.Recebiveis[i].Valor))
		assert.Equal(t, a.Recebiveis[i].Vencimento, b.Recebiveis[i].Vencimento)
	}
}

func TestCalcularLiquidacao_ValorInvalido(t *testing.T) {
	_, err := service.CalcularLiquidacao(decimal.Zero, metodoCredito(), 1, hoje)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidAmount))

	_, err = service.CalcularLiquidacao(decimal.NewFromInt(-10), metodoCredito(), 1, hoje)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidAmount))
}

func TestCalcularLiquidacao_ParcelasInvalidas(t *testing.T) {
	_, err := service.CalcularLiquidacao(decimal.NewFromInt(100), metodoCredito(), 0, hoje)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidInstallmentCount))

	_, err = service.CalcularLiquidacao(decimal.NewFromInt(100), metodoDinheiro(), 2, hoje)
	assert.True(t, apperror.IsCode(err, apperror.CodeInstallmentsNotAllowed))

	_, err = service.CalcularLiquidacao(decimal.NewFromInt(100), metodoCredito(), 13, hoje)
	assert.True(t, apperror.IsCode(err, apperror.CodeInstallmentsExceedMax))
}

func TestCalcularLiquidacao_ConfiguracaoDeTaxaInvalida(t *testing.T) {
	m := metodoCredito()
	m.TaxaPercentual = decimal.NewFromInt(100)
	_, err := service.CalcularLiquidacao(decimal.NewFromInt(100), m, 1, hoje)
	assert.True(t, apperror.IsKind(err, apperror.KindArithmetic))
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidFeeConfig))

	m = metodoCredito()
	m.TaxaFixa = decimal.NewFromInt(-1)
	_, err = service.CalcularLiquidacao(decimal.NewFromInt(100), m, 1, hoje)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidFeeConfig))
}

func TestCalcularLiquidacao_TaxaConsomeTudo(t *testing.T) {
	m := &model.MetodoPagamento{Nome: "Taxa alta", TaxaFixa: decimal.NewFromInt(10), MaxParcelas: 1}
	_, err := service.CalcularLiquidacao(decimal.NewFromInt(5), m, 1, hoje)
	assert.True(t, apperror.IsKind(err, apperror.KindArithmetic))
}

func TestValidarParcelas(t *testing.T) {
	assert.NoError(t, service.ValidarParcelas(metodoCredito(), 1))
	assert.NoError(t, service.ValidarParcelas(metodoCredito(), 12))
	assert.NoError(t, service.ValidarParcelas(metodoDinheiro(), 1))

	assert.Error(t, service.ValidarParcelas(metodoDinheiro(), 2))
	assert.Error(t, service.ValidarParcelas(metodoCredito(), 13))
	assert.Error(t, service.ValidarParcelas(metodoCredito(), -1))
}
