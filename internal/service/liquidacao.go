package service

// liquidacao.go — pure settlement math for a payment: fee deduction and the
// per-installment receivable schedule. No I/O, no hidden state: identical
// inputs (including the reference date) produce identical output, so quoting
// is safe under arbitrary concurrency and free to repeat.
//
// Rounding policy: always decimal.Round to 2 places — round half away from
// zero, which for the non-negative amounts handled here is plain half-up.
// Values are never truncated. The only automatic correction performed
// anywhere is folding the split remainder into the LAST installment so the
// installments sum to the net amount exactly; fees and session balances are
// never adjusted.

import (
	"time"

	"gestorpdv/internal/apperror"
	"gestorpdv/internal/model"

	"github.com/shopspring/decimal"
)

var cem = decimal.NewFromInt(100)

// ParcelaRecebivel is one installment of a settlement quote.
// Numero is 1-based and consecutive; Vencimento is a calendar date (midnight UTC).
type ParcelaRecebivel struct {
	Numero     int
	Valor      decimal.Decimal
	Vencimento time.Time
}

// CotacaoLiquidacao is the result of evaluating a payment: fee breakdown plus
// the receivable schedule. Computed on demand, never persisted as its own
// entity; ReceberService expands it into ContaReceber rows.
type CotacaoLiquidacao struct {
	ValorBruto   decimal.Decimal
	Parcelas     int
	TaxaTotal    decimal.Decimal
	ValorLiquido decimal.Decimal
	Recebiveis   []ParcelaRecebivel
}

// ValidarParcelas checks an installment count against a payment method's rules.
func ValidarParcelas(m *model.MetodoPagamento, parcelas int) error {
	if parcelas < 1 {
		return apperror.Validation(apperror.CodeInvalidInstallmentCount, "parcelas",
			"Quantidade de parcelas deve ser no mínimo 1")
	}
	if parcelas > 1 && !m.PermiteParcelamento {
		return apperror.Validation(apperror.CodeInstallmentsNotAllowed, "parcelas",
			"Método de pagamento não permite parcelamento")
	}
	if parcelas > m.MaxParcelas {
		return apperror.Validation(apperror.CodeInstallmentsExceedMax, "parcelas",
			"Quantidade de parcelas excede o máximo do método")
	}
	return nil
}

// CalcularLiquidacao quotes the settlement of valorBruto through metodo in
// the given number of parcelas, with due dates anchored on hoje.
//
// Fee: taxa_total = round2(bruto * pct/100 + fixa). The fixed fee is charged
// once per transaction, not per installment.
// Delay: dias = base + (parcelas-1) * incremento; installment i is due
// hoje + dias + 30*(i-1) days (one due date per 30-day cycle).
func CalcularLiquidacao(valorBruto decimal.Decimal, metodo *model.MetodoPagamento, parcelas int, hoje time.Time) (*CotacaoLiquidacao, error) {
	if !valorBruto.IsPositive() {
		return nil, apperror.Validation(apperror.CodeInvalidAmount, "valor",
			"Valor bruto deve ser maior que zero")
	}
	if metodo.TaxaPercentual.IsNegative() || metodo.TaxaPercentual.GreaterThanOrEqual(cem) {
		return nil, apperror.Arithmetic(apperror.CodeInvalidFeeConfig, "taxa_percentual",
			"Taxa percentual fora do intervalo [0, 100)")
	}
	if metodo.TaxaFixa.IsNegative() {
		return nil, apperror.Arithmetic(apperror.CodeInvalidFeeConfig, "taxa_fixa",
			"Taxa fixa não pode ser negativa")
	}
	if err := ValidarParcelas(metodo, parcelas); err != nil {
		return nil, err
	}

	taxaTotal := valorBruto.Mul(metodo.TaxaPercentual).Div(cem).Add(metodo.TaxaFixa).Round(2)
	valorLiquido := valorBruto.Sub(taxaTotal)
	if !valorLiquido.IsPositive() {
		return nil, apperror.Arithmetic(apperror.CodeInvalidFeeConfig, "taxa_fixa",
			"Taxas consomem o valor total da transação")
	}

	dias := metodo.DiasRecebimentoBase + (parcelas-1)*metodo.DiasIncrementoPorParcela
	base := diaCivil(hoje)

	nParcelas := decimal.NewFromInt(int64(parcelas))
	valorParcela := valorLiquido.Div(nParcelas).Round(2)

	recebiveis := make([]ParcelaRecebivel, 0, parcelas)
	acumulado := decimal.Zero
	for i := 1; i <= parcelas; i++ {
		valor := valorParcela
		if i == parcelas {
			// Last installment absorbs the rounding remainder: the sum of all
			// installments equals valor_liquido exactly, no cent drift.
			valor = valorLiquido.Sub(acumulado)
		}
		acumulado = acumulado.Add(valor)
		recebiveis = append(recebiveis, ParcelaRecebivel{
			Numero:     i,
			Valor:      valor,
			Vencimento: base.AddDate(0, 0, dias+30*(i-1)),
		})
	}

	return &CotacaoLiquidacao{
		ValorBruto:   valorBruto,
		Parcelas:     parcelas,
		TaxaTotal:    taxaTotal,
		ValorLiquido: valorLiquido,
		Recebiveis:   recebiveis,
	}, nil
}

// diaCivil strips the time component, pinning the date to midnight UTC so due
// dates are calendar dates regardless of the server timezone.
func diaCivil(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
