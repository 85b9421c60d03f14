package infra

// pdf.go — closing report generation using go-pdf/fpdf.
// One A5 page per closed session: operator, open/close timestamps, opening
// float, accumulated sales, expected vs counted cash and the resulting
// difference, plus any closing notes.
//
// The output file is saved to storagePath/fechamento_{sessao}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"gestorpdv/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateFechamentoPDF renders the closing report of a closed session.
// storagePath is the directory where the PDF will be written (created if needed).
// Returns the absolute path to the generated file.
func GenerateFechamentoPDF(sessao *model.SessaoCaixa, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("fechamento_%s.pdf", sessao.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "GestorPDV", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 6, "Relatório de Fechamento de Caixa", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// ── Session info ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Sessão: %s", sessao.ID), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Operador: %s", sessao.OperadorID), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Abertura: %s", sessao.OpenedAt.Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	if sessao.ClosedAt != nil {
		pdf.CellFormat(contentW, 5, fmt.Sprintf("Fechamento: %s", sessao.ClosedAt.Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(3)

	// ── Amounts ──────────────────────────────────────────────────────────────
	col1 := contentW * 0.6
	col2 := contentW * 0.4

	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(col1, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, value, "", 1, "R", false, 0, "")
	}

	row("Valor inicial (fundo de troco):", "R$ "+sessao.ValorInicial.StringFixed(2), false)
	row(fmt.Sprintf("Vendas registradas (%d):", sessao.QuantidadeVendas), "R$ "+sessao.TotalVendas.StringFixed(2), false)
	row("Valor esperado:", "R$ "+sessao.ValorEsperado().StringFixed(2), true)
	if sessao.ValorFinal != nil {
		row("Valor contado:", "R$ "+sessao.ValorFinal.StringFixed(2), false)
	}
	if sessao.Diferenca != nil {
		row("Diferença:", "R$ "+sessao.Diferenca.StringFixed(2), true)
	}

	// ── Notes ────────────────────────────────────────────────────────────────
	if sessao.ObservacoesFechamento != nil && *sessao.ObservacoesFechamento != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW, 5, "Observações:", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.MultiCell(contentW, 4, *sessao.ObservacoesFechamento, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
