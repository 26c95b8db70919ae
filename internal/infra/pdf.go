package infra

// pdf.go — closing-report generation using go-pdf/fpdf. Each closed session
// gets an A5 arqueo sheet: opening float, per-method totals, expected vs
// counted cash, and the variance classification. The output file is saved to
// storagePath/arqueo_{sesionID}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"lavanderia/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateArqueoPDF renders the reconciliation sheet for a closed session.
// Returns the absolute path to the generated file.
func GenerateArqueoPDF(sesion *model.SesionCaja, storagePath string) (string, error) {
	if sesion.ClosedAt == nil {
		return "", fmt.Errorf("pdf: la sesión %s sigue abierta", sesion.ID)
	}
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("arqueo_%s.pdf", sesion.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Lavandería", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Arqueo de Caja", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 4, fmt.Sprintf("Sesión %s", sesion.ID), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4,
		fmt.Sprintf("Apertura: %s    Cierre: %s",
			sesion.OpenedAt.Format("02/01/2006 15:04"),
			sesion.ClosedAt.Format("02/01/2006 15:04")),
		"", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(2)

	// ── Per-method totals ────────────────────────────────────────────────────
	col1 := contentW * 0.6
	col2 := contentW * 0.4

	row := func(label string, monto *decimal.Decimal) {
		pdf.CellFormat(col1, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, "$"+derefMonto(monto).StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "Ventas", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	row("Efectivo", sesion.TotalVentasEfectivo)
	row("Transferencia", sesion.TotalVentasTransferencia)
	row("Débito", sesion.TotalVentasDebito)
	row("Crédito", sesion.TotalVentasCredito)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "Retiros", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	row("Efectivo", sesion.TotalRetirosEfectivo)
	row("Transferencia", sesion.TotalRetirosTransferencia)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "Ingresos manuales", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	row("Efectivo", sesion.TotalIngresosEfectivo)
	row("Transferencia", sesion.TotalIngresosTransferencia)

	pdf.Ln(3)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(2)

	// ── Reconciliation ───────────────────────────────────────────────────────
	esperado := sesion.MontoInicial.
		Add(derefMonto(sesion.TotalVentasEfectivo)).
		Add(derefMonto(sesion.TotalIngresosEfectivo)).
		Sub(derefMonto(sesion.TotalRetirosEfectivo))

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(col1, 5, "Monto inicial:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "$"+sesion.MontoInicial.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(col1, 5, "Efectivo esperado:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "$"+esperado.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Efectivo contado:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "$"+derefMonto(sesion.MontoContado).StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(col1, 5, "Desvío:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "$"+derefMonto(sesion.DesvioCierre).StringFixed(2), "", 1, "R", false, 0, "")

	clasificacion := ""
	if sesion.Clasificacion != nil {
		clasificacion = *sesion.Clasificacion
	}
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 7, "Resultado: "+clasificacion, "", 1, "C", false, 0, "")

	// ── Counted bills ────────────────────────────────────────────────────────
	if len(sesion.DesgloseCierre) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(contentW, 4, "Desglose contado:", "", 1, "L", false, 0, "")
		for valor, cantidad := range sesion.DesgloseCierre {
			pdf.CellFormat(contentW, 4, fmt.Sprintf("  $%s x %d", valor, cantidad), "", 1, "L", false, 0, "")
		}
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}

func derefMonto(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
