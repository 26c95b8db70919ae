// Package arqueo holds the pure reconciliation arithmetic for a cash session:
// expected cash in drawer, opening/closing variance and its classification,
// and denomination-breakdown validation. Everything here is stateless so the
// figures are reproducible from any session snapshot.
package arqueo

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Clasificacion of a closing variance. Exact comparison at two decimals —
// no tolerance is applied.
const (
	Cuadrada = "cuadrada" // variance == 0
	Sobrante = "sobrante" // variance > 0
	Faltante = "faltante" // variance < 0
)

// TotalesVentas are per-payment-method sale subtotals. All four are exposed
// independently for audit display, never only the cash aggregate.
type TotalesVentas struct {
	Efectivo      decimal.Decimal `json:"efectivo"`
	Transferencia decimal.Decimal `json:"transferencia"`
	Debito        decimal.Decimal `json:"debito"`
	Credito       decimal.Decimal `json:"credito"`
}

func (t TotalesVentas) Total() decimal.Decimal {
	return t.Efectivo.Add(t.Transferencia).Add(t.Debito).Add(t.Credito)
}

// TotalesMovimiento are per-method subtotals for retiros or ingresos
// manuales, which only accept efectivo | transferencia.
type TotalesMovimiento struct {
	Efectivo      decimal.Decimal `json:"efectivo"`
	Transferencia decimal.Decimal `json:"transferencia"`
}

func (t TotalesMovimiento) Total() decimal.Decimal {
	return t.Efectivo.Add(t.Transferencia)
}

// Resumen is the live snapshot of the open session's ledger. It is derived,
// never persisted while the session is open.
type Resumen struct {
	SesionID     uuid.UUID       `json:"sesion_id"`
	MontoInicial decimal.Decimal `json:"monto_inicial"`

	Ventas   TotalesVentas     `json:"ventas"`
	Retiros  TotalesMovimiento `json:"retiros"`
	Ingresos TotalesMovimiento `json:"ingresos"`

	// Cerrada is true when no session is open; all subtotals are zero.
	Cerrada bool `json:"cerrada"`
	// Desactualizado signals that a stream reload failed and the figures
	// shown are the last successfully computed ones.
	Desactualizado bool `json:"desactualizado"`
}

// EfectivoEsperado is the cash that should be in the drawer:
// opening amount + cash sales + cash manual income − cash withdrawals.
func (r Resumen) EfectivoEsperado() decimal.Decimal {
	return r.MontoInicial.
		Add(r.Ventas.Efectivo).
		Add(r.Ingresos.Efectivo).
		Sub(r.Retiros.Efectivo)
}

// DesvioApertura compares the declared opening amount against the previous
// session's counted close. Nil when there is no prior session.
func DesvioApertura(apertura decimal.Decimal, cierreAnterior *decimal.Decimal) *decimal.Decimal {
	if cierreAnterior == nil {
		return nil
	}
	d := apertura.Sub(*cierreAnterior)
	return &d
}

// DesvioCierre is countedAmount − expectedCash.
func DesvioCierre(contado, esperado decimal.Decimal) decimal.Decimal {
	return contado.Sub(esperado)
}

// Clasificar maps a variance to cuadrada | sobrante | faltante.
func Clasificar(desvio decimal.Decimal) string {
	switch {
	case desvio.IsZero():
		return Cuadrada
	case desvio.IsPositive():
		return Sobrante
	default:
		return Faltante
	}
}

// ValidarDesglose checks that a bill-count breakdown sums exactly to the
// declared total. Keys are face values ("1000", "500", "0.50" allowed).
func ValidarDesglose(desglose map[string]int, total decimal.Decimal) error {
	if len(desglose) == 0 {
		return nil
	}
	suma := decimal.Zero
	for valor, cantidad := range desglose {
		if cantidad < 0 {
			return fmt.Errorf("desglose: cantidad negativa para denominación %s", valor)
		}
		cara, err := decimal.NewFromString(valor)
		if err != nil || !cara.IsPositive() {
			return fmt.Errorf("desglose: denominación inválida %q", valor)
		}
		suma = suma.Add(cara.Mul(decimal.NewFromInt(int64(cantidad))))
	}
	if !suma.Equal(total) {
		return fmt.Errorf("desglose: la suma %s no coincide con el total declarado %s", suma, total)
	}
	return nil
}
