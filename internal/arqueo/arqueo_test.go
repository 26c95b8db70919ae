package arqueo

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEfectivoEsperado(t *testing.T) {
	r := Resumen{
		MontoInicial: dec("10000"),
		Ventas:       TotalesVentas{Efectivo: dec("3500"), Debito: dec("9000")},
		Retiros:      TotalesMovimiento{Efectivo: dec("1000"), Transferencia: dec("700")},
		Ingresos:     TotalesMovimiento{Efectivo: dec("0")},
	}
	// Only cash flows count: 10000 + 3500 - 1000. Card sales and
	// transfer withdrawals never touch the drawer.
	assert.True(t, r.EfectivoEsperado().Equal(dec("12500")),
		"got %s", r.EfectivoEsperado())
}

func TestEfectivoEsperadoSinMovimientos(t *testing.T) {
	r := Resumen{MontoInicial: dec("5000")}
	assert.True(t, r.EfectivoEsperado().Equal(dec("5000")))
}

func TestDesvioCierreYClasificacion(t *testing.T) {
	esperado := dec("12500")

	casos := []struct {
		nombre   string
		contado  string
		desvio   string
		esperada string
	}{
		{"exacto", "12500", "0", Cuadrada},
		{"sobra", "12600.50", "100.50", Sobrante},
		{"falta", "12000", "-500", Faltante},
		{"falta por un centavo", "12499.99", "-0.01", Faltante},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			desvio := DesvioCierre(dec(c.contado), esperado)
			assert.True(t, desvio.Equal(dec(c.desvio)), "desvio %s", desvio)
			assert.Equal(t, c.esperada, Clasificar(desvio))
		})
	}
}

func TestDesvioApertura(t *testing.T) {
	anterior := dec("8000")
	d := DesvioApertura(dec("7500"), &anterior)
	require.NotNil(t, d)
	assert.True(t, d.Equal(dec("-500")))

	// First session ever: nothing to compare against.
	assert.Nil(t, DesvioApertura(dec("7500"), nil))
}

func TestTotales(t *testing.T) {
	v := TotalesVentas{
		Efectivo:      dec("100"),
		Transferencia: dec("200"),
		Debito:        dec("300"),
		Credito:       dec("400"),
	}
	assert.True(t, v.Total().Equal(dec("1000")))

	m := TotalesMovimiento{Efectivo: dec("10"), Transferencia: dec("5")}
	assert.True(t, m.Total().Equal(dec("15")))
}

func TestValidarDesglose(t *testing.T) {
	t.Run("suma correcta", func(t *testing.T) {
		desglose := map[string]int{"1000": 3, "500": 2, "100": 5}
		assert.NoError(t, ValidarDesglose(desglose, dec("4500")))
	})

	t.Run("suma incorrecta", func(t *testing.T) {
		desglose := map[string]int{"1000": 3}
		assert.Error(t, ValidarDesglose(desglose, dec("4500")))
	})

	t.Run("vacio siempre valido", func(t *testing.T) {
		assert.NoError(t, ValidarDesglose(nil, dec("4500")))
		assert.NoError(t, ValidarDesglose(map[string]int{}, dec("0")))
	})

	t.Run("centavos", func(t *testing.T) {
		desglose := map[string]int{"0.50": 3}
		assert.NoError(t, ValidarDesglose(desglose, dec("1.50")))
	})

	t.Run("cantidad negativa", func(t *testing.T) {
		assert.Error(t, ValidarDesglose(map[string]int{"1000": -1}, dec("-1000")))
	})

	t.Run("denominacion invalida", func(t *testing.T) {
		assert.Error(t, ValidarDesglose(map[string]int{"abc": 1}, dec("100")))
		assert.Error(t, ValidarDesglose(map[string]int{"-100": 1}, dec("-100")))
	})
}
