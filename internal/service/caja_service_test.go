package service

import (
	"context"
	"testing"
	"time"

	"lavanderia/internal/aggregator"
	"lavanderia/internal/arqueo"
	"lavanderia/internal/dto"
	"lavanderia/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCajaFixture() (CajaService, *fakeCajaRepo, *fakeMovimientoRepo, *fakePendienteRepo, *fakeNotificador) {
	cajaRepo := &fakeCajaRepo{}
	movRepo := &fakeMovimientoRepo{}
	pendRepo := newFakePendienteRepo()
	notif := &fakeNotificador{}
	svc := NewCajaService(cajaRepo, movRepo, pendRepo, notif, "")
	return svc, cajaRepo, movRepo, pendRepo, notif
}

func TestAbrirCaja(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, notif := newCajaFixture()

	resp, err := svc.Abrir(ctx, uuid.New(), dto.AbrirCajaRequest{MontoInicial: dec("10000")})
	require.NoError(t, err)
	assert.Equal(t, "abierta", resp.Estado)
	assert.True(t, resp.MontoInicial.Equal(dec("10000")))
	assert.Nil(t, resp.DesvioApertura, "first session has no prior close to compare against")
	assert.Contains(t, notif.publicados(), aggregator.CanalSesion)
}

func TestAbrirCajaMontoNegativo(t *testing.T) {
	svc, _, _, _, _ := newCajaFixture()

	_, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{MontoInicial: dec("-1")})
	assert.ErrorIs(t, err, ErrMontoInvalido)
}

func TestAbrirCajaYaAbierta(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, _ := newCajaFixture()

	_, err := svc.Abrir(ctx, uuid.New(), dto.AbrirCajaRequest{MontoInicial: dec("1000")})
	require.NoError(t, err)

	_, err = svc.Abrir(ctx, uuid.New(), dto.AbrirCajaRequest{MontoInicial: dec("2000")})
	assert.ErrorIs(t, err, ErrCajaYaAbierta)
}

func TestAbrirCajaDesgloseInconsistente(t *testing.T) {
	svc, _, _, _, _ := newCajaFixture()

	_, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{
		MontoInicial: dec("1000"),
		Desglose:     model.Desglose{"500": 1}, // suma 500, declara 1000
	})
	assert.Error(t, err)
}

func TestAbrirCajaCalculaDesvioApertura(t *testing.T) {
	ctx := context.Background()
	svc, cajaRepo, _, _, _ := newCajaFixture()

	contado := dec("12000")
	ahora := time.Now()
	cajaRepo.cerradas = []model.SesionCaja{{
		ID:           uuid.New(),
		MontoInicial: dec("10000"),
		MontoContado: &contado,
		ClosedAt:     &ahora,
	}}

	// Declares 11.500 against yesterday's counted 12.000: drawer short 500.
	resp, err := svc.Abrir(ctx, uuid.New(), dto.AbrirCajaRequest{MontoInicial: dec("11500")})
	require.NoError(t, err)
	require.NotNil(t, resp.DesvioApertura)
	assert.True(t, resp.DesvioApertura.Equal(dec("-500")))
}

func TestCerrarCajaSinSesion(t *testing.T) {
	svc, _, _, _, _ := newCajaFixture()

	_, err := svc.Cerrar(context.Background(), dto.CerrarCajaRequest{MontoContado: dec("100")})
	assert.ErrorIs(t, err, ErrCajaCerrada)
}

func TestCerrarCajaCalculaArqueo(t *testing.T) {
	ctx := context.Background()
	svc, cajaRepo, movRepo, _, _ := newCajaFixture()

	_, err := svc.Abrir(ctx, uuid.New(), dto.AbrirCajaRequest{MontoInicial: dec("10000")})
	require.NoError(t, err)
	sesionID := cajaRepo.abierta.ID

	movRepo.ventas = []model.Venta{
		{ID: uuid.New(), SesionCajaID: sesionID, MetodoPago: model.MetodoEfectivo, Monto: dec("3500")},
		{ID: uuid.New(), SesionCajaID: sesionID, MetodoPago: model.MetodoDebito, Monto: dec("9000")},
	}
	movRepo.retiros = []model.Retiro{
		{ID: uuid.New(), SesionCajaID: sesionID, MetodoPago: model.MetodoEfectivo, Monto: dec("1000")},
	}
	movRepo.ingresos = []model.IngresoManual{
		{ID: uuid.New(), SesionCajaID: sesionID, MetodoPago: model.MetodoEfectivo, Monto: dec("200")},
	}

	// esperado = 10000 + 3500 + 200 − 1000 = 12700; contado 12600 → faltante.
	resp, err := svc.Cerrar(ctx, dto.CerrarCajaRequest{MontoContado: dec("12600")})
	require.NoError(t, err)

	assert.Equal(t, "cerrada", resp.Estado)
	require.NotNil(t, resp.EfectivoEsperado)
	assert.True(t, resp.EfectivoEsperado.Equal(dec("12700")))
	require.NotNil(t, resp.DesvioCierre)
	assert.True(t, resp.DesvioCierre.Equal(dec("-100")))
	require.NotNil(t, resp.Clasificacion)
	assert.Equal(t, arqueo.Faltante, *resp.Clasificacion)

	require.NotNil(t, resp.Totales)
	assert.True(t, resp.Totales.Ventas.Efectivo.Equal(dec("3500")))
	assert.True(t, resp.Totales.Ventas.Debito.Equal(dec("9000")))
	assert.True(t, resp.Totales.Retiros.Efectivo.Equal(dec("1000")))
	assert.True(t, resp.Totales.Ingresos.Efectivo.Equal(dec("200")))

	// Figures are denormalized onto the closed row.
	require.Len(t, cajaRepo.cerradas, 1)
	cerrada := cajaRepo.cerradas[0]
	assert.NotNil(t, cerrada.ClosedAt)
	assert.True(t, cerrada.TotalVentasEfectivo.Equal(dec("3500")))

	// The drawer is closed: a second close has nothing to act on.
	_, err = svc.Cerrar(ctx, dto.CerrarCajaRequest{MontoContado: dec("12600")})
	assert.ErrorIs(t, err, ErrCajaCerrada)
}

func TestCerrarCajaCuadrada(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, _ := newCajaFixture()

	_, err := svc.Abrir(ctx, uuid.New(), dto.AbrirCajaRequest{MontoInicial: dec("5000")})
	require.NoError(t, err)

	resp, err := svc.Cerrar(ctx, dto.CerrarCajaRequest{MontoContado: dec("5000")})
	require.NoError(t, err)
	require.NotNil(t, resp.Clasificacion)
	assert.Equal(t, arqueo.Cuadrada, *resp.Clasificacion)
	assert.True(t, resp.DesvioCierre.IsZero())
}

func TestSolicitarCierreCuentaPendientes(t *testing.T) {
	ctx := context.Background()
	svc, _, _, pendRepo, _ := newCajaFixture()

	_, err := svc.Abrir(ctx, uuid.New(), dto.AbrirCajaRequest{MontoInicial: dec("1000")})
	require.NoError(t, err)

	require.NoError(t, pendRepo.CreateTx(nil, &model.VentaPendiente{NumeroTicket: "000001", Monto: dec("300")}))
	require.NoError(t, pendRepo.CreateTx(nil, &model.VentaPendiente{NumeroTicket: "000002", Monto: dec("150")}))

	resp, err := svc.SolicitarCierre(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, resp.PendientesDeCobro)
}

func TestHistorialYReporte(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, _ := newCajaFixture()

	_, err := svc.Abrir(ctx, uuid.New(), dto.AbrirCajaRequest{MontoInicial: dec("2000")})
	require.NoError(t, err)
	cerrada, err := svc.Cerrar(ctx, dto.CerrarCajaRequest{MontoContado: dec("2000")})
	require.NoError(t, err)

	hist, err := svc.Historial(ctx, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, hist.Total)
	require.Len(t, hist.Data, 1)
	assert.Equal(t, cerrada.ID, hist.Data[0].ID)

	id, err := uuid.Parse(cerrada.ID)
	require.NoError(t, err)
	rep, err := svc.Reporte(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "cerrada", rep.Estado)
	require.NotNil(t, rep.EfectivoEsperado)
	assert.True(t, rep.EfectivoEsperado.Equal(dec("2000")))

	_, err = svc.Reporte(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrRegistroNoEncontrado)
}
