//go:build integration

package e2e

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lavanderia/internal/aggregator"
	"lavanderia/internal/config"
	"lavanderia/internal/infra"
	"lavanderia/internal/repository"
	"lavanderia/internal/router"
	"lavanderia/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
	engine *gin.Engine
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("lavanderia_test"),
		tcPostgres.WithUsername("lavanderia"),
		tcPostgres.WithPassword("lavanderia"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		FidelidadURL:       "http://localhost:9999", // unused here
		WorkerPoolSize:     1,
		PDFStoragePath:     t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed the admin operator.
	hash, err := bcrypt.GenerateFromPassword([]byte("lavanderia2026"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, db.Exec(`INSERT INTO usuarios (id, username, nombre, password_hash, rol, activo, created_at)
		VALUES (gen_random_uuid(), 'admin.e2e', 'Admin E2E', ?, 'administrador', true, NOW())
		ON CONFLICT DO NOTHING`, string(hash)).Error)

	// Aggregator + listener, wired the same way cmd/server does it.
	cajaRepo := repository.NewCajaRepository(db)
	movRepo := repository.NewMovimientoRepository(db)
	agg := aggregator.New(movRepo)
	agg.CambiarSesion(ctx, nil)
	listenerCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)
	go aggregator.Escuchar(listenerCtx, rdb, agg, cajaRepo)

	dispatcher := worker.NewDispatcher(rdb)

	r := router.New(cfg, db, rdb, agg, dispatcher)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin.e2e", "password": "lavanderia2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken, engine: r}
}

func (env *testEnv) crearPrenda(t *testing.T, nombre, precio string) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/prendas",
		jsonBody(t, map[string]any{"nombre": nombre, "precio": precio}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prenda struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prenda)
	return prenda.ID
}

func (env *testEnv) abrirCaja(t *testing.T, montoInicial string) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"monto_inicial": montoInicial}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sesion struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &sesion)
	return sesion.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

// Full day cycle: open drawer, sell, withdraw, live summary, blind close.
func TestE2E_CicloCompletoDeCaja(t *testing.T) {
	env := setupTestEnv(t)

	camisaID := env.crearPrenda(t, "Camisa", "1500")
	env.abrirCaja(t, "10000")

	ventaResp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"metodo_pago": "efectivo",
			"items":       []map[string]any{{"prenda_id": camisaID, "cantidad": 2}},
		}), env.token)
	require.Equal(t, http.StatusCreated, ventaResp.StatusCode)
	var venta struct {
		ID           string `json:"id"`
		NumeroTicket string `json:"numero_ticket"`
		Monto        string `json:"monto"`
	}
	decodeJSON(t, ventaResp, &venta)
	assert.Equal(t, "000001", venta.NumeroTicket)
	assert.Equal(t, "3000", venta.Monto)

	// The note is the one mutable field of a recorded sale.
	notaResp := do(t, env.server, "PATCH", "/v1/ventas/"+venta.ID+"/nota",
		jsonBody(t, map[string]any{"nota": "retira el lunes"}), env.token)
	require.Equal(t, http.StatusNoContent, notaResp.StatusCode)

	retiroResp := do(t, env.server, "POST", "/v1/retiros",
		jsonBody(t, map[string]any{
			"monto":                  "1000",
			"metodo_pago":            "efectivo",
			"categoria_beneficiario": "proveedor",
			"beneficiario":           "Tintorería Sur",
			"motivo":                 "compra de insumos",
		}), env.token)
	require.Equal(t, http.StatusNoContent, retiroResp.StatusCode)

	listaRetiros := do(t, env.server, "GET", "/v1/retiros", nil, env.token)
	require.Equal(t, http.StatusOK, listaRetiros.StatusCode)
	var retiros []struct {
		Monto        string `json:"monto"`
		Beneficiario string `json:"beneficiario"`
	}
	decodeJSON(t, listaRetiros, &retiros)
	require.Len(t, retiros, 1)
	assert.Equal(t, "1000", retiros[0].Monto)
	assert.Equal(t, "Tintorería Sur", retiros[0].Beneficiario)

	// The summary arrives via pub/sub, so poll until the join catches up.
	assert.Eventually(t, func() bool {
		resp := do(t, env.server, "GET", "/v1/caja/resumen", nil, env.token)
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return false
		}
		var resumen struct {
			Ventas struct {
				Efectivo string `json:"efectivo"`
			} `json:"ventas"`
			Retiros struct {
				Efectivo string `json:"efectivo"`
			} `json:"retiros"`
		}
		decodeJSON(t, resp, &resumen)
		return resumen.Ventas.Efectivo == "3000" && resumen.Retiros.Efectivo == "1000"
	}, 10*time.Second, 200*time.Millisecond)

	solicitarResp := do(t, env.server, "POST", "/v1/caja/solicitar-cierre", nil, env.token)
	require.Equal(t, http.StatusOK, solicitarResp.StatusCode)
	var solicitud struct {
		PendientesDeCobro int `json:"pendientes_de_cobro"`
	}
	decodeJSON(t, solicitarResp, &solicitud)
	assert.Zero(t, solicitud.PendientesDeCobro)

	// esperado = 10000 + 3000 − 1000 = 12000; counted 11950 → faltante 50.
	cierreResp := do(t, env.server, "POST", "/v1/caja/cerrar",
		jsonBody(t, map[string]any{"monto_contado": "11950"}), env.token)
	require.Equal(t, http.StatusOK, cierreResp.StatusCode)
	var cierre struct {
		Estado           string `json:"estado"`
		EfectivoEsperado string `json:"efectivo_esperado"`
		DesvioCierre     string `json:"desvio_cierre"`
		Clasificacion    string `json:"clasificacion"`
	}
	decodeJSON(t, cierreResp, &cierre)
	assert.Equal(t, "cerrada", cierre.Estado)
	assert.Equal(t, "12000", cierre.EfectivoEsperado)
	assert.Equal(t, "-50", cierre.DesvioCierre)
	assert.Equal(t, "faltante", cierre.Clasificacion)
}

func TestE2E_UnaSolaCajaAbierta(t *testing.T) {
	env := setupTestEnv(t)

	env.abrirCaja(t, "5000")

	resp := do(t, env.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"monto_inicial": "1000"}), env.token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestE2E_VentaSinCajaAbierta(t *testing.T) {
	env := setupTestEnv(t)

	camisaID := env.crearPrenda(t, "Camisa", "1500")

	resp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"metodo_pago": "efectivo",
			"items":       []map[string]any{{"prenda_id": camisaID, "cantidad": 1}},
		}), env.token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestE2E_RetiroSuperaEfectivo(t *testing.T) {
	env := setupTestEnv(t)

	env.abrirCaja(t, "1000")

	resp := do(t, env.server, "POST", "/v1/retiros",
		jsonBody(t, map[string]any{
			"monto":                  "5000",
			"metodo_pago":            "efectivo",
			"categoria_beneficiario": "empleado",
			"beneficiario":           "Juana Pérez",
			"motivo":                 "adelanto de sueldo",
		}), env.token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// Open tab settles into the current session under its original ticket.
func TestE2E_PendienteCobrado(t *testing.T) {
	env := setupTestEnv(t)

	acolchadoID := env.crearPrenda(t, "Acolchado", "8000")

	// Tab created before any drawer opens.
	pendResp := do(t, env.server, "POST", "/v1/pendientes",
		jsonBody(t, map[string]any{
			"items": []map[string]any{{"prenda_id": acolchadoID, "cantidad": 1}},
			"nota":  "retira el sábado",
		}), env.token)
	require.Equal(t, http.StatusCreated, pendResp.StatusCode)
	var pendiente struct {
		ID           string `json:"id"`
		NumeroTicket string `json:"numero_ticket"`
	}
	decodeJSON(t, pendResp, &pendiente)
	require.Equal(t, "000001", pendiente.NumeroTicket)

	env.abrirCaja(t, "2000")

	cobroResp := do(t, env.server, "POST", "/v1/pendientes/"+pendiente.ID+"/cobrar",
		jsonBody(t, map[string]any{"metodo_pago": "debito"}), env.token)
	require.Equal(t, http.StatusOK, cobroResp.StatusCode)
	var venta struct {
		NumeroTicket string `json:"numero_ticket"`
		MetodoPago   string `json:"metodo_pago"`
		Monto        string `json:"monto"`
	}
	decodeJSON(t, cobroResp, &venta)
	assert.Equal(t, "000001", venta.NumeroTicket)
	assert.Equal(t, "debito", venta.MetodoPago)
	assert.Equal(t, "8000", venta.Monto)

	// Settled tab is gone; a second settle finds nothing.
	again := do(t, env.server, "POST", "/v1/pendientes/"+pendiente.ID+"/cobrar",
		jsonBody(t, map[string]any{"metodo_pago": "efectivo"}), env.token)
	defer again.Body.Close()
	assert.Equal(t, http.StatusNotFound, again.StatusCode)
}

func TestE2E_HistorialYReporte(t *testing.T) {
	env := setupTestEnv(t)

	env.abrirCaja(t, "3000")
	cierreResp := do(t, env.server, "POST", "/v1/caja/cerrar",
		jsonBody(t, map[string]any{"monto_contado": "3000"}), env.token)
	require.Equal(t, http.StatusOK, cierreResp.StatusCode)
	var cierre struct {
		ID            string `json:"id"`
		Clasificacion string `json:"clasificacion"`
	}
	decodeJSON(t, cierreResp, &cierre)
	assert.Equal(t, "cuadrada", cierre.Clasificacion)

	histResp := do(t, env.server, "GET", "/v1/caja/historial", nil, env.token)
	require.Equal(t, http.StatusOK, histResp.StatusCode)
	var hist struct {
		Total int `json:"total"`
	}
	decodeJSON(t, histResp, &hist)
	assert.Equal(t, 1, hist.Total)

	repResp := do(t, env.server, "GET", "/v1/caja/"+cierre.ID+"/reporte", nil, env.token)
	require.Equal(t, http.StatusOK, repResp.StatusCode)
	var reporte struct {
		Estado string `json:"estado"`
	}
	decodeJSON(t, repResp, &reporte)
	assert.Equal(t, "cerrada", reporte.Estado)
}
