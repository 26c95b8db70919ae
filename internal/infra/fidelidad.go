package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// FidelidadPayload is sent by the worker pool to the loyalty service after a
// sale with an identified customer settles.
type FidelidadPayload struct {
	VentaID   string `json:"venta_id"`
	ClienteID string `json:"cliente_id"`
	Monto     string `json:"monto"`
	Ticket    string `json:"ticket"`
}

// FidelidadResponse is returned by the loyalty service.
type FidelidadResponse struct {
	PuntosOtorgados int    `json:"puntos_otorgados"`
	SaldoPuntos     int    `json:"saldo_puntos"`
	Resultado       string `json:"resultado"` // "ok" | "rechazado"
}

// FidelidadClient is an HTTP client for the external loyalty service. Accrual
// runs async in the worker pool, so an outage here never blocks a sale.
type FidelidadClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewFidelidadClient(baseURL, token string) *FidelidadClient {
	return &FidelidadClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Acreditar posts the sale to the loyalty service and returns the accrual
// result.
func (c *FidelidadClient) Acreditar(ctx context.Context, payload FidelidadPayload) (*FidelidadResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("fidelidad: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/puntos", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("fidelidad: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fidelidad: service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fidelidad: service returned %d", resp.StatusCode)
	}

	var result FidelidadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("fidelidad: decode response: %w", err)
	}
	return &result, nil
}
