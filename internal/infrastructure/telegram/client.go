package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/storefront-api/internal/application/notification"
)

// Verificar en tiempo de compilación que Client implementa notification.Sender.
var _ notification.Sender = (*Client)(nil)

// Client adaptador de la Bot API de Telegram (sendMessage).
// Usa net/http de la librería estándar; el payload ya llega serializado desde la pasarela.
type Client struct {
	baseURL    string
	botToken   string
	httpClient *http.Client
}

// NewClient construye el adaptador. baseURL suele ser "https://api.telegram.org".
func NewClient(baseURL, botToken string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		botToken: botToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Send publica el sobre {chat_id, text, parse_mode}. Cualquier respuesta que no sea ok=true es error.
func (c *Client) Send(ctx context.Context, payload []byte) error {
	if c.botToken == "" {
		return fmt.Errorf("telegram: TELEGRAM_BOT_TOKEN no configurado")
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.botToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("telegram: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("telegram: timeout o cancelación: %w", ctx.Err())
		}
		// El error de url incluye el token; se reporta solo la causa.
		return fmt.Errorf("telegram: llamada HTTP fallida: %s", redact(err.Error(), c.botToken))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16*1024))
	if err != nil {
		return fmt.Errorf("telegram: leer respuesta: %w", err)
	}

	var body apiResponse
	if jsonErr := json.Unmarshal(raw, &body); jsonErr == nil && body.OK && resp.StatusCode == http.StatusOK {
		return nil
	}
	if body.Description != "" {
		return fmt.Errorf("telegram: HTTP %d: %s", resp.StatusCode, body.Description)
	}
	return fmt.Errorf("telegram: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "***")
}
