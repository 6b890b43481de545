package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/teamtrack/backend/domain"
)

// TelegramConfig configures the Bot API adapter.
type TelegramConfig struct {
	Token   string
	BaseURL string
	Timeout time.Duration
}

// TelegramGateway delivers notifications through the Telegram Bot API.
type TelegramGateway struct {
	cfg    TelegramConfig
	client *fasthttp.Client
}

// NewTelegramGateway builds the adapter with its own HTTP client.
func NewTelegramGateway(cfg TelegramConfig) *TelegramGateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.telegram.org"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &TelegramGateway{
		cfg: cfg,
		client: &fasthttp.Client{
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		},
	}
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (g *TelegramGateway) Notify(ctx context.Context, recipientID int64, text string) error {
	payload, err := json.Marshal(sendMessageRequest{ChatID: recipientID, Text: text})
	if err != nil {
		return domain.WrapError(domain.ErrCodeDelivery, "encode notification", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/bot%s/sendMessage", g.cfg.BaseURL, g.cfg.Token))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	deadline := time.Now().Add(g.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := g.client.DoDeadline(req, resp, deadline); err != nil {
		return domain.WrapError(domain.ErrCodeDelivery, "notification transport failed", err)
	}

	var body sendMessageResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil || !body.OK {
		desc := body.Description
		if desc == "" {
			desc = fmt.Sprintf("status %d", resp.StatusCode())
		}
		return domain.WrapError(domain.ErrCodeDelivery, "notification rejected: "+desc, nil)
	}
	return nil
}
