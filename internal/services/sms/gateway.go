package sms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/circuitbreaker"
	"github.com/redis/go-redis/v9"
)

var ErrGatewayUnavailable = errors.New("sms gateway is unavailable")

// Gateway sends messages through the external SMS provider.
type Gateway interface {
	Send(ctx context.Context, phone, sender, body string) error
}

type sendRequest struct {
	To     string `json:"to"`
	From   string `json:"from,omitempty"`
	Body   string `json:"body"`
}

type sendResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

// HTTPGateway talks to the provider's REST API. A Redis-backed circuit
// breaker keeps a flapping provider from stalling every status change.
type HTTPGateway struct {
	client  *services.Client
	apiKey  string
	breaker *circuitbreaker.CircuitBreaker
}

func NewHTTPGateway(cfg *models.SmsGatewayConfig, redisClient *redis.Client) *HTTPGateway {
	clientConfig := services.DefaultClientConfig(cfg.BaseURL)
	if cfg.TimeoutSec > 0 {
		clientConfig.Timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}

	var breaker *circuitbreaker.CircuitBreaker
	if redisClient != nil {
		breaker = circuitbreaker.New(redisClient, "sms_gateway")
	}

	return &HTTPGateway{
		client:  services.NewClientWithConfig(clientConfig),
		apiKey:  cfg.APIKey,
		breaker: breaker,
	}
}

func (g *HTTPGateway) Send(ctx context.Context, phone, sender, body string) error {
	if g.breaker != nil && !g.breaker.CanExecute() {
		return ErrGatewayUnavailable
	}

	req := &sendRequest{To: phone, From: sender, Body: body}
	var resp sendResponse
	err := g.client.Post("/messages", req, &resp, &services.RequestOptions{
		Context: ctx,
		Headers: map[string]string{"Authorization": "Bearer " + g.apiKey},
		Retries: 1,
	})
	if err != nil {
		if g.breaker != nil {
			g.breaker.RecordFailure()
		}
		return fmt.Errorf("sms send failed: %w", err)
	}

	if g.breaker != nil {
		g.breaker.RecordSuccess()
	}
	return nil
}
