package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"codefriend-store/internal/config"
)

type OrderApprovedMail struct {
	To           string `json:"to"`
	CustomerName string `json:"customer_name"`
	ProductTitle string `json:"product_title"`
	OrderID      string `json:"order_id"`
}

// Mailer is the outbound mail collaborator. Delivery is best-effort; callers
// never treat a send failure as a failure of their own operation.
type Mailer interface {
	SendOrderApproved(ctx context.Context, mail OrderApprovedMail) error
}

type mailClientImpl struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	from       string
}

func NewMailClient(cfg *config.Mail) Mailer {
	return &mailClientImpl{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		from:    cfg.From,
	}
}

func (c *mailClientImpl) SendOrderApproved(ctx context.Context, mail OrderApprovedMail) error {
	payload := map[string]interface{}{
		"from":     c.from,
		"to":       mail.To,
		"template": "order_approved",
		"vars": map[string]string{
			"customer_name": mail.CustomerName,
			"product_title": mail.ProductTitle,
			"order_id":      mail.OrderID,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail send status %d", resp.StatusCode)
	}

	return nil
}
