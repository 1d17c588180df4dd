// Package yookassa implements the payment gateway port over the YooKassa
// REST API. Every intent creation carries an idempotence key, so a retried
// HTTP call returns the already created payment instead of charging twice.
package yookassa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const defaultBaseURL = "https://api.yookassa.ru"

// Client calls the YooKassa payments API with shop credentials.
type Client struct {
	httpClient *http.Client
	baseURL    string
	shopID     string
	secretKey  string
}

// NewClient creates a gateway client for the given shop credentials.
func NewClient(shopID, secretKey string) (*Client, error) {
	if shopID == "" {
		return nil, errs.NewValueIsRequiredError("shopId")
	}
	if secretKey == "" {
		return nil, errs.NewValueIsRequiredError("secretKey")
	}

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		shopID:     shopID,
		secretKey:  secretKey,
	}, nil
}

// WithBaseURL overrides the API endpoint, used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

type amountBody struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type confirmationBody struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type createPaymentBody struct {
	Amount       amountBody        `json:"amount"`
	Capture      bool              `json:"capture"`
	Confirmation confirmationBody  `json:"confirmation"`
	Description  string            `json:"description"`
	Metadata     map[string]string `json:"metadata"`
}

type paymentResponse struct {
	ID           string           `json:"id"`
	Status       string           `json:"status"`
	Confirmation confirmationBody `json:"confirmation"`
}

// CreateIntent opens a payment at the gateway and returns its identifiers.
func (c *Client) CreateIntent(ctx context.Context,
	request ports.IntentRequest) (ports.Intent, error) {
	body := createPaymentBody{
		Amount:  amountBody{Value: request.Amount.Rubles(), Currency: "RUB"},
		Capture: true,
		Confirmation: confirmationBody{
			Type:      "redirect",
			ReturnURL: request.ReturnURL,
		},
		Description: request.Description,
		Metadata: map[string]string{
			"order_id":     request.OrderID,
			"payment_kind": request.PaymentKind,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return ports.Intent{}, errs.NewGatewayError("create intent", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v3/payments", bytes.NewReader(payload))
	if err != nil {
		return ports.Intent{}, errs.NewGatewayError("create intent", err)
	}
	req.SetBasicAuth(c.shopID, c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", request.IdempotenceKey)

	var response paymentResponse
	if err := c.do(req, &response); err != nil {
		return ports.Intent{}, errs.NewGatewayError("create intent", err)
	}
	if response.ID == "" {
		return ports.Intent{}, errs.NewGatewayError("create intent",
			fmt.Errorf("response has no payment id"))
	}

	return ports.Intent{
		GatewayID:       response.ID,
		ConfirmationURL: response.Confirmation.ConfirmationURL,
	}, nil
}

// QueryStatus fetches the current status of a payment by its gateway id.
func (c *Client) QueryStatus(ctx context.Context,
	gatewayID string) (payment.GatewayStatus, error) {
	if gatewayID == "" {
		return "", errs.NewValueIsRequiredError("gatewayId")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v3/payments/"+gatewayID, nil)
	if err != nil {
		return "", errs.NewGatewayError("query status", err)
	}
	req.SetBasicAuth(c.shopID, c.secretKey)

	var response paymentResponse
	if err := c.do(req, &response); err != nil {
		return "", errs.NewGatewayError("query status", err)
	}

	return mapGatewayStatus(response.Status)
}

// mapGatewayStatus translates YooKassa statuses into domain ones.
// waiting_for_capture still resolves on the gateway side, so it counts
// as pending here.
func mapGatewayStatus(status string) (payment.GatewayStatus, error) {
	switch status {
	case "pending", "waiting_for_capture":
		return payment.GatewayStatusPending, nil
	case "succeeded":
		return payment.GatewayStatusSucceeded, nil
	case "canceled":
		return payment.GatewayStatusCanceled, nil
	default:
		return "", errs.NewGatewayError("query status",
			fmt.Errorf("unknown payment status %q", status))
	}
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
