// Package cdek implements the shipping carrier port over the CDEK v2 API.
package cdek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const (
	defaultBaseURL = "https://api.cdek.ru"

	// tariffPickupPoint is warehouse to pickup point delivery.
	tariffPickupPoint = 136

	packageWeightGrams = 750
	packageLengthCm    = 26
	packageWidthCm     = 19
	packageHeightCm    = 8

	// tokenSafetyMargin renews the OAuth token before it actually expires.
	tokenSafetyMargin = time.Minute
)

// Client calls the CDEK order API. Access tokens are fetched lazily and
// cached until close to expiry.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	account       string
	password      string
	senderCompany string
	senderName    string
	senderPhone   string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a carrier client for the given API credentials.
func NewClient(account, password string) (*Client, error) {
	if account == "" {
		return nil, errs.NewValueIsRequiredError("account")
	}
	if password == "" {
		return nil, errs.NewValueIsRequiredError("password")
	}

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		account:    account,
		password:   password,
	}, nil
}

// WithBaseURL overrides the API endpoint, used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// WithSender sets the sender requisites stamped on every shipment.
func (c *Client) WithSender(company, name, phone string) *Client {
	c.senderCompany = company
	c.senderName = name
	c.senderPhone = phone
	return c
}

type phoneBody struct {
	Number string `json:"number"`
}

type locationBody struct {
	Code string `json:"code,omitempty"`
}

type moneyBody struct {
	Value int64 `json:"value"`
}

type itemBody struct {
	Name    string    `json:"name"`
	WareKey string    `json:"ware_key"`
	Payment moneyBody `json:"payment"`
	Cost    int64     `json:"cost"`
	Weight  int       `json:"weight"`
	Amount  int       `json:"amount"`
}

type packageBody struct {
	Number string     `json:"number"`
	Weight int        `json:"weight"`
	Length int        `json:"length"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Items  []itemBody `json:"items"`
}

type partyBody struct {
	Company string      `json:"company,omitempty"`
	Name    string      `json:"name"`
	Phones  []phoneBody `json:"phones"`
}

type serviceBody struct {
	Code      string `json:"code"`
	Parameter string `json:"parameter,omitempty"`
}

type createOrderBody struct {
	Type                  int           `json:"type"`
	Number                string        `json:"number"`
	TariffCode            int           `json:"tariff_code"`
	ShipmentPoint         string        `json:"shipment_point"`
	DeliveryRecipientCost moneyBody     `json:"delivery_recipient_cost"`
	ToLocation            locationBody  `json:"to_location,omitempty"`
	Sender                partyBody     `json:"sender"`
	Recipient             partyBody     `json:"recipient"`
	Packages              []packageBody `json:"packages"`
	Services              []serviceBody `json:"services"`
}

type entityBody struct {
	UUID       string `json:"uuid"`
	Number     string `json:"number"`
	CdekNumber string `json:"cdek_number"`
	Statuses   []struct {
		Code string `json:"code"`
	} `json:"statuses"`
}

type orderResponse struct {
	Entity entityBody `json:"entity"`
}

// CreateShipment registers a parcel with the carrier and returns its
// internal entity id. The call is not idempotent at the carrier, which is
// why callers persist intent before invoking it.
func (c *Client) CreateShipment(ctx context.Context,
	snapshot shipment.Snapshot) (ports.CarrierShipment, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return ports.CarrierShipment{}, err
	}

	declaredRubles := int64(snapshot.DeclaredValue) / 100
	body := createOrderBody{
		Type:                  2,
		Number:                snapshot.Number,
		TariffCode:            tariffPickupPoint,
		ShipmentPoint:         snapshot.ShipmentPoint,
		DeliveryRecipientCost: moneyBody{Value: 0},
		Sender: partyBody{
			Company: c.senderCompany,
			Name:    c.senderName,
			Phones:  []phoneBody{{Number: c.senderPhone}},
		},
		Recipient: partyBody{
			Name:   snapshot.RecipientName,
			Phones: []phoneBody{{Number: normalizePhone(snapshot.RecipientPhone)}},
		},
		Packages: []packageBody{{
			Number: snapshot.Number,
			Weight: packageWeightGrams,
			Length: packageLengthCm,
			Width:  packageWidthCm,
			Height: packageHeightCm,
			Items: []itemBody{{
				Name:    "Order " + snapshot.OrderID.String(),
				WareKey: snapshot.Number,
				Payment: moneyBody{Value: 0},
				Cost:    declaredRubles,
				Weight:  packageWeightGrams,
				Amount:  1,
			}},
		}},
		Services: []serviceBody{{
			Code:      "INSURANCE",
			Parameter: fmt.Sprintf("%d", declaredRubles),
		}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return ports.CarrierShipment{}, errs.NewCarrierError("create shipment", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/orders", bytes.NewReader(payload))
	if err != nil {
		return ports.CarrierShipment{}, errs.NewCarrierError("create shipment", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	var response orderResponse
	if err := c.do(req, &response); err != nil {
		return ports.CarrierShipment{}, errs.NewCarrierError("create shipment", err)
	}
	if response.Entity.UUID == "" {
		return ports.CarrierShipment{}, errs.NewCarrierError("create shipment",
			fmt.Errorf("response has no entity uuid"))
	}

	return ports.CarrierShipment{EntityUUID: response.Entity.UUID}, nil
}

// GetShipment fetches the carrier's current view of a shipment: the real
// track number once assigned and the latest status code.
func (c *Client) GetShipment(ctx context.Context,
	entityUUID string) (ports.CarrierTracking, error) {
	if entityUUID == "" {
		return ports.CarrierTracking{}, errs.NewValueIsRequiredError("entityUuid")
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return ports.CarrierTracking{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v2/orders/"+entityUUID, nil)
	if err != nil {
		return ports.CarrierTracking{}, errs.NewCarrierError("get shipment", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var response orderResponse
	if err := c.do(req, &response); err != nil {
		return ports.CarrierTracking{}, errs.NewCarrierError("get shipment", err)
	}

	track := response.Entity.CdekNumber
	if track == "" {
		track = response.Entity.Number
	}

	var statusCode string
	if len(response.Entity.Statuses) > 0 {
		// Statuses come back newest first.
		statusCode = response.Entity.Statuses[0].Code
	}

	return ports.CarrierTracking{TrackNumber: track, StatusCode: statusCode}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// accessToken returns a cached OAuth token, fetching a fresh one when the
// cached token is missing or close to expiry.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-tokenSafetyMargin)) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.account)
	form.Set("client_secret", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", errs.NewCarrierError("oauth token", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var response tokenResponse
	if err := c.do(req, &response); err != nil {
		return "", errs.NewCarrierError("oauth token", err)
	}
	if response.AccessToken == "" {
		return "", errs.NewCarrierError("oauth token",
			fmt.Errorf("response has no access token"))
	}

	c.token = response.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(response.ExpiresIn) * time.Second)
	return c.token, nil
}

// normalizePhone strips the separators the carrier API refuses.
func normalizePhone(phone string) string {
	replacer := strings.NewReplacer("+", "", " ", "", "-", "")
	return replacer.Replace(phone)
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
