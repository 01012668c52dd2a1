package razorpay

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"academy-app/internal/services/payments"
)

const DefaultBaseURL = "https://api.razorpay.com/v1"

// Client creates orders through the Razorpay REST API.
type Client struct {
	http *resty.Client
}

type orderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
		Field       string `json:"field"`
	} `json:"error"`
}

func NewClient(baseURL, keyID, keySecret string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetBasicAuth(keyID, keySecret).
		SetTimeout(15*time.Second).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(0)

	return &Client{http: httpClient}
}

func (c *Client) CreateOrder(ctx context.Context, req payments.GatewayOrderRequest) (payments.GatewayOrder, error) {
	var (
		out    orderResponse
		apiErr errorResponse
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(orderRequest{
			Amount:   req.Amount,
			Currency: req.Currency,
			Receipt:  req.Receipt,
			Notes:    req.Notes,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/orders")
	if err != nil {
		return payments.GatewayOrder{}, &payments.GatewayError{Err: fmt.Errorf("razorpay create order: %w", err)}
	}

	if resp.IsError() {
		desc := apiErr.Error.Description
		if desc == "" {
			desc = fmt.Sprintf("razorpay returned %s", resp.Status())
		}
		return payments.GatewayOrder{}, &payments.GatewayError{
			StatusCode:  resp.StatusCode(),
			Code:        apiErr.Error.Code,
			Description: desc,
		}
	}

	if out.ID == "" {
		return payments.GatewayOrder{}, &payments.GatewayError{
			StatusCode:  http.StatusBadGateway,
			Description: "razorpay returned an order without id",
		}
	}

	return payments.GatewayOrder{
		ID:       out.ID,
		Amount:   out.Amount,
		Currency: out.Currency,
	}, nil
}
