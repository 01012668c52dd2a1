package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	stripesdk "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"

	"academy-app/internal/services/payments"
)

// Gateway creates Stripe PaymentIntents in place of gateway orders. The
// intent id plays the role of the order id. Order amounts stay in hundredths
// of a major unit and are converted to the currency's Stripe unit.
type Gateway struct {
	api *client.API
}

func NewGateway(secretKey string, backends *stripesdk.Backends) *Gateway {
	return &Gateway{api: client.New(secretKey, backends)}
}

func (g *Gateway) CreateOrder(ctx context.Context, req payments.GatewayOrderRequest) (payments.GatewayOrder, error) {
	params := &stripesdk.PaymentIntentParams{
		Amount:   stripesdk.Int64(toStripeAmount(req.Amount, req.Currency)),
		Currency: stripesdk.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripesdk.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripesdk.Bool(true),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.Receipt)
	params.AddMetadata("receipt", req.Receipt)
	for k, v := range req.Notes {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripesdk.Error
		if errors.As(err, &stripeErr) {
			return payments.GatewayOrder{}, &payments.GatewayError{
				StatusCode:  stripeErr.HTTPStatusCode,
				Code:        string(stripeErr.Code),
				Description: stripeErr.Msg,
				Err:         err,
			}
		}
		return payments.GatewayOrder{}, &payments.GatewayError{Err: fmt.Errorf("stripe create payment intent: %w", err)}
	}

	return payments.GatewayOrder{
		ID:       pi.ID,
		Amount:   fromStripeAmount(pi.Amount, string(pi.Currency)),
		Currency: strings.ToUpper(string(pi.Currency)),
	}, nil
}
