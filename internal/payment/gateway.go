package payment

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"natours/internal/errors"
)

// Currency charged for every tour.
const Currency = "usd"

// CheckoutRequest describes one tour purchase.
type CheckoutRequest struct {
	TourID        string
	TourName      string
	TourSummary   string
	ImageURL      string
	Price         decimal.Decimal
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the provider-hosted page the client is redirected to.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutGateway creates hosted checkout sessions.
type CheckoutGateway interface {
	CreateSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

// sessionCreator is the part of the Stripe client the gateway needs.
type sessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeGateway creates Stripe Checkout sessions.
type StripeGateway struct {
	sessions sessionCreator
}

// NewStripeGateway builds a gateway authenticated with secretKey.
func NewStripeGateway(secretKey string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{sessions: sc.CheckoutSessions}
}

func (g *StripeGateway) CreateSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := checkoutParams(req)
	params.Context = ctx

	s, err := g.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrPaymentUnavailable, err)
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func checkoutParams(req CheckoutRequest) *stripe.CheckoutSessionParams {
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(req.TourName + " Tour"),
	}
	if req.TourSummary != "" {
		product.Description = stripe.String(req.TourSummary)
	}
	if req.ImageURL != "" {
		product.Images = stripe.StringSlice([]string{req.ImageURL})
	}

	return &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		CustomerEmail:      stripe.String(req.CustomerEmail),
		ClientReferenceID:  stripe.String(req.TourID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(Currency),
					UnitAmount:  stripe.Int64(toCents(req.Price)),
					ProductData: product,
				},
			},
		},
	}
}

func toCents(price decimal.Decimal) int64 {
	return price.Shift(2).Round(0).IntPart()
}

// DisabledGateway is used when no payment provider is configured.
type DisabledGateway struct{}

func (DisabledGateway) CreateSession(context.Context, CheckoutRequest) (*CheckoutSession, error) {
	return nil, errors.ErrPaymentUnavailable
}
