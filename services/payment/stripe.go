package payment

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeConfig holds the Checkout settings.
type StripeConfig struct {
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// CheckoutCreator creates a Checkout Session; session.New in production.
type CheckoutCreator func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)

type StripeGateway struct {
	cfg    StripeConfig
	create CheckoutCreator
}

func NewStripeGateway(cfg StripeConfig, create CheckoutCreator) *StripeGateway {
	if create == nil {
		create = session.New
	}
	return &StripeGateway{cfg: cfg, create: create}
}

// Checkout opens a hosted payment page for one booking.
func (g *StripeGateway) Checkout(bookingID, description string, amount int64) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.cfg.SuccessURL + "?bookingId=" + bookingID),
		CancelURL:         stripe.String(g.cfg.CancelURL + "?bookingId=" + bookingID),
		ClientReferenceID: stripe.String(bookingID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					// VND is a zero-decimal currency for Stripe.
					Currency:   stripe.String(string(stripe.CurrencyVND)),
					UnitAmount: stripe.Int64(amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("booking_id", bookingID)

	cs, err := g.create(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return cs, nil
}

// CompletedCheckout verifies a webhook delivery and, for a paid
// checkout.session.completed event, returns the session. Other events yield nil.
func (g *StripeGateway) CompletedCheckout(payload []byte, signature string) (*stripe.CheckoutSession, error) {
	if g.cfg.WebhookSecret == "" {
		return nil, errors.New("stripe webhook secret is not configured")
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("invalid stripe signature: %w", err)
	}
	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return nil, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	if cs.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, nil
	}
	return &cs, nil
}
