package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/shukatsu-compass/backend/internal/apperr"
	"github.com/shukatsu-compass/backend/internal/auth"
	"github.com/shukatsu-compass/backend/internal/models"
	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
	"gorm.io/gorm"
)

// BillingService is a thin wrapper around the payments provider. It creates
// checkout sessions for the premium plan and applies subscription state from
// webhook events. Guests cannot subscribe.
type BillingService struct {
	DB            *gorm.DB
	PriceID       string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	enabled       bool
}

func NewBillingService(db *gorm.DB, secretKey, webhookSecret, priceID, successURL, cancelURL string) *BillingService {
	if secretKey == "" {
		log.Println("⚠️  STRIPE_SECRET_KEY not set, billing disabled")
	} else {
		stripe.Key = secretKey
	}
	return &BillingService{
		DB:            db,
		PriceID:       priceID,
		WebhookSecret: webhookSecret,
		SuccessURL:    successURL,
		CancelURL:     cancelURL,
		enabled:       secretKey != "",
	}
}

// CreateCheckout starts a subscription checkout for the calling user and
// returns the hosted payment page URL.
func (s *BillingService) CreateCheckout(ctx context.Context, ident auth.Identity) (string, error) {
	if ident.IsZero() {
		return "", apperr.Unauthorized("authentication required")
	}
	if ident.UserID == nil {
		return "", apperr.Validation("subscriptions require a registered account")
	}
	if !s.enabled {
		return "", apperr.New(apperr.CodeInternal, "billing is not configured")
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(s.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:        stripe.String(s.SuccessURL),
		CancelURL:         stripe.String(s.CancelURL),
		ClientReferenceID: stripe.String(strconv.FormatUint(uint64(*ident.UserID), 10)),
	}
	params.Context = ctx

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeInternal, "creating checkout session", err)
	}
	return sess.URL, nil
}

// HandleWebhook verifies the event signature and applies subscription state.
// Unknown event types are acknowledged and ignored.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.WebhookSecret)
	if err != nil {
		return apperr.Wrap(apperr.CodeValidation, "invalid webhook signature", err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return apperr.Wrap(apperr.CodeValidation, "malformed checkout event", err)
		}
		return s.activateSubscription(ctx, &sess)
	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return apperr.Wrap(apperr.CodeValidation, "malformed subscription event", err)
		}
		return s.applySubscriptionState(ctx, &sub)
	default:
		return nil
	}
}

func (s *BillingService) activateSubscription(ctx context.Context, sess *stripe.CheckoutSession) error {
	userID, err := strconv.ParseUint(sess.ClientReferenceID, 10, 64)
	if err != nil {
		return apperr.Validation("checkout session has no usable client reference")
	}

	sub := models.Subscription{UserID: uint(userID)}
	if err := s.DB.WithContext(ctx).
		Where(models.Subscription{UserID: uint(userID)}).
		FirstOrCreate(&sub).Error; err != nil {
		return apperr.Internal(err)
	}

	sub.Plan = "premium"
	sub.Status = "active"
	if sess.Customer != nil {
		sub.StripeCustomerID = sess.Customer.ID
	}
	if sess.Subscription != nil {
		sub.StripeSubscriptionID = sess.Subscription.ID
	}
	if err := s.DB.WithContext(ctx).Save(&sub).Error; err != nil {
		return apperr.Internal(err)
	}
	log.Printf("✅ Subscription activated for user %d", userID)
	return nil
}

func (s *BillingService) applySubscriptionState(ctx context.Context, stripeSub *stripe.Subscription) error {
	var sub models.Subscription
	err := s.DB.WithContext(ctx).
		Where("stripe_subscription_id = ?", stripeSub.ID).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Webhook for a subscription we never issued; nothing to do.
		return nil
	}
	if err != nil {
		return apperr.Internal(err)
	}

	sub.Status = string(stripeSub.Status)
	if stripeSub.Status == stripe.SubscriptionStatusCanceled {
		sub.Plan = "free"
	}
	if stripeSub.CurrentPeriodEnd > 0 {
		end := time.Unix(stripeSub.CurrentPeriodEnd, 0).UTC()
		sub.CurrentPeriodEnd = &end
	}
	if err := s.DB.WithContext(ctx).Save(&sub).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}
