package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/access"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/users"
	"github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"
	"gorm.io/gorm"
)

var ErrSignatureInvalid = errors.New("failed to verify webhook signature")

// StripeService runs seller subscription billing. Payment failures suspend
// the seller account; recovery reinstates it through the normal lifecycle.
type StripeService struct {
	secretKey     string
	webhookSecret string
	db            *gorm.DB
	users         *users.Service
}

func NewStripeService(cfg models.StripeConfig, db *gorm.DB, userService *users.Service) *StripeService {
	stripe.Key = cfg.SecretKey

	return &StripeService{
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		db:            db,
		users:         userService,
	}
}

type CreateCheckoutParams struct {
	UserID        uint
	StripePriceID string
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
}

// CreateCheckoutSession opens a Stripe checkout for a seller subscription.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, params CreateCheckoutParams) (*stripe.CheckoutSession, error) {
	sessionParams := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(params.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
		Metadata: map[string]string{
			"user_id": strconv.FormatUint(uint64(params.UserID), 10),
		},
	}

	if params.CustomerEmail != "" {
		sessionParams.CustomerEmail = stripe.String(params.CustomerEmail)
	}

	sess, err := session.New(sessionParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess, nil
}

// HandleWebhook verifies and dispatches Stripe events.
func (s *StripeService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, event)
	case "invoice.payment_failed":
		return s.handlePaymentFailed(ctx, event)
	case "invoice.paid":
		return s.handleInvoicePaid(ctx, event)
	default:
		// Ignore other event types
		return nil
	}
}

// handleCheckoutCompleted links the Stripe customer to the local seller.
func (s *StripeService) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("failed to parse checkout session: %w", err)
	}

	userIDStr := sess.Metadata["user_id"]
	userID, err := strconv.ParseUint(userIDStr, 10, 64)
	if err != nil || userID == 0 {
		return fmt.Errorf("invalid checkout session metadata: user_id %q", userIDStr)
	}
	if sess.Customer == nil {
		return fmt.Errorf("checkout session %s has no customer", sess.ID)
	}

	err = s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", uint(userID)).
		Update("stripe_customer_id", sess.Customer.ID).Error
	if err != nil {
		return fmt.Errorf("failed to link stripe customer: %w", err)
	}

	log.Infof("Linked Stripe customer %s to user %d", sess.Customer.ID, userID)
	return nil
}

// handlePaymentFailed suspends the seller whose subscription invoice failed.
func (s *StripeService) handlePaymentFailed(ctx context.Context, event stripe.Event) error {
	invoice, err := parseInvoice(event)
	if err != nil {
		return err
	}

	user, err := s.userByCustomer(ctx, invoice.Customer.ID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			log.Warnf("Payment failed for unknown Stripe customer %s", invoice.Customer.ID)
			return nil
		}
		return err
	}

	if user.AccountStatus == access.AccountStatusSuspended {
		return nil
	}

	_, err = s.users.ChangeAccountStatus(ctx, user.ID, &models.AccountStatusChangeRequest{
		Status: access.AccountStatusSuspended,
		Note:   "subscription payment failed",
	})
	if err != nil {
		return fmt.Errorf("failed to suspend user %d: %w", user.ID, err)
	}

	log.Warnf("Suspended user %d after failed payment", user.ID)
	return nil
}

// handleInvoicePaid reinstates a seller suspended for non-payment.
func (s *StripeService) handleInvoicePaid(ctx context.Context, event stripe.Event) error {
	invoice, err := parseInvoice(event)
	if err != nil {
		return err
	}

	user, err := s.userByCustomer(ctx, invoice.Customer.ID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil
		}
		return err
	}

	if user.AccountStatus != access.AccountStatusSuspended {
		return nil
	}

	_, err = s.users.ChangeAccountStatus(ctx, user.ID, &models.AccountStatusChangeRequest{
		Status: access.AccountStatusActive,
		Note:   "subscription payment recovered",
	})
	if err != nil {
		return fmt.Errorf("failed to reinstate user %d: %w", user.ID, err)
	}

	log.Infof("Reinstated user %d after payment recovery", user.ID)
	return nil
}

func (s *StripeService) userByCustomer(ctx context.Context, customerID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, users.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user by customer: %w", err)
	}
	return &user, nil
}

func parseInvoice(event stripe.Event) (*stripe.Invoice, error) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return nil, fmt.Errorf("failed to parse invoice: %w", err)
	}
	if invoice.Customer == nil {
		return nil, fmt.Errorf("invoice %s has no customer", invoice.ID)
	}
	return &invoice, nil
}
