package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/payflowhq/payflow/app/models"
	"gorm.io/gorm"
)

// Service drives the transaction lifecycle: initialize against the provider,
// persist pending, verify, settle, and reconcile subscription state. Each call
// is independent; the persistent store is the only shared state, so multiple
// service instances can run concurrently.
type Service struct {
	repo     Repository
	gateway  Gateway
	notifier Notifier
}

// NewService creates a payment service from injected collaborators. notifier
// may be nil when no outcome notifications are wanted.
func NewService(repo Repository, gateway Gateway, notifier Notifier) *Service {
	return &Service{repo: repo, gateway: gateway, notifier: notifier}
}

// NewServiceFromDB creates a payment service from a GORM DB handle, talking to
// Paystack as configured in the environment.
func NewServiceFromDB(db *gorm.DB, notifier Notifier) *Service {
	return NewService(NewRepository(db), NewPaystackClientFromEnv(), notifier)
}

// Initiate validates the request, creates a checkout session with the provider
// and persists a pending transaction carrying the returned reference. If the
// provider never acknowledges the session, nothing is persisted.
func (s *Service) Initiate(ctx context.Context, in InitiateInput) (*InitiateOutput, error) {
	if in.UserID == 0 {
		return nil, NewError(ErrValidation, "user id is required")
	}
	if !in.Amount.IsPositive() {
		return nil, NewError(ErrValidation, "amount must be greater than zero")
	}
	if (in.ProductID != nil) == (in.SubscriptionID != nil) {
		return nil, NewError(ErrValidation, "exactly one of product id or subscription id must be set")
	}

	txType := models.TransactionTypeOneOff
	if in.SubscriptionID != nil {
		txType = models.TransactionTypeSubscription
		// Reject funding targets that do not exist before touching the provider.
		if _, err := s.repo.GetSubscription(*in.SubscriptionID); err != nil {
			return nil, err
		}
	}

	reference := NewReference()
	res, err := s.gateway.InitializeTransaction(ctx, InitializeParams{
		AuthToken:   in.AuthToken,
		Amount:      in.Amount,
		Reference:   reference,
		Email:       in.Email,
		CallbackURL: in.CallbackURL,
	})
	if err != nil {
		return nil, err
	}
	if ref := strings.TrimSpace(res.Reference); ref != "" {
		reference = ref
	}

	tx := &models.Transaction{
		Reference:      reference,
		Amount:         in.Amount,
		Status:         models.TransactionStatusPending,
		Type:           txType,
		Partners:       models.PaymentProviderPaystack,
		ProductID:      in.ProductID,
		SubscriptionID: in.SubscriptionID,
		UserID:         in.UserID,
		Email:          strings.TrimSpace(in.Email),
	}
	if err := tx.Validate(); err != nil {
		return nil, WrapError(ErrValidation, err, "transaction failed validation")
	}
	if err := s.repo.CreateTransaction(tx); err != nil {
		return nil, err
	}

	return &InitiateOutput{
		Reference:   reference,
		CheckoutURL: res.CheckoutURL,
		Transaction: tx,
	}, nil
}

// ConfirmByReference resolves a pending transaction against the provider.
// Both webhook deliveries and client polling funnel through here, so the call
// is idempotent: an already-terminal transaction is returned as stored and no
// side effect runs twice. The transition out of pending is guarded by the
// store's compare-and-set, and on success the status write and the
// subscription activation commit or roll back together.
func (s *Service) ConfirmByReference(ctx context.Context, reference, authToken string) (*ConfirmOutput, error) {
	tx, err := s.repo.GetTransactionByReference(reference)
	if err != nil {
		return nil, err
	}
	if tx.IsTerminal() {
		return &ConfirmOutput{Transaction: tx, AlreadyResolved: true}, nil
	}

	verified, err := s.gateway.VerifyTransaction(ctx, reference, authToken)
	if err != nil {
		// Transport or gateway error: the row stays pending and is eligible
		// for a later retry.
		return nil, err
	}
	if !verified.Resolved() {
		// Provider has not settled yet; nothing to apply.
		return &ConfirmOutput{Transaction: tx}, nil
	}

	if verified.Succeeded() {
		return s.settleSuccess(ctx, tx, verified)
	}
	return s.settleFailure(ctx, tx)
}

func (s *Service) settleSuccess(ctx context.Context, tx *models.Transaction, verified *VerifyResult) (*ConfirmOutput, error) {
	paidAt := time.Now()
	if verified.PaidAt != nil {
		paidAt = *verified.PaidAt
	}

	err := s.repo.Transact(func(r Repository) error {
		if err := r.UpdateTransactionStatus(tx.Reference, models.TransactionStatusPending, models.TransactionStatusSuccess, &paidAt); err != nil {
			return err
		}
		if tx.SubscriptionID == nil {
			return nil
		}
		sub, err := r.GetSubscription(*tx.SubscriptionID)
		if err != nil {
			return err
		}
		return r.ActivateSubscription(sub.ID, tx.ID, sub.NextExpiry(paidAt))
	})
	if err != nil {
		return nil, err
	}

	tx.Status = models.TransactionStatusSuccess
	tx.PaidAt = &paidAt
	if s.notifier != nil {
		s.notifier.TransactionSucceeded(ctx, tx)
	}
	return &ConfirmOutput{Transaction: tx}, nil
}

func (s *Service) settleFailure(ctx context.Context, tx *models.Transaction) (*ConfirmOutput, error) {
	if err := s.repo.UpdateTransactionStatus(tx.Reference, models.TransactionStatusPending, models.TransactionStatusFailed, nil); err != nil {
		return nil, err
	}

	tx.Status = models.TransactionStatusFailed
	if s.notifier != nil {
		s.notifier.TransactionFailed(ctx, tx)
	}
	return &ConfirmOutput{Transaction: tx}, nil
}

// RecordWebhookEvent persists webhook payloads idempotently.
func (s *Service) RecordWebhookEvent(_ context.Context, in WebhookEventInput) (bool, *models.PaymentWebhookEvent, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, NewError(ErrValidation, "provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.PaymentWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(_ context.Context, webhookEventID uint, processingErr error) error {
	if webhookEventID == 0 {
		return NewError(ErrValidation, "webhook event id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}
