package payment

import (
	"errors"
	"time"

	"github.com/payflowhq/payflow/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the payment service.
//
// UpdateTransactionStatus is the compare-and-set primitive: the write applies
// only if the persisted status still equals expectedStatus, so two concurrent
// confirms cannot both move a transaction out of pending.
type Repository interface {
	CreateTransaction(tx *models.Transaction) error
	GetTransactionByReference(reference string) (*models.Transaction, error)
	UpdateTransactionStatus(reference, expectedStatus, newStatus string, paidAt *time.Time) error
	GetSubscription(id uint) (*models.Subscription, error)
	ActivateSubscription(subscriptionID, transactionID uint, newExpiry time.Time) error
	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
	// Transact runs fn against a repository bound to a single DB transaction;
	// all writes inside commit or roll back together.
	Transact(fn func(Repository) error) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payment repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateTransaction(tx *models.Transaction) error {
	if err := r.db.Create(tx).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return WrapError(ErrDuplicateReference, err, "reference %q already exists", tx.Reference)
		}
		return err
	}
	return nil
}

func (r *gormRepository) GetTransactionByReference(reference string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.Where("reference = ?", reference).First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewError(ErrNotFound, "no transaction with reference %q", reference)
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *gormRepository) UpdateTransactionStatus(reference, expectedStatus, newStatus string, paidAt *time.Time) error {
	updates := map[string]interface{}{"status": newStatus}
	if paidAt != nil {
		updates["paid_at"] = paidAt
	}

	res := r.db.Model(&models.Transaction{}).
		Where("reference = ? AND status = ?", reference, expectedStatus).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Zero rows: either the reference is unknown or a concurrent transition
	// already moved the row past expectedStatus.
	var current models.Transaction
	err := r.db.Where("reference = ?", reference).First(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewError(ErrNotFound, "no transaction with reference %q", reference)
	}
	if err != nil {
		return err
	}
	return NewError(ErrConflict, "transaction %q is %s, expected %s", reference, current.Status, expectedStatus)
}

func (r *gormRepository) GetSubscription(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.First(&sub, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewError(ErrNotFound, "no subscription with id %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) ActivateSubscription(subscriptionID, transactionID uint, newExpiry time.Time) error {
	res := r.db.Model(&models.Subscription{}).
		Where("id = ?", subscriptionID).
		Updates(map[string]interface{}{
			"is_active":      true,
			"transaction_id": transactionID,
			"expiry_date":    newExpiry,
			"start_date":     gorm.Expr("COALESCE(start_date, ?)", time.Now()),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return NewError(ErrNotFound, "no subscription with id %d", subscriptionID)
	}
	return nil
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) Transact(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}
