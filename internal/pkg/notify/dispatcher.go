package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/payflowhq/payflow/app/models"
	"github.com/payflowhq/payflow/internal/pkg/mail"
	"gorm.io/gorm"
)

// RecipientResolver maps a user id to an email address. Users live outside
// this service, so callers decide how to resolve them; a nil resolver skips
// email delivery and only persists the in-app notification.
type RecipientResolver func(userID uint) (string, error)

// Dispatcher informs users of transaction outcomes: an in-app notification row
// plus an optional email. All failures are logged and swallowed; outcome
// delivery never affects transaction state.
type Dispatcher struct {
	db      *gorm.DB
	resolve RecipientResolver
}

// NewDispatcher creates a dispatcher writing notifications through the given
// DB handle. resolve may be nil.
func NewDispatcher(db *gorm.DB, resolve RecipientResolver) *Dispatcher {
	return &Dispatcher{db: db, resolve: resolve}
}

// TransactionSucceeded records a success notification for the paying user.
func (d *Dispatcher) TransactionSucceeded(_ context.Context, tx *models.Transaction) {
	content := fmt.Sprintf("Your payment of %s (reference %s) was successful.", tx.Amount.StringFixed(2), tx.Reference)
	d.dispatch(tx, models.NotificationTypePaymentSuccess, "Payment successful", content)
}

// TransactionFailed records a failure notification for the paying user.
func (d *Dispatcher) TransactionFailed(_ context.Context, tx *models.Transaction) {
	content := fmt.Sprintf("Your payment of %s (reference %s) failed.", tx.Amount.StringFixed(2), tx.Reference)
	d.dispatch(tx, models.NotificationTypePaymentFailed, "Payment failed", content)
}

func (d *Dispatcher) dispatch(tx *models.Transaction, notificationType, subject, content string) {
	if err := models.CreateNotification(d.db, tx.UserID, notificationType, content, tx.ID); err != nil {
		log.Printf("notify: failed to persist %s notification for transaction %s: %v", notificationType, tx.Reference, err)
	}

	to := d.recipientFor(tx)
	if to == "" {
		return
	}
	if err := mail.SendMail(to, subject, content); err != nil {
		log.Printf("notify: failed to email user %d about transaction %s: %v", tx.UserID, tx.Reference, err)
	}
}

// recipientFor picks the delivery address: the email captured at initiate
// time wins, the resolver covers rows persisted without one.
func (d *Dispatcher) recipientFor(tx *models.Transaction) string {
	if tx.Email != "" {
		return tx.Email
	}
	if d.resolve == nil {
		return ""
	}
	to, err := d.resolve(tx.UserID)
	if err != nil {
		log.Printf("notify: no email recipient for user %d: %v", tx.UserID, err)
		return ""
	}
	return to
}
