package notify

import (
	"errors"
	"testing"

	"github.com/payflowhq/payflow/app/models"
	"github.com/stretchr/testify/assert"
)

func TestRecipientFor(t *testing.T) {
	byUser := func(userID uint) (string, error) {
		if userID == 1 {
			return "resolved@example.com", nil
		}
		return "", errors.New("unknown user")
	}

	tests := []struct {
		name    string
		tx      models.Transaction
		resolve RecipientResolver
		want    string
	}{
		{
			name: "stored email wins",
			tx:   models.Transaction{UserID: 1, Email: "stored@example.com"},
			resolve: func(uint) (string, error) {
				t.Fatal("resolver must not be called when the row carries an email")
				return "", nil
			},
			want: "stored@example.com",
		},
		{
			name:    "resolver covers rows without an email",
			tx:      models.Transaction{UserID: 1},
			resolve: byUser,
			want:    "resolved@example.com",
		},
		{
			name:    "resolver failure means no delivery",
			tx:      models.Transaction{UserID: 2},
			resolve: byUser,
			want:    "",
		},
		{
			name: "nil resolver and no email",
			tx:   models.Transaction{UserID: 1},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(nil, tt.resolve)
			assert.Equal(t, tt.want, d.recipientFor(&tt.tx))
		})
	}
}
