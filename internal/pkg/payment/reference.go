package payment

import (
	"strings"

	"github.com/google/uuid"
)

// NewReference generates a globally unique, opaque transaction reference. The
// value correlates our row with the provider's record and is immutable after
// creation.
func NewReference() string {
	return "pf-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
