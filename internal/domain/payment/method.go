package payment

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/shared"
)

// PaymentMethod is a tokenized instrument reference held for an owner. The
// vault never sees card numbers, only the processor's token and display data.
type PaymentMethod struct {
	shared.BaseEntity
	OwnerID           string
	ExternalReference string
	Brand             string
	Last4             string
	ExpMonth          int
	ExpYear           int
	IsDefault         bool
}

// NewPaymentMethod validates and creates a vault entry.
func NewPaymentMethod(ownerID, externalRef, brand, last4 string, expMonth, expYear int) (*PaymentMethod, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, shared.NewValidationError("owner id is required")
	}
	if strings.TrimSpace(externalRef) == "" {
		return nil, shared.NewValidationError("payment method reference is required")
	}
	if last4 != "" && len(last4) != 4 {
		return nil, shared.NewValidationError("last4 must be four digits")
	}
	if expMonth != 0 && (expMonth < 1 || expMonth > 12) {
		return nil, shared.NewValidationError("expiry month must be between 1 and 12")
	}
	return &PaymentMethod{
		BaseEntity:        shared.NewBaseEntity(),
		OwnerID:           ownerID,
		ExternalReference: externalRef,
		Brand:             brand,
		Last4:             last4,
		ExpMonth:          expMonth,
		ExpYear:           expYear,
	}, nil
}

// Expired reports whether the card expiry has passed. Methods without an
// expiry never expire.
func (m *PaymentMethod) Expired(now time.Time) bool {
	if m.ExpYear == 0 || m.ExpMonth == 0 {
		return false
	}
	firstOfNext := time.Date(m.ExpYear, time.Month(m.ExpMonth)+1, 1, 0, 0, 0, 0, time.UTC)
	return !now.Before(firstOfNext)
}

// SortForDisplay orders methods default first, then newest first.
func SortForDisplay(methods []*PaymentMethod) {
	sort.SliceStable(methods, func(i, j int) bool {
		if methods[i].IsDefault != methods[j].IsDefault {
			return methods[i].IsDefault
		}
		return methods[i].CreatedAt.After(methods[j].CreatedAt)
	})
}

// NextDefault picks the method to promote when the default is removed: the
// newest one that remains.
func NextDefault(methods []*PaymentMethod, removed uuid.UUID) *PaymentMethod {
	var next *PaymentMethod
	for _, m := range methods {
		if m.ID == removed {
			continue
		}
		if next == nil || m.CreatedAt.After(next.CreatedAt) {
			next = m
		}
	}
	return next
}
