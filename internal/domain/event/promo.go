package event

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Promo is a discount code embedded in its owning event.
type Promo struct {
	code       string
	discount   decimal.Decimal // fraction in (0, 1]
	usageLimit int
	usedCount  int
}

// maxDiscountPlaces matches the precision of the stored discount column.
const maxDiscountPlaces = 4

// NewPromo creates a promo entry for an event being created.
func NewPromo(code string, discount decimal.Decimal, usageLimit int) (Promo, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Promo{}, fmt.Errorf("promo code is required")
	}
	if !validDiscount(discount) {
		return Promo{}, fmt.Errorf("promo %s: discount must be in (0, 1]", code)
	}
	if !discount.Equal(discount.Truncate(maxDiscountPlaces)) {
		return Promo{}, fmt.Errorf("promo %s: discount must have at most %d decimal places", code, maxDiscountPlaces)
	}
	if usageLimit <= 0 {
		return Promo{}, fmt.Errorf("promo %s: usage limit must be positive", code)
	}
	return Promo{code: code, discount: discount, usageLimit: usageLimit}, nil
}

// ReconstructPromo rebuilds a Promo from persistence without validation.
func ReconstructPromo(code string, discount decimal.Decimal, usageLimit, usedCount int) Promo {
	return Promo{code: code, discount: discount, usageLimit: usageLimit, usedCount: usedCount}
}

// NormalizeCode returns the comparison form of a promo code.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Matches reports whether the given user input refers to this promo.
func (p Promo) Matches(code string) bool {
	return NormalizeCode(p.code) == NormalizeCode(code)
}

// HasValidDiscount reports whether the stored discount is within (0, 1].
func (p Promo) HasValidDiscount() bool {
	return validDiscount(p.discount)
}

// LimitReached reports whether used redemptions exhaust the promo.
func (p Promo) LimitReached(used int) bool {
	return used >= p.usageLimit
}

// WithUsedCount returns a copy carrying the given redemption count.
func (p Promo) WithUsedCount(used int) (Promo, error) {
	if used < 0 || used > p.usageLimit {
		return p, fmt.Errorf("promo %s: used count %d outside [0, %d]", p.code, used, p.usageLimit)
	}
	p.usedCount = used
	return p, nil
}

func validDiscount(d decimal.Decimal) bool {
	return d.IsPositive() && d.LessThanOrEqual(decimal.NewFromInt(1))
}

func (p Promo) Code() string              { return p.code }
func (p Promo) Discount() decimal.Decimal { return p.discount }
func (p Promo) UsageLimit() int           { return p.usageLimit }
func (p Promo) UsedCount() int            { return p.usedCount }
