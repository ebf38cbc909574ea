package event

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func mustPromo(t *testing.T, code, discount string, limit int) Promo {
	t.Helper()
	p, err := NewPromo(code, decimal.RequireFromString(discount), limit)
	require.NoError(t, err)
	return p
}

func TestNewEvent_Valid(t *testing.T) {
	date := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	e, err := NewEvent("Concert", date, "Kyiv", 500, "desc", "music", "", []Promo{mustPromo(t, "SALE10", "0.10", 2)}, now)
	require.NoError(t, err)

	assert.Equal(t, "Concert", e.Name())
	assert.Equal(t, "2026-04-01", e.DateString())
	assert.Equal(t, int64(500), e.Price())
	assert.Len(t, e.Promos(), 1)
}

func TestNewEvent_TodayIsAllowed(t *testing.T) {
	_, err := NewEvent("Concert", now.Add(-10*time.Hour), "Kyiv", 500, "", "music", "", nil, now)
	assert.NoError(t, err)
}

func TestNewEvent_PastDate(t *testing.T) {
	_, err := NewEvent("Concert", now.AddDate(0, 0, -1), "Kyiv", 500, "", "music", "", nil, now)
	assert.True(t, errors.Is(err, ErrDateInPast))
}

func TestNewEvent_RequiredFields(t *testing.T) {
	_, err := NewEvent(" ", now, "Kyiv", 500, "", "music", "", nil, now)
	assert.Error(t, err)

	_, err = NewEvent("Concert", now, "Kyiv", 0, "", "music", "", nil, now)
	assert.Error(t, err)
}

func TestNewEvent_DuplicatePromoCodes(t *testing.T) {
	promos := []Promo{mustPromo(t, "SALE10", "0.1", 1), mustPromo(t, " sale10 ", "0.2", 1)}
	_, err := NewEvent("Concert", now, "Kyiv", 500, "", "music", "", promos, now)
	assert.ErrorContains(t, err, "duplicate promo code")
}

func TestEvent_FindPromoNormalizes(t *testing.T) {
	e := Reconstruct([16]byte{1}, "Concert", now, "Kyiv", 500, "", "music", "",
		[]Promo{mustPromo(t, "Sale10", "0.1", 2)}, now)

	p, ok := e.FindPromo("  SALE10 ")
	require.True(t, ok)
	assert.Equal(t, "Sale10", p.Code())

	_, ok = e.FindPromo("SALE20")
	assert.False(t, ok)
}

func TestEvent_SetPromoUsage(t *testing.T) {
	e := Reconstruct([16]byte{1}, "Concert", now, "Kyiv", 500, "", "music", "",
		[]Promo{mustPromo(t, "SALE10", "0.1", 2)}, now)

	require.NoError(t, e.SetPromoUsage("sale10", 2))
	p, _ := e.FindPromo("SALE10")
	assert.Equal(t, 2, p.UsedCount())

	assert.Error(t, e.SetPromoUsage("SALE10", 3), "used count above limit")
	assert.Error(t, e.SetPromoUsage("OTHER", 1))
}

func TestEvent_PromosReturnsCopy(t *testing.T) {
	e := Reconstruct([16]byte{1}, "Concert", now, "Kyiv", 500, "", "music", "",
		[]Promo{mustPromo(t, "SALE10", "0.1", 2)}, now)

	promos := e.Promos()
	promos[0], _ = promos[0].WithUsedCount(1)

	p, _ := e.FindPromo("SALE10")
	assert.Equal(t, 0, p.UsedCount())
}

func TestEvent_ExpectedPrice(t *testing.T) {
	e := Reconstruct([16]byte{1}, "Concert", now, "Kyiv", 500, "", "music", "", nil, now)

	assert.True(t, e.ExpectedPrice(decimal.Zero).Equal(decimal.NewFromInt(500)))
	assert.True(t, e.ExpectedPrice(decimal.RequireFromString("0.1")).Equal(decimal.NewFromInt(450)))
	assert.True(t, e.ExpectedPrice(decimal.NewFromInt(1)).IsZero())
}
