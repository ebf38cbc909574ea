package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestExpectedLamports(t *testing.T) {
	tests := []struct {
		name  string
		price string
		rate  string
		want  int64
	}{
		{"fallback rate", "450", "100", 4_500_000_000},
		{"market rate", "500", "6250", 80_000_000},
		{"rounds to nearest", "1", "3", 333_333_333},
		{"free ticket", "0", "100", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpectedLamports(decimal.RequireFromString(tt.price), decimal.RequireFromString(tt.rate))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithinLamportTolerance(t *testing.T) {
	assert.True(t, WithinLamportTolerance(1000, 0))
	assert.True(t, WithinLamportTolerance(0, 1000))
	assert.False(t, WithinLamportTolerance(1001, 0))
	assert.False(t, WithinLamportTolerance(0, 1001))
}

func TestWithinPriceTolerance(t *testing.T) {
	expected := decimal.NewFromInt(450)
	assert.True(t, WithinPriceTolerance(decimal.RequireFromString("450.01"), expected))
	assert.True(t, WithinPriceTolerance(decimal.RequireFromString("449.99"), expected))
	assert.False(t, WithinPriceTolerance(decimal.RequireFromString("450.011"), expected))
	assert.False(t, WithinPriceTolerance(decimal.NewFromInt(500), expected))
}

func TestTransaction_FirstTransfer(t *testing.T) {
	tx := &Transaction{Instructions: []Instruction{
		{ProgramID: "MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr"},
		{ProgramID: SystemProgramID, Type: "createAccount"},
		{ProgramID: SystemProgramID, Type: "transfer", Destination: "dest", Lamports: 5},
	}}
	in, ok := tx.FirstTransfer()
	assert.True(t, ok)
	assert.Equal(t, "dest", in.Destination)

	_, ok = (&Transaction{}).FirstTransfer()
	assert.False(t, ok)
}
