package payment

import "github.com/shopspring/decimal"

// Method identifies how a ticket was paid for.
type Method string

const (
	MethodStub      Method = "TestPayment"
	MethodSolanaPay Method = "SolanaPay"
)

// Valid reports whether m is a known payment method.
func (m Method) Valid() bool {
	return m == MethodStub || m == MethodSolanaPay
}

// LamportsPerSOL is the number of smallest on-chain units in one coin.
const LamportsPerSOL = 1_000_000_000

// SystemProgramID is the native value-transfer program.
const SystemProgramID = "11111111111111111111111111111111"

// PriceTolerance absorbs floating-point noise in client-declared fiat prices.
var PriceTolerance = decimal.RequireFromString("0.01")

// LamportTolerance absorbs exchange-rate drift between quote and verification.
const LamportTolerance int64 = 1000

// Instruction is one parsed instruction of an on-chain transaction.
type Instruction struct {
	ProgramID   string
	Type        string
	Source      string
	Destination string
	Lamports    uint64
}

// Transaction is the confirmed, parsed form of a transaction.
type Transaction struct {
	Signature    string
	Slot         uint64
	Instructions []Instruction
}

// FirstTransfer returns the first System Program transfer instruction.
func (t *Transaction) FirstTransfer() (Instruction, bool) {
	for _, in := range t.Instructions {
		if in.ProgramID == SystemProgramID && in.Type == "transfer" {
			return in, true
		}
	}
	return Instruction{}, false
}

// ExpectedLamports converts a fiat price to lamports given fiat units per coin.
func ExpectedLamports(finalPrice, fiatPerCoin decimal.Decimal) int64 {
	return finalPrice.Div(fiatPerCoin).Mul(decimal.NewFromInt(LamportsPerSOL)).Round(0).IntPart()
}

// WithinLamportTolerance reports whether |actual-expected| <= LamportTolerance.
func WithinLamportTolerance(actual, expected int64) bool {
	diff := actual - expected
	if diff < 0 {
		diff = -diff
	}
	return diff <= LamportTolerance
}

// WithinPriceTolerance reports whether |claimed-expected| <= PriceTolerance.
func WithinPriceTolerance(claimed, expected decimal.Decimal) bool {
	return claimed.Sub(expected).Abs().LessThanOrEqual(PriceTolerance)
}
