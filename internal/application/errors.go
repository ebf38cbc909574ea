package application

import "errors"

var errNonPositiveRate = errors.New("non-positive rate")

// Promo rejection messages.
const (
	msgInvalidPromo       = "Invalid promo code"
	msgInvalidDiscount    = "Invalid promo discount value"
	msgPromoLimitReached  = "Promo code usage limit reached"
	msgIncorrectPrice     = "Incorrect final price with promo"
	msgMissingFields      = "Missing required fields"
	msgMissingPromoFields = "Missing promo code or eventId"
)

// Payment rejection messages.
const (
	msgTxNotFound     = "Transaction not found"
	msgTxNotConfirmed = "Transaction not confirmed"
	msgNoTransfer     = "Invalid transaction: no transfer instruction"
	msgBadRecipient   = "Invalid recipient"
	msgBadAmount      = "Invalid transaction amount"
	msgSignatureUsed  = "Transaction already used for another ticket"
)
