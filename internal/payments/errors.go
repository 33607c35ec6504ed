package payments

import "errors"

var (
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrPaymentRejected means the gateway gave a definitive decline. The
	// hold stays pending so the customer can retry with another method.
	ErrPaymentRejected = errors.New("payment rejected by gateway")

	// ErrGateway covers transport and gateway-side failures where the
	// outcome is unknown. Retryable.
	ErrGateway = errors.New("payment gateway unavailable")

	// ErrAlreadySettled means a settled payment was confirmed again with a
	// different external reference. Same-reference replays succeed instead.
	ErrAlreadySettled = errors.New("payment already settled")

	// ErrSettlementRace means money was captured but the hold closed first.
	// A compensation record exists; no seats were assigned.
	ErrSettlementRace = errors.New("payment captured after hold closed")

	ErrPaymentClosed      = errors.New("payment is no longer active")
	ErrMissingReference   = errors.New("external reference is required")
	ErrNotPaymentCustomer = errors.New("payment belongs to a different customer")
	ErrOperatorRequired   = errors.New("manual settlement requires an operator")
)
