// Package payment confirms mobile-money charges before a donation is
// applied. The caller bounds the wait with its context; an expired context
// surfaces as a timeout outcome, never a partial charge retry.
package payment

import "context"

// Status is the terminal outcome of one charge attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusTimeout Status = "timeout"
)

// Result reports the outcome of a charge and the gateway reference for the
// donation ledger.
type Result struct {
	Ref    string
	Status Status
}

// Charger pushes a charge to the donor's phone and waits for confirmation.
type Charger interface {
	Charge(ctx context.Context, phone string, amountCents int64) (Result, error)
}
