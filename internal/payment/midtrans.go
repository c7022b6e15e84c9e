package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
)

// Midtrans charges donors through the Midtrans core API using a GoPay-style
// push: the charge lands on the donor's phone and we poll the transaction
// until it settles, fails, or the caller's deadline passes.
type Midtrans struct {
	client       coreapi.Client
	pollInterval time.Duration
}

// NewMidtrans builds a charger against the sandbox or production gateway.
func NewMidtrans(serverKey string, production bool) *Midtrans {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	m := &Midtrans{pollInterval: 2 * time.Second}
	m.client.New(serverKey, env)
	return m
}

func (m *Midtrans) Charge(ctx context.Context, phone string, amountCents int64) (Result, error) {
	// The gateway bills whole units only; callers must not hand us a
	// fractional amount or the charge would diverge from the ledger.
	if amountCents%100 != 0 {
		return Result{}, fmt.Errorf("amount %d cents is not a whole unit", amountCents)
	}

	orderID := uuid.NewString()
	req := &coreapi.ChargeReq{
		PaymentType: coreapi.PaymentTypeGopay,
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: amountCents / 100,
		},
		CustomerDetails: &midtrans.CustomerDetails{
			Phone: phone,
		},
	}

	resp, chargeErr := m.client.ChargeTransaction(req)
	if chargeErr != nil {
		return Result{}, fmt.Errorf("midtrans charge: %w", chargeErr)
	}

	status := mapStatus(resp.TransactionStatus)
	for status == "" {
		select {
		case <-ctx.Done():
			return Result{Ref: orderID, Status: StatusTimeout}, nil
		case <-time.After(m.pollInterval):
		}
		check, checkErr := m.client.CheckTransaction(orderID)
		if checkErr != nil {
			return Result{}, fmt.Errorf("midtrans status check: %w", checkErr)
		}
		status = mapStatus(check.TransactionStatus)
	}
	return Result{Ref: orderID, Status: status}, nil
}

// mapStatus folds Midtrans transaction statuses into charge outcomes; the
// empty string means the charge is still awaiting donor confirmation.
func mapStatus(transactionStatus string) Status {
	switch transactionStatus {
	case "settlement", "capture":
		return StatusSuccess
	case "deny", "cancel", "expire", "failure":
		return StatusFailed
	default:
		return ""
	}
}
