package domain

import (
	"encoding/json"
	"time"
)

// Donation is one ledger entry behind a campaign's aggregate amount. The
// aggregate on the campaign row stays authoritative; ledger rows exist for
// audit and display.
type Donation struct {
	ID           string
	CampaignID   string
	UserID       string
	AmountCents  int64
	Method       string
	PaymentRef   string
	DonorCountry string
	CreatedAt    time.Time
}

type donationJSON struct {
	ID           string    `json:"id"`
	CampaignID   string    `json:"campaign_id"`
	UserID       string    `json:"user_id"`
	Amount       float64   `json:"amount"`
	Method       string    `json:"method"`
	PaymentRef   string    `json:"payment_ref,omitempty"`
	DonorCountry string    `json:"donor_country,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (d Donation) MarshalJSON() ([]byte, error) {
	return json.Marshal(donationJSON{
		ID:           d.ID,
		CampaignID:   d.CampaignID,
		UserID:       d.UserID,
		Amount:       CentsToUnits(d.AmountCents),
		Method:       d.Method,
		PaymentRef:   d.PaymentRef,
		DonorCountry: d.DonorCountry,
		CreatedAt:    d.CreatedAt,
	})
}

// Donation methods recorded in the ledger.
const (
	MethodDirect      = "direct"
	MethodMobileMoney = "mobile_money"
)
