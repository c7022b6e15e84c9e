package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"campusfund/internal/domain"
	"campusfund/internal/middleware"
	"campusfund/internal/payment"
	"campusfund/internal/sqlinline"
)

type donationRequest struct {
	Amount      json.Number `json:"amount"`
	PhoneNumber string      `json:"phone_number"`
}

// DonationsCreate applies one donation. The whole sequence is: validate,
// optionally confirm the mobile-money charge, then a single atomic
// increment in the store. Nothing is written when the charge fails.
func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	ident, ok := a.currentUser(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "log in to donate")
		return
	}

	var req donationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	amountCents, err := domain.ParseAmount(req.Amount.String())
	if err != nil {
		a.fail(w, err)
		return
	}

	campaignID := chi.URLParam(r, "id")
	method := domain.MethodDirect
	paymentRef := ""
	if phone := strings.TrimSpace(req.PhoneNumber); phone != "" && a.Charger != nil {
		// Mobile money bills whole units; a fractional charge would not
		// match the amount credited to the campaign.
		if amountCents%100 != 0 {
			a.fail(w, fmt.Errorf("%w: mobile money donations must be a whole amount", domain.ErrValidation))
			return
		}
		result, err := a.chargeDonor(r.Context(), phone, amountCents)
		if err != nil {
			a.fail(w, err)
			return
		}
		method = domain.MethodMobileMoney
		paymentRef = result.Ref
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QIncrementCampaignAmount, campaignID, amountCents)
	var currentCents int64
	if err := row.Scan(&currentCents); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.failDonationTarget(w, r, campaignID)
			return
		}
		a.fail(w, err)
		return
	}

	// Ledger row and live notify are best-effort once the aggregate is in.
	country := middleware.CountryFromContext(r.Context())
	if _, err := a.SQL.Exec(r.Context(), sqlinline.QInsertDonation,
		campaignID, ident.ID, amountCents, method, paymentRef, country); err != nil {
		a.Logger.Error().Err(err).Str("campaign_id", campaignID).Msg("donation ledger insert failed")
	}
	a.notifyCampaignsChanged(r, campaignID)

	a.json(w, http.StatusOK, map[string]any{
		"campaign_id":    campaignID,
		"amount":         domain.CentsToUnits(amountCents),
		"current_amount": domain.CentsToUnits(currentCents),
		"method":         method,
	})
}

// chargeDonor runs the external confirmation under the configured bound.
func (a *App) chargeDonor(ctx context.Context, phone string, amountCents int64) (payment.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, a.PaymentTimeout)
	defer cancel()

	result, err := a.Charger.Charge(ctx, phone, amountCents)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return payment.Result{}, domain.ErrPaymentTimeout
		}
		a.Logger.Error().Err(err).Msg("payment charge failed")
		return payment.Result{}, domain.ErrPaymentFailed
	}
	switch result.Status {
	case payment.StatusSuccess:
		return result, nil
	case payment.StatusTimeout:
		return payment.Result{}, domain.ErrPaymentTimeout
	default:
		return payment.Result{}, domain.ErrPaymentFailed
	}
}

// failDonationTarget distinguishes a missing campaign from one that is not
// accepting donations yet (or anymore).
func (a *App) failDonationTarget(w http.ResponseWriter, r *http.Request, campaignID string) {
	status, err := a.campaignStatus(r, campaignID)
	if err != nil {
		a.fail(w, err)
		return
	}
	if status == domain.StatusRejected {
		a.error(w, http.StatusGone, "already_removed", "campaign has been removed")
		return
	}
	a.error(w, http.StatusConflict, "invalid_state", "campaign is not accepting donations")
}

func (a *App) DonationsList(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")
	rows, err := a.SQL.Query(r.Context(), sqlinline.QListCampaignDonations, campaignID, 20)
	if err != nil {
		a.fail(w, err)
		return
	}
	defer rows.Close()

	items := []domain.Donation{}
	for rows.Next() {
		var d domain.Donation
		if err := rows.Scan(&d.ID, &d.CampaignID, &d.UserID, &d.AmountCents,
			&d.Method, &d.PaymentRef, &d.DonorCountry, &d.CreatedAt); err != nil {
			a.fail(w, err)
			return
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
