package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"campusfund/internal/domain"
	"campusfund/internal/middleware"
	"campusfund/internal/payment"
	"campusfund/internal/sqlinline"
)

// fakeCharger scripts the payment gateway.
type fakeCharger struct {
	result payment.Result
	err    error
	block  bool
	called bool
}

func (f *fakeCharger) Charge(ctx context.Context, phone string, amountCents int64) (payment.Result, error) {
	f.called = true
	if f.block {
		<-ctx.Done()
		return payment.Result{}, ctx.Err()
	}
	return f.result, f.err
}

func donationApp(sql *fakeSQL, charger payment.Charger) *App {
	app := newTestApp(sql)
	app.Charger = charger
	app.PaymentTimeout = 50 * time.Millisecond
	return app
}

func TestDonationsCreate_RequiresAuth(t *testing.T) {
	sql := &fakeSQL{}
	app := donationApp(sql, nil)

	req := withURLParam(authedRequest("POST", "/campaigns/c1/donations", `{"amount":100}`, middleware.Identity{}), "id", "c1")
	rr := httptest.NewRecorder()
	app.DonationsCreate(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if sql.total() != 0 {
		t.Fatalf("no SQL expected, got %d calls", sql.total())
	}
}

func TestDonationsCreate_RejectsBadAmounts(t *testing.T) {
	for _, body := range []string{
		`{"amount":-5}`,
		`{"amount":0}`,
		`{"amount":"abc"}`,
		`{"amount":"1.234"}`,
		`{}`,
	} {
		sql := &fakeSQL{}
		app := donationApp(sql, nil)

		req := withURLParam(authedRequest("POST", "/campaigns/c1/donations", body, member), "id", "c1")
		rr := httptest.NewRecorder()
		app.DonationsCreate(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400: %s", body, rr.Code, rr.Body)
		}
		if sql.total() != 0 {
			t.Fatalf("body %s: invalid amount must not reach the store", body)
		}
	}
}

func TestDonationsCreate_AppliesAtomicIncrement(t *testing.T) {
	sql := &fakeSQL{
		rowFn: func(query string, args ...any) pgx.Row {
			if query != sqlinline.QIncrementCampaignAmount {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[0] != "c1" || args[1].(int64) != 25050 {
				t.Fatalf("unexpected args: %v", args)
			}
			return simpleRow{scan: scanInto(int64(125050))}
		},
		execFn: func(string, ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}
	app := donationApp(sql, nil)

	req := withURLParam(authedRequest("POST", "/campaigns/c1/donations", `{"amount":"250.50"}`, member), "id", "c1")
	rr := httptest.NewRecorder()
	app.DonationsCreate(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body)
	}
	var resp struct {
		Amount        float64 `json:"amount"`
		CurrentAmount float64 `json:"current_amount"`
		Method        string  `json:"method"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.CurrentAmount != 1250.50 || resp.Amount != 250.50 {
		t.Fatalf("unexpected amounts: %+v", resp)
	}
	if resp.Method != domain.MethodDirect {
		t.Fatalf("method = %q, want direct", resp.Method)
	}
	if sql.calls(sqlinline.QInsertDonation) != 1 {
		t.Fatal("ledger row not written")
	}
	if sql.calls(sqlinline.QNotifyCampaignsChanged) != 1 {
		t.Fatal("live views not notified")
	}
}

func TestDonationsCreate_MobileMoneyConfirmedBeforeWrite(t *testing.T) {
	charger := &fakeCharger{result: payment.Result{Ref: "order-7", Status: payment.StatusSuccess}}
	var ledgerArgs []any
	sql := &fakeSQL{
		rowFn: func(string, ...any) pgx.Row {
			return simpleRow{scan: scanInto(int64(5000))}
		},
		execFn: func(query string, args ...any) (pgconn.CommandTag, error) {
			if query == sqlinline.QInsertDonation {
				ledgerArgs = args
			}
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}
	app := donationApp(sql, charger)

	req := withURLParam(authedRequest("POST", "/campaigns/c1/donations", `{"amount":50,"phone_number":"254700000001"}`, member), "id", "c1")
	rr := httptest.NewRecorder()
	app.DonationsCreate(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body)
	}
	if len(ledgerArgs) != 6 {
		t.Fatalf("ledger args = %d, want 6", len(ledgerArgs))
	}
	if ledgerArgs[3] != domain.MethodMobileMoney || ledgerArgs[4] != "order-7" {
		t.Fatalf("ledger method/ref = %v/%v", ledgerArgs[3], ledgerArgs[4])
	}
}

// A fractional mobile-money amount would charge the donor a different sum
// than the campaign is credited, so it is rejected before the gateway call.
func TestDonationsCreate_MobileMoneyRejectsFractionalAmount(t *testing.T) {
	charger := &fakeCharger{result: payment.Result{Status: payment.StatusSuccess}}
	sql := &fakeSQL{}
	app := donationApp(sql, charger)

	req := withURLParam(authedRequest("POST", "/campaigns/c1/donations", `{"amount":"250.50","phone_number":"254700000001"}`, member), "id", "c1")
	rr := httptest.NewRecorder()
	app.DonationsCreate(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rr.Code, rr.Body)
	}
	if charger.called {
		t.Fatal("gateway must not be charged a rounded amount")
	}
	if sql.total() != 0 {
		t.Fatalf("no SQL expected, got %d calls", sql.total())
	}
}

func TestDonationsCreate_FailedChargeWritesNothing(t *testing.T) {
	charger := &fakeCharger{result: payment.Result{Status: payment.StatusFailed}}
	sql := &fakeSQL{}
	app := donationApp(sql, charger)

	req := withURLParam(authedRequest("POST", "/campaigns/c1/donations", `{"amount":50,"phone_number":"254700000001"}`, member), "id", "c1")
	rr := httptest.NewRecorder()
	app.DonationsCreate(rr, req)

	if rr.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402: %s", rr.Code, rr.Body)
	}
	if sql.total() != 0 {
		t.Fatalf("failed charge must not touch the store, got %d queries", sql.total())
	}
}

func TestDonationsCreate_ChargeTimeout(t *testing.T) {
	charger := &fakeCharger{block: true}
	sql := &fakeSQL{}
	app := donationApp(sql, charger)

	req := withURLParam(authedRequest("POST", "/campaigns/c1/donations", `{"amount":50,"phone_number":"254700000001"}`, member), "id", "c1")
	rr := httptest.NewRecorder()
	app.DonationsCreate(rr, req)

	if rr.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504: %s", rr.Code, rr.Body)
	}
	if sql.total() != 0 {
		t.Fatalf("timed-out charge must not touch the store, got %d queries", sql.total())
	}
}

func TestDonationsCreate_TargetNotAcceptingDonations(t *testing.T) {
	tests := []struct {
		name     string
		status   any
		wantCode int
	}{
		{name: "pending campaign", status: domain.StatusPending, wantCode: http.StatusConflict},
		{name: "rejected campaign", status: domain.StatusRejected, wantCode: http.StatusGone},
		{name: "missing campaign", status: nil, wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := &fakeSQL{
				rowFn: func(query string, args ...any) pgx.Row {
					switch query {
					case sqlinline.QIncrementCampaignAmount:
						return simpleRow{}
					case sqlinline.QSelectCampaignStatus:
						if tt.status == nil {
							return simpleRow{}
						}
						return simpleRow{scan: scanInto(tt.status.(domain.CampaignStatus))}
					}
					t.Fatalf("unexpected query: %s", query)
					return simpleRow{}
				},
			}
			app := donationApp(sql, nil)

			req := withURLParam(authedRequest("POST", "/campaigns/c1/donations", `{"amount":50}`, member), "id", "c1")
			rr := httptest.NewRecorder()
			app.DonationsCreate(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.wantCode, rr.Body)
			}
			if sql.calls(sqlinline.QInsertDonation) != 0 {
				t.Fatal("rejected donation must not write a ledger row")
			}
		})
	}
}

// Concurrent donations must all land in the final balance. The fake applies
// the guarded increment under a lock, mirroring the row-level atomicity the
// real UPDATE provides.
func TestDonationsCreate_ConcurrentDonationsAreNotLost(t *testing.T) {
	const donors = 25
	const perDonation = int64(1000)

	var mu sync.Mutex
	balance := int64(50000)

	sql := &fakeSQL{
		rowFn: func(query string, args ...any) pgx.Row {
			if query != sqlinline.QIncrementCampaignAmount {
				return simpleRow{}
			}
			amount := args[1].(int64)
			mu.Lock()
			balance += amount
			after := balance
			mu.Unlock()
			return simpleRow{scan: scanInto(after)}
		},
		execFn: func(string, ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}
	app := donationApp(sql, nil)

	var wg sync.WaitGroup
	codes := make([]int, donors)
	for i := 0; i < donors; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ident := middleware.Identity{
				ID:    fmt.Sprintf("donor-%d", i),
				Email: fmt.Sprintf("donor%d@campus.ac.ke", i),
				Role:  domain.RoleMember,
			}
			req := withURLParam(authedRequest("POST", "/campaigns/c1/donations", `{"amount":10}`, ident), "id", "c1")
			rr := httptest.NewRecorder()
			app.DonationsCreate(rr, req)
			codes[i] = rr.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusOK {
			t.Fatalf("donor %d: status = %d, want 200", i, code)
		}
	}
	want := int64(50000) + donors*perDonation
	if balance != want {
		t.Fatalf("final balance = %d, want %d (lost update)", balance, want)
	}
	if sql.calls(sqlinline.QInsertDonation) != donors {
		t.Fatalf("ledger rows = %d, want %d", sql.calls(sqlinline.QInsertDonation), donors)
	}
}

func TestDonationsList_ReturnsLedger(t *testing.T) {
	sql := &fakeSQL{
		queryFn: func(query string, args ...any) (pgx.Rows, error) {
			if query != sqlinline.QListCampaignDonations {
				t.Fatalf("unexpected query: %s", query)
			}
			return &fakeRows{rows: [][]any{
				{"d1", "c1", member.ID, int64(10000), domain.MethodDirect, "", "KE", time.Now()},
			}}, nil
		},
	}
	app := donationApp(sql, nil)

	req := withURLParam(authedRequest("GET", "/campaigns/c1/donations", "", middleware.Identity{}), "id", "c1")
	rr := httptest.NewRecorder()
	app.DonationsList(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body)
	}
	var resp struct {
		Items []struct {
			Amount       float64 `json:"amount"`
			DonorCountry string  `json:"donor_country"`
		} `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Amount != 100 || resp.Items[0].DonorCountry != "KE" {
		t.Fatalf("unexpected items: %+v", resp.Items)
	}
}
