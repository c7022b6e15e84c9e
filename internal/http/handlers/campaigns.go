package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"campusfund/internal/domain"
	"campusfund/internal/sqlinline"
)

const listLimit = 200

type campaignCreateRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	ImageURL    string      `json:"image_url"`
	GoalAmount  json.Number `json:"goal_amount"`
}

func (a *App) CampaignsCreate(w http.ResponseWriter, r *http.Request) {
	ident, ok := a.currentUser(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "log in to create a campaign")
		return
	}

	var req campaignCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Category = strings.TrimSpace(req.Category)
	goalCents, err := domain.ParseAmount(req.GoalAmount.String())
	if err != nil {
		a.fail(w, err)
		return
	}
	input := domain.NewCampaignInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		GoalCents:   goalCents,
	}
	if err := domain.ValidateNewCampaign(input); err != nil {
		a.fail(w, err)
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertCampaign,
		req.Title, req.Description, req.Category, req.ImageURL, goalCents, ident.ID, ident.Email)
	var id string
	var createdAt time.Time
	if err := row.Scan(&id, &createdAt); err != nil {
		a.fail(w, err)
		return
	}
	a.notifyCampaignsChanged(r, id)

	a.json(w, http.StatusCreated, map[string]any{
		"id":         id,
		"status":     domain.StatusPending,
		"created_at": createdAt,
		"message":    "campaign created and awaiting approval",
	})
}

// CampaignsList serves the public catalog: approved campaigns, newest first.
// Admins may ask for another status with ?status=.
func (a *App) CampaignsList(w http.ResponseWriter, r *http.Request) {
	status := domain.StatusApproved
	if q := r.URL.Query().Get("status"); q != "" {
		ident, _ := a.currentUser(r)
		if ident.Role != domain.RoleAdmin {
			a.error(w, http.StatusForbidden, "forbidden", "status filter is admin-only")
			return
		}
		status = domain.CampaignStatus(q)
		if !status.Valid() {
			a.error(w, http.StatusBadRequest, "bad_request", "unknown status")
			return
		}
	}
	a.listCampaigns(w, r, status)
}

// CampaignsPending is the admin moderation queue.
func (a *App) CampaignsPending(w http.ResponseWriter, r *http.Request) {
	a.listCampaigns(w, r, domain.StatusPending)
}

func (a *App) listCampaigns(w http.ResponseWriter, r *http.Request, status domain.CampaignStatus) {
	rows, err := a.SQL.Query(r.Context(), sqlinline.QListCampaignsByStatus, string(status), listLimit)
	if err != nil {
		a.fail(w, err)
		return
	}
	defer rows.Close()

	items := []domain.Campaign{}
	for rows.Next() {
		var c domain.Campaign
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.ImageURL,
			&c.GoalAmountCents, &c.CurrentAmountCents, &c.CreatorID, &c.CreatorEmail,
			&c.Status, &c.CreatedAt); err != nil {
			a.fail(w, err)
			return
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) CampaignsGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectCampaignByID, id)
	var c domain.Campaign
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.ImageURL,
		&c.GoalAmountCents, &c.CurrentAmountCents, &c.CreatorID, &c.CreatorEmail,
		&c.Status, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusNotFound, "not_found", "campaign not found")
			return
		}
		a.fail(w, err)
		return
	}
	// Rejected campaigns read as absent outside the admin audit view.
	if c.Status == domain.StatusRejected {
		ident, _ := a.currentUser(r)
		if ident.Role != domain.RoleAdmin {
			a.error(w, http.StatusNotFound, "not_found", "campaign not found")
			return
		}
	}
	a.json(w, http.StatusOK, c)
}

// CampaignsApprove moves a pending campaign to approved. Re-approving an
// approved campaign is a no-op success so concurrent admin sessions and
// client retries stay safe.
func (a *App) CampaignsApprove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tag, err := a.SQL.Exec(r.Context(), sqlinline.QApproveCampaign, id)
	if err != nil {
		a.fail(w, err)
		return
	}
	if tag.RowsAffected() == 1 {
		a.notifyCampaignsChanged(r, id)
		a.json(w, http.StatusOK, map[string]any{"id": id, "status": domain.StatusApproved})
		return
	}

	status, err := a.campaignStatus(r, id)
	switch {
	case err != nil:
		a.fail(w, err)
	case status == domain.StatusApproved:
		a.json(w, http.StatusOK, map[string]any{"id": id, "status": domain.StatusApproved})
	default:
		a.error(w, http.StatusConflict, "invalid_state", "campaign is not pending approval")
	}
}

// CampaignsReject marks the terminal rejected state. The record is kept for
// audit; rejecting something already gone reports already_removed.
func (a *App) CampaignsReject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tag, err := a.SQL.Exec(r.Context(), sqlinline.QRejectCampaign, id)
	if err != nil {
		a.fail(w, err)
		return
	}
	if tag.RowsAffected() == 1 {
		a.notifyCampaignsChanged(r, id)
		a.json(w, http.StatusOK, map[string]any{"id": id, "status": domain.StatusRejected})
		return
	}
	a.error(w, http.StatusGone, "already_removed", "campaign already removed")
}

func (a *App) campaignStatus(r *http.Request, id string) (domain.CampaignStatus, error) {
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectCampaignStatus, id)
	var status domain.CampaignStatus
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return status, nil
}

// notifyCampaignsChanged wakes the live views. Best-effort: a missed notify
// only delays the next snapshot, so failures are logged and swallowed.
func (a *App) notifyCampaignsChanged(r *http.Request, id string) {
	if _, err := a.SQL.Exec(r.Context(), sqlinline.QNotifyCampaignsChanged, id); err != nil {
		a.Logger.Error().Err(err).Str("campaign_id", id).Msg("campaign change notify failed")
	}
}

// CampaignsLive streams the public catalog as SSE snapshots.
func (a *App) CampaignsLive(w http.ResponseWriter, r *http.Request) {
	a.streamCampaigns(w, r, domain.StatusApproved)
}

// CampaignsPendingLive streams the moderation queue to admin dashboards.
func (a *App) CampaignsPendingLive(w http.ResponseWriter, r *http.Request) {
	a.streamCampaigns(w, r, domain.StatusPending)
}

func (a *App) streamCampaigns(w http.ResponseWriter, r *http.Request, status domain.CampaignStatus) {
	if a.Live == nil {
		a.error(w, http.StatusServiceUnavailable, "store_unavailable", "live updates unavailable")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		a.error(w, http.StatusInternalServerError, "internal", "streaming unsupported")
		return
	}

	snapshots, cancel, err := a.Live.Subscribe(r.Context(), status)
	if err != nil {
		a.fail(w, err)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for {
		select {
		case <-r.Context().Done():
			return
		case snapshot := <-snapshots:
			if snapshot.Err != nil {
				// The feed is broken; tell the client to resubscribe and
				// end the stream.
				_, _ = w.Write([]byte("event: error\ndata: {\"error\":{\"code\":\"store_unavailable\",\"message\":\"live feed interrupted, resubscribe\"}}\n\n"))
				flusher.Flush()
				return
			}
			payload, err := json.Marshal(map[string]any{"items": snapshot.Items})
			if err != nil {
				a.Logger.Error().Err(err).Msg("encode live snapshot failed")
				return
			}
			if _, err := w.Write([]byte("event: snapshot\ndata: ")); err != nil {
				return
			}
			if _, err := w.Write(payload); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
