package domain

import "context"

// CampaignReader loads campaign snapshots for live views.
type CampaignReader interface {
	ListByStatus(ctx context.Context, status CampaignStatus, limit int) ([]Campaign, error)
}
