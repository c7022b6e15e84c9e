package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"campusfund/internal/domain"
)

// CampaignRepositoryPG loads campaign snapshots straight off the pool. The
// live broker uses it outside any HTTP request.
type CampaignRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewCampaignRepository creates a new campaign repo.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepositoryPG {
	return &CampaignRepositoryPG{pool: pool}
}

// ListByStatus returns campaigns in the given status, newest first.
func (r *CampaignRepositoryPG) ListByStatus(ctx context.Context, status domain.CampaignStatus, limit int) ([]domain.Campaign, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, title, description, category, image_url, goal_amount_cents, current_amount_cents, creator_id, creator_email, status, created_at
FROM campaigns
WHERE status = $1
ORDER BY created_at DESC
LIMIT $2;
`, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Campaign
	for rows.Next() {
		var c domain.Campaign
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.ImageURL,
			&c.GoalAmountCents, &c.CurrentAmountCents, &c.CreatorID, &c.CreatorEmail,
			&c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

var _ domain.CampaignReader = (*CampaignRepositoryPG)(nil)
