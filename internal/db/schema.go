package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
create table if not exists users (
    id uuid primary key default gen_random_uuid(),
    email text not null unique,
    display_name text not null,
    password_hash text not null,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);

create table if not exists campaigns (
    id uuid primary key default gen_random_uuid(),
    title text not null,
    description text not null,
    category text not null,
    image_url text not null default '',
    goal_amount_cents bigint not null check (goal_amount_cents > 0),
    current_amount_cents bigint not null default 0 check (current_amount_cents >= 0),
    creator_id uuid not null references users(id),
    creator_email text not null,
    status text not null default 'pending' check (status in ('pending', 'approved', 'rejected')),
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);

create index if not exists campaigns_status_created_idx
    on campaigns (status, created_at desc);

create table if not exists donations (
    id uuid primary key default gen_random_uuid(),
    campaign_id uuid not null references campaigns(id),
    user_id uuid not null references users(id),
    amount_cents bigint not null check (amount_cents > 0),
    method text not null default 'direct',
    payment_ref text not null default '',
    donor_country text not null default '',
    created_at timestamptz not null default now()
);

create index if not exists donations_campaign_created_idx
    on donations (campaign_id, created_at desc);
`

// Bootstrap applies the schema. Statements are idempotent so running at every
// startup is safe.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
