package sqlinline

const QInsertCampaign = `--sql campaign_insert
insert into campaigns (id, title, description, category, image_url, goal_amount_cents, current_amount_cents, creator_id, creator_email, status, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::text, $3::text, $4::text, $5::bigint, 0, $6::uuid, $7::text, 'pending', now(), now())
returning id, created_at;
`

const QSelectCampaignByID = `--sql campaign_select_by_id
select id, title, description, category, image_url, goal_amount_cents, current_amount_cents, creator_id, creator_email, status, created_at
from campaigns
where id = $1::uuid
limit 1;
`

const QSelectCampaignStatus = `--sql campaign_select_status
select status
from campaigns
where id = $1::uuid
limit 1;
`

const QListCampaignsByStatus = `--sql campaign_list_by_status
select id, title, description, category, image_url, goal_amount_cents, current_amount_cents, creator_id, creator_email, status, created_at
from campaigns
where status = $1::text
order by created_at desc
limit $2::int;
`

// Approve is a guarded transition: only a pending campaign moves.
const QApproveCampaign = `--sql campaign_approve
update campaigns
set status = 'approved', updated_at = now()
where id = $1::uuid and status = 'pending';
`

// Reject marks the terminal state instead of deleting, so moderation
// decisions stay auditable. Approved campaigns may still be taken down.
const QRejectCampaign = `--sql campaign_reject
update campaigns
set status = 'rejected', updated_at = now()
where id = $1::uuid and status <> 'rejected';
`

// The increment happens entirely inside the store so concurrent donations
// to the same campaign serialize and none is lost. Only approved campaigns
// accept donations.
const QIncrementCampaignAmount = `--sql campaign_increment_amount
update campaigns
set current_amount_cents = current_amount_cents + $2::bigint, updated_at = now()
where id = $1::uuid and status = 'approved'
returning current_amount_cents;
`

const QNotifyCampaignsChanged = `--sql campaign_notify_changed
select pg_notify('campaigns_changed', $1::text);
`
