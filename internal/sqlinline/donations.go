package sqlinline

const QInsertDonation = `--sql donation_insert
insert into donations (id, campaign_id, user_id, amount_cents, method, payment_ref, donor_country, created_at)
values (gen_random_uuid(), $1::uuid, $2::uuid, $3::bigint, $4::text, $5::text, $6::text, now())
returning id;
`

const QListCampaignDonations = `--sql donation_list_by_campaign
select id, campaign_id, user_id, amount_cents, method, payment_ref, donor_country, created_at
from donations
where campaign_id = $1::uuid
order by created_at desc
limit $2::int;
`
