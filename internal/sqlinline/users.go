package sqlinline

// Insert returns no row when the email is already taken; callers treat the
// empty result as a duplicate registration.
const QInsertUser = `--sql user_insert
insert into users (id, email, display_name, password_hash, created_at, updated_at)
values (gen_random_uuid(), lower($1::text), $2::text, $3::text, now(), now())
on conflict (email) do nothing
returning id;
`

const QSelectUserByEmail = `--sql user_select_by_email
select id, email, display_name, password_hash, created_at
from users
where email = lower($1::text)
limit 1;
`

const QSelectUserByID = `--sql user_select_by_id
select id, email, display_name, created_at
from users
where id = $1::uuid
limit 1;
`
