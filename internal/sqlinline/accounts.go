package sqlinline

const QInsertAccount = `--sql d360a5cf-ec67-4137-9e06-33244decaad1
insert into accounts (id, email, plan, credits, is_admin, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::bigint, $5::boolean, now(), now())
returning id::text, email, plan, credits, is_admin, created_at, updated_at;
`

const QSelectAccountByID = `--sql 41275a9d-e221-4db7-a747-232847dc428b
select id::text, email, plan, credits, is_admin, created_at, updated_at
from accounts
where id = $1::uuid
limit 1;
`

const QSelectAccountCredits = `--sql 1090ba4c-7b2a-4535-80fc-cd3467c3ccf0
select credits
from accounts
where id = $1::uuid
limit 1;
`

// QDebitAccount only matches when the balance covers the charge, so a
// concurrent debit can never take credits below zero.
const QDebitAccount = `--sql 822ad7cc-fb19-42d2-80d6-3706c0245a01
update accounts
set credits = credits - $2::bigint,
    updated_at = now()
where id = $1::uuid
  and credits >= $2::bigint
returning credits;
`

const QGrantCredits = `--sql 6789a9fe-4845-4200-850d-1f266029eb26
update accounts
set credits = credits + $2::bigint,
    updated_at = now()
where id = $1::uuid
returning credits;
`
