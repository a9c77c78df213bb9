package sqlinline

const QInsertUsageRecord = `--sql fe8255db-8c5b-45a0-81ee-b2ef4b327d9b
insert into usage_records (id, account_id, tool_key, kind, credits_charged, country, created_at)
values ($1::uuid, $2::uuid, $3::text, $4::text, $5::bigint, nullif($6::text, ''), $7::timestamptz);
`

const QListUsageByAccount = `--sql 49cc7cc7-e9c7-4b58-a9ba-ddcc780f966f
select id::text, account_id::text, tool_key, kind, credits_charged, coalesce(country, ''), created_at
from usage_records
where account_id = $1::uuid
order by created_at desc, id desc
limit $2::int;
`

const QUsageStats = `--sql 341450a0-6385-403e-aeae-9dfdaa0f64b8
select
    coalesce(sum(credits_charged), 0)::bigint as total_usage,
    count(*)::bigint as total_sessions,
    coalesce(round(avg(credits_charged)), 0)::bigint as avg_credits,
    count(distinct account_id)::bigint as active_accounts
from usage_records;
`
