package sqlinline

const QSelectGuestAttempts = `--sql 9972293a-6c4b-472a-9912-c5103de02e72
select attempts_used
from guest_quota
where scope = $1::text
  and tool_key = $2::text
limit 1;
`

// QIncrementGuestAttempts returns no row when the counter already sits at
// the limit ($3).
const QIncrementGuestAttempts = `--sql 4ad3ee22-6c8f-4515-8d89-8fb86ae2ab7d
insert into guest_quota as q (scope, tool_key, attempts_used, updated_at)
select $1::text, $2::text, 1, now()
where $3::int > 0
on conflict (scope, tool_key) do update set
    attempts_used = q.attempts_used + 1,
    updated_at = now()
where q.attempts_used < $3::int
returning attempts_used;
`
