package sqlinline

const QSelectProviderKey = `--sql 41aa8abf-fac6-4221-90e0-cbff2cc8a2d0
select api_key
from provider_keys
where provider = $1::text;
`

const QUpsertProviderKey = `--sql f6ffc7eb-5a49-4327-ac6c-2bb64648d368
insert into provider_keys (provider, api_key, updated_at)
values ($1::text, $2::text, now())
on conflict (provider) do update set
    api_key = excluded.api_key,
    updated_at = now();
`
