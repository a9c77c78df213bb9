package sqlinline

import _ "embed"

// Schema creates every table the postgres store driver needs. Statements are
// idempotent so it can be applied on each deploy.
//
//go:embed schema.sql
var Schema string
