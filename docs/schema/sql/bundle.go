// Package sqldocs embeds the DDL for the normalized catalog relations.
package sqldocs

import _ "embed"

// SQLite contains the SQLite DDL for the normalized relations.
//
//go:embed sqlite.sql
var SQLite string

// Postgres contains the Postgres DDL for the normalized relations.
//
//go:embed postgres.sql
var Postgres string
