package repository

import (
	_ "embed"
)

// Schema is the Postgres DDL for drafts, picks, the outbox and the
// collaborator tables the draft room reads. Every statement is idempotent.
//
//go:embed schema.sql
var Schema string
