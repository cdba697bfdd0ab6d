package sqlite

import "embed"

// FS embeds the SQLite schema of the ledger store. golang-migrate reads
// these files through the iofs driver.
//
//go:embed *.sql
var FS embed.FS

const Version = 1
