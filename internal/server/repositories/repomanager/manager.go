// Package repomanager wires repository constructors together and exposes a
// schema migration hook.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/jobdeck/jobdeck/internal/dbx"
	"github.com/jobdeck/jobdeck/internal/server/repositories/applications"
	"github.com/jobdeck/jobdeck/internal/server/repositories/files"
	"github.com/jobdeck/jobdeck/internal/server/repositories/identities"
	"github.com/jobdeck/jobdeck/internal/server/repositories/notes"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// several repositories inside one transaction.
type RepositoryManager interface {
	Identities(db dbx.DBTX) identities.Repository
	Files(db dbx.DBTX) files.Repository
	Applications(db dbx.DBTX) applications.Repository
	Notes(db dbx.DBTX) notes.Repository

	RunMigrations(ctx context.Context, db *sql.DB) error
}
