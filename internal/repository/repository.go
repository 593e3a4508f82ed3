// Package repository declares the storage interfaces the services depend
// on. Implementations live in subpackages (sqlite); tests inject in-memory
// fakes.
package repository

import (
	"context"

	"github.com/mahir/certhub/internal/model"
)

// CollectionStore persists the three top-level collections with
// read-whole / replace-whole semantics. Each Save call replaces the entire
// collection atomically; there are no per-row operations. Invariants such
// as template non-emptiness and one-record-per-user are enforced by the
// services, which are the only writers.
type CollectionStore interface {
	Users(ctx context.Context) ([]model.User, error)
	SaveUsers(ctx context.Context, users []model.User) error

	Templates(ctx context.Context) ([]model.Template, error)
	SaveTemplates(ctx context.Context, templates []model.Template) error

	Certificates(ctx context.Context) ([]model.CertificateRecord, error)
	SaveCertificates(ctx context.Context, records []model.CertificateRecord) error
}
