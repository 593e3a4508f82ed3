package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mahir/certhub/internal/model"
	"github.com/mahir/certhub/internal/repository"
)

// Compile-time check that *DB satisfies the store interface.
var _ repository.CollectionStore = (*DB)(nil)

// Collection names, which double as the top-level keys of the persisted
// state. The names are part of the storage contract and must not change.
const (
	usersCollection        = "users"
	templatesCollection    = "certificateTemplates"
	certificatesCollection = "certificates"
)

// readDoc unmarshals the named collection document into out. A missing row
// is not an error; it reads as the empty collection, leaving out untouched.
func (db *DB) readDoc(ctx context.Context, name string, out any) error {
	var doc string
	err := db.conn.QueryRowContext(ctx,
		`SELECT doc FROM collections WHERE name = ?`, name,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("sqlite: reading collection %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(doc), out); err != nil {
		return fmt.Errorf("sqlite: decoding collection %s: %w", name, err)
	}
	return nil
}

// writeDoc replaces the named collection document with the serialized form
// of in. The upsert makes first writes and replacements the same statement.
func (db *DB) writeDoc(ctx context.Context, name string, in any) error {
	doc, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("sqlite: encoding collection %s: %w", name, err)
	}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO collections (name, doc, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		name, string(doc), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: writing collection %s: %w", name, err)
	}
	return nil
}

func (db *DB) Users(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := db.readDoc(ctx, usersCollection, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (db *DB) SaveUsers(ctx context.Context, users []model.User) error {
	return db.writeDoc(ctx, usersCollection, users)
}

func (db *DB) Templates(ctx context.Context) ([]model.Template, error) {
	templates := []model.Template{}
	if err := db.readDoc(ctx, templatesCollection, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (db *DB) SaveTemplates(ctx context.Context, templates []model.Template) error {
	return db.writeDoc(ctx, templatesCollection, templates)
}

func (db *DB) Certificates(ctx context.Context) ([]model.CertificateRecord, error) {
	records := []model.CertificateRecord{}
	if err := db.readDoc(ctx, certificatesCollection, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (db *DB) SaveCertificates(ctx context.Context, records []model.CertificateRecord) error {
	return db.writeDoc(ctx, certificatesCollection, records)
}
