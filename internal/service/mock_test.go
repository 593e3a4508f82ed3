package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/mahir/certhub/internal/model"
)

// mockStore is an in-memory CollectionStore. It stores copies so a test
// can't accidentally share slices with the code under test, and counts
// saves so idempotence tests can assert that nothing was written.
type mockStore struct {
	users     []model.User
	templates []model.Template
	records   []model.CertificateRecord

	saveTemplateCalls    int
	saveCertificateCalls int
}

func (m *mockStore) Users(_ context.Context) ([]model.User, error) {
	return append([]model.User(nil), m.users...), nil
}

func (m *mockStore) SaveUsers(_ context.Context, users []model.User) error {
	m.users = append([]model.User(nil), users...)
	return nil
}

func (m *mockStore) Templates(_ context.Context) ([]model.Template, error) {
	return append([]model.Template(nil), m.templates...), nil
}

func (m *mockStore) SaveTemplates(_ context.Context, templates []model.Template) error {
	m.saveTemplateCalls++
	m.templates = append([]model.Template(nil), templates...)
	return nil
}

func (m *mockStore) Certificates(_ context.Context) ([]model.CertificateRecord, error) {
	return append([]model.CertificateRecord(nil), m.records...), nil
}

func (m *mockStore) SaveCertificates(_ context.Context, records []model.CertificateRecord) error {
	m.saveCertificateCalls++
	m.records = append([]model.CertificateRecord(nil), records...)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestTemplateStore(t *testing.T) (*TemplateStore, *mockStore) {
	t.Helper()
	store := &mockStore{}
	return NewTemplateStore(store, testLogger()), store
}

func newTestRegistry(t *testing.T) (*Registry, *mockStore) {
	t.Helper()
	store := &mockStore{}
	return NewRegistry(store, testLogger()), store
}
