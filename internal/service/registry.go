package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/mahir/certhub/internal/apperror"
	"github.com/mahir/certhub/internal/model"
	"github.com/mahir/certhub/internal/repository"
)

// Event fields stamped onto a record at materialization time. Certificates
// are issued for one fixed workshop; the values are part of the snapshot,
// not a live reference.
const (
	DefaultEventName  = "GeeksforGeeks Technical Workshop on Web Development"
	DefaultEventType  = "Technical Workshop"
	DefaultCourseName = "Web Development"
)

// Registry guarantees a one-to-one mapping between users and certificate
// records. Records are created lazily: the first materialization that sees
// a user without a record synthesizes one from the user's current profile.
// The copied fields are a snapshot; later profile edits never propagate,
// and no registry operation rewrites them.
type Registry struct {
	store  repository.CollectionStore
	logger *slog.Logger
	now    func() time.Time
}

func NewRegistry(store repository.CollectionStore, logger *slog.Logger) *Registry {
	return &Registry{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// newRecord synthesizes the certificate record for a user. Both the batch
// and single-user paths go through here so the two produce identical
// shapes. The issue date snapshots the user's join date, falling back to
// the materialization date when the profile has none.
func newRecord(user model.User, now time.Time) model.CertificateRecord {
	issueDate := user.JoinedDate
	if issueDate == "" {
		issueDate = now.Format("2006-01-02")
	}
	return model.CertificateRecord{
		ID:                 xid.New().String(),
		UserID:             user.ID,
		TemplateID:         model.DefaultTemplateID,
		StudentName:        user.Name,
		RegistrationNumber: user.RegNumber,
		CourseName:         DefaultCourseName,
		EventName:          DefaultEventName,
		EventType:          DefaultEventType,
		IssueDate:          issueDate,
	}
}

// materialize is the pure core of the registry: given the current user set
// and record set it returns the record set with exactly one new record
// appended per user id that lacks one. Existing records pass through
// untouched, so feeding the output back in yields no further records.
func materialize(users []model.User, existing []model.CertificateRecord, now time.Time) []model.CertificateRecord {
	seen := make(map[int]bool, len(existing))
	for _, rec := range existing {
		seen[rec.UserID] = true
	}

	records := existing
	for _, user := range users {
		if seen[user.ID] {
			continue
		}
		seen[user.ID] = true
		records = append(records, newRecord(user, now))
	}
	return records
}

// Materialize ensures every user has exactly one certificate record and
// returns the full record set. Idempotent: a second call with unchanged
// users appends nothing and writes nothing.
func (r *Registry) Materialize(ctx context.Context) ([]model.CertificateRecord, error) {
	users, err := r.store.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	existing, err := r.store.Certificates(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading certificates: %w", err)
	}

	records := materialize(users, existing, r.now())
	created := len(records) - len(existing)
	if created == 0 {
		return records, nil
	}

	if err := r.store.SaveCertificates(ctx, records); err != nil {
		r.logger.Error("failed to save materialized certificates",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving certificates: %w", err)
	}

	r.logger.Info("certificates materialized",
		slog.Int("created", created),
		slog.Int("total", len(records)),
	)
	return records, nil
}

// MaterializeForUser is the single-student flow: it returns the user's
// record, synthesizing one first if none exists. The synthesized record is
// identical in shape to the batch path. ErrNotFound if the user is unknown.
func (r *Registry) MaterializeForUser(ctx context.Context, userID int) (*model.CertificateRecord, error) {
	users, err := r.store.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}

	var user *model.User
	for i := range users {
		if users[i].ID == userID {
			user = &users[i]
			break
		}
	}
	if user == nil {
		return nil, apperror.NotFound("user", strconv.Itoa(userID))
	}

	records, err := r.store.Certificates(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading certificates: %w", err)
	}
	for i := range records {
		if records[i].UserID == userID {
			return &records[i], nil
		}
	}

	rec := newRecord(*user, r.now())
	records = append(records, rec)
	if err := r.store.SaveCertificates(ctx, records); err != nil {
		r.logger.Error("failed to save certificate",
			slog.Int("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving certificates: %w", err)
	}

	r.logger.Info("certificate created",
		slog.String("id", rec.ID),
		slog.Int("userId", userID),
	)
	return &rec, nil
}

// ReassignTemplate points the record at a different template. The template
// id is not validated against the template collection; dangling ids fall
// back to the default template at resolution time. ErrNotFound for an
// unknown record.
func (r *Registry) ReassignTemplate(ctx context.Context, recordID, templateID string) (*model.CertificateRecord, error) {
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return nil, apperror.ValidationFailed("recordId", "certificate record ID is required")
	}

	records, err := r.store.Certificates(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading certificates: %w", err)
	}

	for i := range records {
		if records[i].ID != recordID {
			continue
		}
		records[i].TemplateID = templateID

		if err := r.store.SaveCertificates(ctx, records); err != nil {
			r.logger.Error("failed to reassign template",
				slog.String("recordId", recordID),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("saving certificates: %w", err)
		}

		r.logger.Info("template reassigned",
			slog.String("recordId", recordID),
			slog.String("templateId", templateID),
		)
		rec := records[i]
		return &rec, nil
	}

	return nil, apperror.NotFound("certificate record", recordID)
}

// FindByUser returns the single record owned by userID, or ErrNotFound.
func (r *Registry) FindByUser(ctx context.Context, userID int) (*model.CertificateRecord, error) {
	records, err := r.store.Certificates(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading certificates: %w", err)
	}
	for i := range records {
		if records[i].UserID == userID {
			rec := records[i]
			return &rec, nil
		}
	}
	return nil, apperror.NotFound("certificate record for user", strconv.Itoa(userID))
}
