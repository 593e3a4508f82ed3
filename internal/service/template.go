// Package service contains the business logic: template management and the
// certificate registry. Services own all mutation of the stored
// collections, so the structural invariants (template non-emptiness, one
// record per user) are enforced in one place. They assume a single writer
// at a time and take no internal locks.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/mahir/certhub/internal/apperror"
	"github.com/mahir/certhub/internal/model"
	"github.com/mahir/certhub/internal/repository"
)

// Field defaults for a freshly added template, matching the values the
// editor starts a new design from.
const (
	newTemplateName        = "New Template"
	newTemplateBackground  = "#ffffff"
	newTemplateBorderColor = "#000000"
	newTemplateTextColor   = "#000000"
)

// TemplateStore manages the certificate template collection.
//
// Invariant: once initialized the collection is never empty. Every read
// path seeds the default template into an empty collection before anything
// else is observable, and Delete refuses to remove the last entry.
type TemplateStore struct {
	store  repository.CollectionStore
	logger *slog.Logger
}

func NewTemplateStore(store repository.CollectionStore, logger *slog.Logger) *TemplateStore {
	return &TemplateStore{
		store:  store,
		logger: logger,
	}
}

// load reads the template collection, seeding the default template first if
// the collection is empty.
func (s *TemplateStore) load(ctx context.Context) ([]model.Template, error) {
	templates, err := s.store.Templates(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	if len(templates) > 0 {
		return templates, nil
	}

	templates = []model.Template{model.DefaultTemplate()}
	if err := s.store.SaveTemplates(ctx, templates); err != nil {
		return nil, fmt.Errorf("seeding default template: %w", err)
	}
	s.logger.Info("seeded default certificate template",
		slog.String("id", model.DefaultTemplateID),
	)
	return templates, nil
}

// List returns the ordered template collection. Never empty.
func (s *TemplateStore) List(ctx context.Context) ([]model.Template, error) {
	return s.load(ctx)
}

// Add creates a template from draft with a freshly generated id. Zero-value
// draft fields get neutral defaults; style fields are normalized to their
// closed sets before the template is stored.
func (s *TemplateStore) Add(ctx context.Context, draft model.Template) (*model.Template, error) {
	templates, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	tpl := draft
	tpl.ID = xid.New().String()
	if strings.TrimSpace(tpl.Name) == "" {
		tpl.Name = newTemplateName
	}
	if tpl.BackgroundColor == "" {
		tpl.BackgroundColor = newTemplateBackground
	}
	if tpl.BorderColor == "" {
		tpl.BorderColor = newTemplateBorderColor
	}
	if tpl.TextColor == "" {
		tpl.TextColor = newTemplateTextColor
	}
	tpl.Normalize()

	templates = append(templates, tpl)
	if err := s.store.SaveTemplates(ctx, templates); err != nil {
		s.logger.Error("failed to add template",
			slog.String("name", tpl.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding template: %w", err)
	}

	s.logger.Info("template added",
		slog.String("id", tpl.ID),
		slog.String("name", tpl.Name),
	)
	return &tpl, nil
}

// Update replaces all mutable fields of the template with the given id.
// The id itself is immutable. Returns ErrNotFound for an unknown id.
func (s *TemplateStore) Update(ctx context.Context, id string, fields model.Template) (*model.Template, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "template ID is required")
	}

	templates, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range templates {
		if templates[i].ID != id {
			continue
		}
		updated := fields
		updated.ID = id
		updated.Normalize()
		templates[i] = updated

		if err := s.store.SaveTemplates(ctx, templates); err != nil {
			s.logger.Error("failed to update template",
				slog.String("id", id),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("updating template: %w", err)
		}

		s.logger.Info("template updated",
			slog.String("id", id),
			slog.String("name", updated.Name),
		)
		return &updated, nil
	}

	return nil, apperror.NotFound("template", id)
}

// Delete removes the template with the given id. Removing the last
// remaining template is rejected with ErrInvariant and leaves the
// collection unchanged.
func (s *TemplateStore) Delete(ctx context.Context, id string) error {
	templates, err := s.load(ctx)
	if err != nil {
		return err
	}

	if len(templates) <= 1 {
		return apperror.InvariantViolation("at least one template must remain")
	}

	kept := make([]model.Template, 0, len(templates)-1)
	found := false
	for _, tpl := range templates {
		if tpl.ID == id {
			found = true
			continue
		}
		kept = append(kept, tpl)
	}
	if !found {
		return apperror.NotFound("template", id)
	}

	if err := s.store.SaveTemplates(ctx, kept); err != nil {
		s.logger.Error("failed to delete template",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting template: %w", err)
	}

	s.logger.Info("template deleted", slog.String("id", id))
	return nil
}

// Resolve returns the template for id, falling back to the default template
// when id is unknown or empty. Certificate records keep their templateId
// after a template is deleted; this fallback keeps those dangling
// references renderable, so resolution has no not-found case. The only
// error is a storage failure.
func (s *TemplateStore) Resolve(ctx context.Context, id string) (model.Template, error) {
	templates, err := s.load(ctx)
	if err != nil {
		return model.Template{}, err
	}

	for _, tpl := range templates {
		if tpl.ID == id {
			return tpl, nil
		}
	}
	for _, tpl := range templates {
		if tpl.ID == model.DefaultTemplateID {
			return tpl, nil
		}
	}
	// The seeded default can itself have been deleted once other templates
	// exist; the built-in values are the fallback of last resort.
	return model.DefaultTemplate(), nil
}
