// Package main is the entry point for the certificate generator.
//
// Its job is to read configuration, wire dependencies, and run one full
// issuance cycle: materialize certificate records for all registered users,
// export each as a PDF, and write the report files alongside them.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mahir/certhub/internal/export"
	"github.com/mahir/certhub/internal/model"
	"github.com/mahir/certhub/internal/render"
	"github.com/mahir/certhub/internal/repository"
	"github.com/mahir/certhub/internal/repository/sqlite"
	"github.com/mahir/certhub/internal/service"
	"github.com/mahir/certhub/internal/share"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	dbPath := envOr("DB_PATH", "data/certhub.db")
	outDir := envOr("OUT_DIR", "out")
	baseURL := envOr("BASE_URL", "http://localhost:3000")

	if err := run(context.Background(), logger, dbPath, outDir, baseURL); err != nil {
		logger.Error("certificate generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, dbPath, outDir, baseURL string) error {
	for _, dir := range []string{filepath.Dir(dbPath), outDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	db, err := sqlite.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := seedUsers(ctx, db); err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}

	templates := service.NewTemplateStore(db, logger)
	registry := service.NewRegistry(db, logger)
	pipeline := export.NewPipeline(db, templates, render.NewSurface(), logger)
	links := share.NewBuilder(baseURL)

	records, err := registry.Materialize(ctx)
	if err != nil {
		return fmt.Errorf("materializing certificates: %w", err)
	}
	logger.Info("certificates materialized", slog.Int("count", len(records)))

	for _, record := range records {
		doc, err := pipeline.ToDocument(ctx, record)
		if err != nil {
			return fmt.Errorf("exporting certificate %s: %w", record.ID, err)
		}
		path := filepath.Join(outDir, doc.Filename)
		if err := os.WriteFile(path, doc.Data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}

		wa, _ := links.Build(share.PlatformWhatsApp, record.ID)
		li, _ := links.Build(share.PlatformLinkedIn, record.ID)
		logger.Info("certificate exported",
			slog.String("student", record.StudentName),
			slog.String("file", path),
			slog.String("whatsapp", wa),
			slog.String("linkedin", li),
		)
	}

	return writeReports(logger, outDir)
}

func writeReports(logger *slog.Logger, outDir string) error {
	day := time.Now()
	for _, report := range export.Reports() {
		path := filepath.Join(outDir, report.Filename(day))
		if err := os.WriteFile(path, []byte(export.ToDelimitedText(report.Data)), 0644); err != nil {
			return fmt.Errorf("writing report %s: %w", path, err)
		}
		logger.Info("report written", slog.String("file", path))
	}
	return nil
}

// seedUsers loads a small demo roster on first run so a fresh database
// produces output immediately.
func seedUsers(ctx context.Context, store repository.CollectionStore) error {
	existing, err := store.Users(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	return store.SaveUsers(ctx, demoUsers())
}

func demoUsers() []model.User {
	return []model.User{
		{ID: 1, Name: "John Doe", Email: "john.doe@example.com", RegNumber: "REG-001", Role: "student", Status: model.StatusActive, JoinedDate: "2024-01-15"},
		{ID: 2, Name: "Jane Smith", Email: "jane.smith@example.com", RegNumber: "REG-002", Role: "student", Status: model.StatusActive, JoinedDate: "2024-01-10"},
		{ID: 3, Name: "Rahim Ahmed", Email: "rahim.ahmed@example.com", RegNumber: "REG-003", Role: "student", Status: model.StatusActive, JoinedDate: "2024-02-01"},
		{ID: 4, Name: "Maria Garcia", Email: "maria.garcia@example.com", RegNumber: "REG-004", Role: "student", Status: model.StatusActive, JoinedDate: "2024-02-20"},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
