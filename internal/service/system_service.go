package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/database"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/repository"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db        *sql.DB
	batchRepo *repository.BatchRepository
	archive   *Archive
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB, batchRepo *repository.BatchRepository, archive *Archive) *SystemService {
	return &SystemService{
		db:        db,
		batchRepo: batchRepo,
		archive:   archive,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion reports the application and schema versions and which
// optional features are active.
func (s *SystemService) CheckVersion(ctx context.Context) (*model.VersionInfo, error) {
	current, err := database.SchemaVersion(s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}
	latest, err := database.LatestVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	batches, err := s.batchRepo.Available(ctx)
	if err != nil {
		return nil, err
	}

	info := &model.VersionInfo{
		AppVersion:    version.Version,
		SchemaVersion: current,
		LatestSchema:  latest,
		Features: map[string]bool{
			model.FeatureImportBatches:    batches,
			model.FeatureStatementArchive: s.archive.Enabled(),
		},
		MigrationNeeded: current < latest,
	}
	if info.MigrationNeeded {
		msg := fmt.Sprintf("database schema is at version %d, latest is %d", current, latest)
		info.MigrationMessage = &msg
	}
	return info, nil
}
