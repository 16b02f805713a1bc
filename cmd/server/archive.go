package main

import (
	"fmt"
	"strings"

	"mindsoothe-backend/internal/database"
	"mindsoothe-backend/internal/repository"
	"mindsoothe-backend/internal/services"
)

const (
	archiveNone     = ""
	archivePostgres = "postgres"
	archiveSQLite   = "sqlite"
)

// parseArchiveURL picks the archive backend for rawURL and returns the
// connection string that backend expects.
func parseArchiveURL(rawURL string) (kind, dsn string, err error) {
	switch {
	case rawURL == "":
		return archiveNone, "", nil
	case strings.HasPrefix(rawURL, "postgres://"), strings.HasPrefix(rawURL, "postgresql://"):
		return archivePostgres, rawURL, nil
	case strings.HasPrefix(rawURL, "sqlite://"):
		path := strings.TrimPrefix(rawURL, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite archive URL has no path")
		}
		return archiveSQLite, path, nil
	default:
		return "", "", fmt.Errorf("unsupported archive URL %q", rawURL)
	}
}

// openArchive connects the exchange archive named by rawURL. With no URL the
// recorder is nil and nothing is archived.
func openArchive(rawURL string) (services.ExchangeRecorder, func(), error) {
	kind, dsn, err := parseArchiveURL(rawURL)
	if err != nil {
		return nil, func() {}, err
	}

	switch kind {
	case archivePostgres:
		pool, err := database.NewPostgresPool(dsn)
		if err != nil {
			return nil, func() {}, err
		}
		if err := database.RunMigrations(pool, database.Migrations()); err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		repo := repository.NewExchangeRepo(pool)
		return repo, repo.Close, nil
	case archiveSQLite:
		db, err := database.NewSQLiteDB(dsn)
		if err != nil {
			return nil, func() {}, err
		}
		repo := repository.NewSQLiteExchangeRepo(db)
		return repo, repo.Close, nil
	default:
		return nil, func() {}, nil
	}
}
