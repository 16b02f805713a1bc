package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"mindsoothe-backend/internal/models"
)

const exportTimeout = 30 * time.Second

type exchangeLister interface {
	ListBySession(ctx context.Context, sessionKey string, limit int) ([]*models.Exchange, error)
}

// exportSession writes the session's archived exchanges to w as JSON lines,
// oldest first.
func exportSession(ctx context.Context, archive exchangeLister, sessionKey string, limit int, w io.Writer) (int, error) {
	exchanges, err := archive.ListBySession(ctx, sessionKey, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list exchanges for session %s: %w", sessionKey, err)
	}

	enc := json.NewEncoder(w)
	for i := len(exchanges) - 1; i >= 0; i-- {
		if err := enc.Encode(exchanges[i]); err != nil {
			return 0, fmt.Errorf("failed to write exchange: %w", err)
		}
	}
	return len(exchanges), nil
}

// runExport opens the archive named by archiveURL and exports one session.
func runExport(archiveURL, sessionKey string, limit int, w io.Writer) (int, error) {
	recorder, closeArchive, err := openArchive(archiveURL)
	if err != nil {
		return 0, err
	}
	defer closeArchive()

	if recorder == nil {
		return 0, fmt.Errorf("ARCHIVE_URL is not set")
	}
	lister, ok := recorder.(exchangeLister)
	if !ok {
		return 0, fmt.Errorf("archive %T cannot list exchanges", recorder)
	}

	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()
	return exportSession(ctx, lister, sessionKey, limit, w)
}
