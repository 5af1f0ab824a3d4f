package stats

import (
	"context"

	"github.com/rewired-gh/slatewatch/internal/espn"
	"github.com/rewired-gh/slatewatch/internal/models"
)

// SummaryFetcher is the part of the ESPN client Source needs.
type SummaryFetcher interface {
	FetchSummary(ctx context.Context, gameID string) (*espn.Summary, error)
}

// Source fetches game summaries and normalizes them.
type Source struct {
	client SummaryFetcher
}

// NewSource wraps client.
func NewSource(client SummaryFetcher) *Source {
	return &Source{client: client}
}

// FetchGameStats fetches and extracts the stats of one game.
func (s *Source) FetchGameStats(ctx context.Context, gameID string) (*models.GameStats, error) {
	summary, err := s.client.FetchSummary(ctx, gameID)
	if err != nil {
		return nil, err
	}
	gs := Extract(gameID, summary)
	return &gs, nil
}
