package ports

import "context"

// PlayerResult records one player's outcome for a finished game.
type PlayerResult struct {
	UserID string
	Won    bool
}

// StatsPort defines the interface for persisting per-player game records.
type StatsPort interface {
	// RecordResults applies the outcome of one finished game to every
	// listed player's running totals.
	RecordResults(ctx context.Context, results []PlayerResult) error
}
