package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/sqlc-dev/pqtype"
)

const QuerierCtxTimeout = time.Second * 10

// AnalyticsManager keeps per-server counters of created games, keyed
// by the server's IP. Increments are best-effort; a failed counter
// update never affects a match.
type AnalyticsManager struct {
	db *sql.DB
}

func NewAnalyticsManager(db *sql.DB) *AnalyticsManager {
	return &AnalyticsManager{db: db}
}

func (a *AnalyticsManager) IncrementGamesCreatedCount(ctx context.Context, serverIpNet pqtype.Inet) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO game_server_analytics (server_ip, games_created)
		VALUES ($1, 1)
		ON CONFLICT (server_ip) DO UPDATE SET games_created = game_server_analytics.games_created + 1`,
		serverIpNet,
	)
	return err
}

func (a *AnalyticsManager) IncrementBotGamesCreatedCount(ctx context.Context, serverIpNet pqtype.Inet) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO game_server_analytics (server_ip, bot_games_created)
		VALUES ($1, 1)
		ON CONFLICT (server_ip) DO UPDATE SET bot_games_created = game_server_analytics.bot_games_created + 1`,
		serverIpNet,
	)
	return err
}

func (a *AnalyticsManager) GetGamesCreatedCount(ctx context.Context, serverIpNet pqtype.Inet) (int64, error) {
	var count int64
	err := a.db.QueryRowContext(ctx,
		`SELECT games_created FROM game_server_analytics WHERE server_ip = $1`,
		serverIpNet,
	).Scan(&count)
	return count, err
}
