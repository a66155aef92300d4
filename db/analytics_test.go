package db

import (
	"context"
	"net"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sqlc-dev/pqtype"
)

func testInet() pqtype.Inet {
	return pqtype.Inet{
		IPNet: net.IPNet{IP: net.ParseIP("10.0.0.7"), Mask: net.CIDRMask(32, 32)},
		Valid: true,
	}
}

func TestAnalyticsCounters(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	analytics := NewAnalyticsManager(database)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, games_created\)`).
		WithArgs(testInet()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := analytics.IncrementGamesCreatedCount(ctx, testInet()); err != nil {
		t.Fatal(err)
	}

	mock.ExpectQuery(`SELECT games_created FROM game_server_analytics WHERE server_ip = \$1`).
		WithArgs(testInet()).
		WillReturnRows(sqlmock.NewRows([]string{"games_created"}).AddRow(1))
	count, err := analytics.GetGamesCreatedCount(ctx, testInet())
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected 1 created game, got %d", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}
