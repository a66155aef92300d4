package db

import (
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func TestMigrationSourceResolvable(t *testing.T) {
	const scheme = "file://"
	if !strings.HasPrefix(migrationSourceURL, scheme+"db/") {
		t.Fatalf("migration source must use the file scheme rooted at the repo, got %s", migrationSourceURL)
	}

	// Tests run inside the db package directory, one level below the
	// root the URL is written against.
	src, err := source.Open(scheme + strings.TrimPrefix(migrationSourceURL, scheme+"db/"))
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		t.Fatal(err)
	}
	if version != 1 {
		t.Fatalf("expected first migration version 1, got %d", version)
	}
}
