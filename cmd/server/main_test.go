package main

import (
	"os"
	"testing"
)

func TestResolveMigrationsPath(t *testing.T) {
	orig := os.Getenv("MIGRATIONS_PATH")
	defer os.Setenv("MIGRATIONS_PATH", orig)

	os.Unsetenv("MIGRATIONS_PATH")
	if got := resolveMigrationsPath(); got != "migrations" {
		t.Fatalf("expected default path migrations, got %s", got)
	}

	os.Setenv("MIGRATIONS_PATH", "/opt/ledger/migrations")
	if got := resolveMigrationsPath(); got != "/opt/ledger/migrations" {
		t.Fatalf("expected overridden path, got %s", got)
	}
}
