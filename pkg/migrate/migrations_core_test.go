package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCoreMigrationCoversAllTables(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_core_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no core tables migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	content := string(data)

	tables := []string{
		"users",
		"sponsorships",
		"pots",
		"donations",
		"point_transactions",
		"user_points",
		"notifications",
		"invitations",
		"vouchers",
	}
	for _, table := range tables {
		if !strings.Contains(content, "CREATE TABLE "+table+" (") {
			t.Fatalf("migration missing table %s", table)
		}
		if !strings.Contains(content, "DROP TABLE IF EXISTS "+table+";") {
			t.Fatalf("migration missing down for table %s", table)
		}
	}

	constraints := []string{
		"chk_pots_current_amount_non_negative",
		"chk_donations_amount_positive",
		"chk_user_points_available_non_negative",
		"idx_donations_external_transaction_id",
		"idx_vouchers_code",
		"idx_user_points_user_id",
		"idx_notifications_donation_type",
	}
	for _, constraint := range constraints {
		if !strings.Contains(content, constraint) {
			t.Fatalf("migration missing constraint %s", constraint)
		}
	}

	if !strings.Contains(content, "-- +goose Up") || !strings.Contains(content, "-- +goose Down") {
		t.Fatalf("migration missing goose directives")
	}
}
