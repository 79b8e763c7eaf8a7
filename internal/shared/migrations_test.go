package shared

import (
	"context"
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		if migrations[0].Name != "posters" {
			t.Errorf("expected first migration named posters, got %q", migrations[0].Name)
		}
	})

	t.Run("parseMigrationName", func(t *testing.T) {
		tests := []struct {
			name      string
			version   int
			label     string
			direction string
			ok        bool
		}{
			{"0001_posters_up.sql", 1, "posters", "up", true},
			{"0012_add_index_down.sql", 12, "add_index", "down", true},
			{"posters_up.sql", 0, "", "", false},
			{"0001_posters.sql", 0, "", "", false},
			{"0001_posters_sideways.sql", 0, "", "", false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				v, l, d, ok := parseMigrationName(tt.name)
				if ok != tt.ok || v != tt.version || l != tt.label || d != tt.direction {
					t.Errorf("parseMigrationName(%q) = (%d, %q, %q, %v)", tt.name, v, l, d, ok)
				}
			})
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()
		ConfigureDatabase(db, 1, 1)

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		version, err := MigrationVersion(ctx, db)
		if err != nil {
			t.Fatalf("failed to read version: %v", err)
		}
		if version == 0 {
			t.Error("expected at least one migration to be applied")
		}

		if _, err := db.Exec("SELECT movie_id, content_type, data FROM posters LIMIT 1"); err != nil {
			t.Errorf("posters table should exist after migrations: %v", err)
		}

		if err := RollbackMigration(ctx, db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		after, err := MigrationVersion(ctx, db)
		if err != nil {
			t.Fatalf("failed to read version after rollback: %v", err)
		}
		if after >= version {
			t.Errorf("expected version to decrease after rollback, got %d (was %d)", after, version)
		}

		if _, err := db.Exec("SELECT 1 FROM posters LIMIT 1"); err == nil {
			t.Error("posters table should be gone after rollback")
		}

		if err := RollbackMigration(ctx, db); err == nil {
			t.Error("rollback with nothing applied should fail")
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()
		ConfigureDatabase(db, 1, 1)

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		migrations, _ := loadMigrations()
		if count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}
	})
}
