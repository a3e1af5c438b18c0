package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)
	createTableRe  = regexp.MustCompile(`^create_([a-z0-9_]+)$`)
	addColumnRe    = regexp.MustCompile(`^add_([a-z0-9_]+)_to_([a-z0-9_]+)$`)
)

// CreateSQLMigration writes <dir>/<YYYYMMDDHHMMSS>_<name>.sql. Names of the
// form create_<table> get a shop-scoped table skeleton with its Down, and
// add_<column>_to_<table> gets a reversible ALTER. Anything else starts empty.
func CreateSQLMigration(dir string, name string) (string, error) {
	return createSQLMigration(dir, name, time.Now().UTC())
}

func createSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := sanitizeMigrationName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	filename := fmt.Sprintf("%s_%s.sql", now.Format("20060102150405"), safe)
	fullpath := filepath.Join(dir, filename)
	if _, err := os.Stat(fullpath); err == nil {
		return "", fmt.Errorf("migration already exists: %s", fullpath)
	}

	if err := os.WriteFile(fullpath, []byte(migrationTemplate(safe)), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func sanitizeMigrationName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}

func migrationTemplate(name string) string {
	up, down := "-- "+name, "-- rollback "+name
	if m := addColumnRe.FindStringSubmatch(name); m != nil {
		column, table := m[1], m[2]
		up = fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s text;", table, column)
		down = fmt.Sprintf("ALTER TABLE %s DROP COLUMN IF EXISTS %s;", table, column)
	} else if m := createTableRe.FindStringSubmatch(name); m != nil {
		table := m[1]
		up = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
  shop_id uuid NOT NULL REFERENCES shops (id) ON DELETE CASCADE,
  created_at timestamptz NOT NULL DEFAULT now(),
  updated_at timestamptz NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS %s_shop_id_idx ON %s (shop_id);`, table, table, table)
		down = fmt.Sprintf("DROP TABLE IF EXISTS %s;", table)
	}

	return fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
%s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
%s
-- +goose StatementEnd
`, up, down)
}
