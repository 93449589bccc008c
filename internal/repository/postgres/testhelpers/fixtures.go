package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

// LoadFixtures executes SQL fixture files from fixturesPath in the given order.
func LoadFixtures(db *sql.DB, fixturesPath string, files []string) error {
	for _, file := range files {
		content, err := os.ReadFile(filepath.Join(fixturesPath, file))
		if err != nil {
			return fmt.Errorf("read fixture %s: %w", file, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("load fixture %s: %w", file, err)
		}
	}
	return nil
}

// IDBySlug returns the id of the row in table with the given slug.
func IDBySlug(db *sql.DB, table, slug string) (string, error) {
	var id string
	query := fmt.Sprintf("SELECT id FROM %s WHERE slug = $1", table)
	if err := db.QueryRowContext(context.Background(), query, slug).Scan(&id); err != nil {
		return "", fmt.Errorf("get %s id by slug %q: %w", table, slug, err)
	}
	return id, nil
}
