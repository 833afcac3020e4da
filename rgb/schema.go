package rgb

import (
	"database/sql"
	"fmt"
	"strings"
)

// DefaultTable is the palette table used when none is configured.
const DefaultTable = "palette"

const paletteSchema = `
CREATE TABLE IF NOT EXISTS %s (
    r INTEGER NOT NULL,
    g INTEGER NOT NULL,
    b INTEGER NOT NULL,
    label TEXT NOT NULL,
    scan_id TEXT,
    PRIMARY KEY (r, g, b)
);
`

// EnsureSchema creates the palette table if it does not already exist.
func EnsureSchema(db *sql.DB, table string) error {
	if err := ValidateTable(table); err != nil {
		return err
	}
	_, err := db.Exec(fmt.Sprintf(paletteSchema, table))
	return err
}

// ValidateTable rejects table names that cannot be interpolated into SQL.
// Qualified names such as main.palette are accepted.
func ValidateTable(table string) error {
	if table == "" {
		return fmt.Errorf("rgb: table name is empty")
	}
	for _, part := range strings.Split(table, ".") {
		if part == "" {
			return fmt.Errorf("rgb: invalid table name %q", table)
		}
		for i, r := range part {
			switch {
			case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			case r >= '0' && r <= '9' && i > 0:
			default:
				return fmt.Errorf("rgb: invalid table name %q", table)
			}
		}
	}
	return nil
}
