package postgres

import (
	"strings"
	"testing"
)

func TestLoadMigrations(t *testing.T) {
	all, err := loadMigrations()
	if err != nil {
		t.Fatalf("loadMigrations() error: %v", err)
	}
	if len(all) == 0 {
		t.Fatal("expected embedded migrations")
	}
	if all[0].version != "001_initial.sql" {
		t.Errorf("first migration = %q, want 001_initial.sql", all[0].version)
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].version >= all[i].version {
			t.Errorf("migrations out of order: %q before %q", all[i-1].version, all[i].version)
		}
	}
	for _, table := range []string{"headform_references", "fit_records"} {
		if !strings.Contains(all[0].sql, table) {
			t.Errorf("initial migration does not create %s", table)
		}
	}
}
