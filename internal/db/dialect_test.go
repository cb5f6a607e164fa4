package db

import "testing"

func TestRebind(t *testing.T) {
	tests := []struct {
		dialect Dialect
		query   string
		want    string
	}{
		{SQLite, "SELECT * FROM items WHERE id = ?", "SELECT * FROM items WHERE id = ?"},
		{Postgres, "SELECT * FROM items WHERE id = ?", "SELECT * FROM items WHERE id = $1"},
		{Postgres, "UPDATE items SET quantity = ? WHERE id = ? AND dorm_id = ?",
			"UPDATE items SET quantity = $1 WHERE id = $2 AND dorm_id = $3"},
		{Postgres, "SELECT '?' FROM t WHERE a = ?", "SELECT '?' FROM t WHERE a = $1"},
		{Postgres, "SELECT 1", "SELECT 1"},
	}

	for _, tt := range tests {
		if got := tt.dialect.Rebind(tt.query); got != tt.want {
			t.Errorf("%s.Rebind(%q) = %q, want %q", tt.dialect, tt.query, got, tt.want)
		}
	}
}

func TestForUpdate(t *testing.T) {
	if got := Postgres.ForUpdate(); got != " FOR UPDATE" {
		t.Errorf("Postgres.ForUpdate() = %q", got)
	}
	if got := SQLite.ForUpdate(); got != "" {
		t.Errorf("SQLite.ForUpdate() = %q", got)
	}
}

func TestIsPostgresDSN(t *testing.T) {
	tests := []struct {
		dsn  string
		want bool
	}{
		{"postgres://user@localhost/dorm", true},
		{"postgresql://localhost/dorm", true},
		{"dijaskidom.sqlite3", false},
		{":memory:", false},
	}
	for _, tt := range tests {
		if got := IsPostgresDSN(tt.dsn); got != tt.want {
			t.Errorf("IsPostgresDSN(%q) = %v, want %v", tt.dsn, got, tt.want)
		}
	}
}
