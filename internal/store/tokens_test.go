package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/dijaskidom/internal/db"
)

func TestRevokedTokens(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := RevokeToken(ctx, database, "session-a", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	// A second logout with the same token is harmless.
	if err := RevokeToken(ctx, database, "session-a", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken again: %v", err)
	}

	tests := []struct {
		jti  string
		want bool
	}{
		{"session-a", true},
		{"session-b", false},
		{"", false},
	}
	for _, tt := range tests {
		got, err := IsTokenRevoked(ctx, database, tt.jti)
		if err != nil {
			t.Fatalf("IsTokenRevoked(%q): %v", tt.jti, err)
		}
		if got != tt.want {
			t.Errorf("IsTokenRevoked(%q) = %v, want %v", tt.jti, got, tt.want)
		}
	}
}

func TestPruneRevokedTokens(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	if _, err := database.ExecContext(ctx,
		`INSERT INTO revoked_tokens (jti, expires_at) VALUES (?, ?), (?, ?)`,
		"stale", now.Add(-time.Hour).UTC(), "live", now.Add(time.Hour).UTC(),
	); err != nil {
		t.Fatalf("seeding revocations: %v", err)
	}

	n, err := PruneRevokedTokens(ctx, database, now)
	if err != nil {
		t.Fatalf("PruneRevokedTokens: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 pruned revocation, got %d", n)
	}

	if revoked, _ := IsTokenRevoked(ctx, database, "stale"); revoked {
		t.Error("expected stale revocation to be pruned")
	}
	if revoked, _ := IsTokenRevoked(ctx, database, "live"); !revoked {
		t.Error("expected live revocation to remain")
	}
}
