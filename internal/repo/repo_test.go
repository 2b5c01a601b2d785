package repo

import (
	"context"
	"errors"
	"testing"
)

func TestWithSSLMode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"user=postgres dbname=pumps", "user=postgres dbname=pumps sslmode=require"},
		{"user=postgres sslmode=disable", "user=postgres sslmode=disable"},
		{"postgres://u:p@db/pumps", "postgres://u:p@db/pumps?sslmode=require"},
		{"postgresql://u:p@db/pumps?connect_timeout=5", "postgresql://u:p@db/pumps?connect_timeout=5&sslmode=require"},
		{"postgres://db/pumps?sslmode=verify-full", "postgres://db/pumps?sslmode=verify-full"},
	}
	for _, tt := range tests {
		if got := withSSLMode(tt.in); got != tt.want {
			t.Errorf("withSSLMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryUserDB()

	id, err := r.CreateUser(ctx, "ana", "ana@example.com", "hash")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.CreateUser(ctx, "ana", "other@example.com", "x"); err == nil {
		t.Error("duplicate login accepted")
	}

	gotID, hash, err := r.GetByLogin(ctx, "ana")
	if err != nil || gotID != id || hash != "hash" {
		t.Errorf("GetByLogin = %d, %q, %v", gotID, hash, err)
	}
	if gotID, _, err := r.GetByLogin(ctx, "nobody"); gotID != 0 || err != nil {
		t.Errorf("GetByLogin(unknown) = %d, %v", gotID, err)
	}

	if err := r.UpdatePreferences(ctx, id, "gpm", "ft"); err != nil {
		t.Fatal(err)
	}
	p, err := r.GetProfileByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if p.FlowUnit != "gpm" || p.HeightUnit != "ft" || p.Login != "ana" {
		t.Errorf("profile = %+v", p)
	}
	if _, err := r.GetProfileByID(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProfileByID(99) err = %v", err)
	}
	if err := r.UpdatePreferences(ctx, 99, "l/s", "m"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdatePreferences(99) err = %v", err)
	}
}
