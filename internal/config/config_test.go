package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.HTTPAddr != ":8000" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.DatabaseURL != "sqlite://sales_data.db" {
		t.Fatalf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.LoadBatchSize != 500 {
		t.Fatalf("LoadBatchSize = %d", cfg.LoadBatchSize)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com")
	t.Setenv("DATABASE_MAX_OPEN_CONN", "50")
	t.Setenv("LOAD_BATCH_SIZE", "not-a-number")

	cfg := Load()

	if cfg.HTTPAddr != ":9000" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://app.example.com" {
		t.Fatalf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.DBMaxOpenConn != 50 {
		t.Fatalf("DBMaxOpenConn = %d", cfg.DBMaxOpenConn)
	}
	if cfg.LoadBatchSize != 500 {
		t.Fatalf("unparseable int must fall back to default, got %d", cfg.LoadBatchSize)
	}
}
