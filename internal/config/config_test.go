package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "MAX_CHUNK_SIZE", "MIN_CHUNK_SIZE", "WORKER_COUNT", "JOB_TTL", "PATHSTORE_URL", "RATE_LIMIT_RPS"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.MaxChunkSize != 4096 || cfg.MinChunkSize != 512 {
		t.Errorf("expected chunk sizes 4096/512, got %d/%d", cfg.MaxChunkSize, cfg.MinChunkSize)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected 1h TTL, got %v", cfg.JobTTL)
	}
	if cfg.RateLimitRPS != 20 {
		t.Errorf("expected 20 rps, got %v", cfg.RateLimitRPS)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MAX_CHUNK_SIZE", "1000")
	t.Setenv("MIN_CHUNK_SIZE", "100")
	t.Setenv("WORKER_COUNT", "-3")
	t.Setenv("JOB_TTL", "15m")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg := Load()

	if cfg.MaxChunkSize != 1000 || cfg.MinChunkSize != 100 {
		t.Errorf("expected 1000/100, got %d/%d", cfg.MaxChunkSize, cfg.MinChunkSize)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected invalid worker count to fall back to 4, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != 15*time.Minute {
		t.Errorf("expected 15m, got %v", cfg.JobTTL)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback disabled")
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Errorf("expected 2.5 rps, got %v", cfg.RateLimitRPS)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{MaxChunkSize: 100, MinChunkSize: 10}, false},
		{"zero max", Config{MaxChunkSize: 0}, true},
		{"min above max", Config{MaxChunkSize: 100, MinChunkSize: 200}, true},
		{"pathstore without key", Config{MaxChunkSize: 100, PathstoreURL: "http://ps"}, true},
		{"pathstore with key", Config{MaxChunkSize: 100, PathstoreURL: "http://ps", PathstoreAPIKey: "k"}, false},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: expected error=%v, got %v", tt.name, tt.wantErr, err)
		}
	}
}
