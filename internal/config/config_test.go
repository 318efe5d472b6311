package config

import (
	"os"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port == "" || cfg.Drafts.AppID == "" || cfg.Drafts.DataDir == "" {
		t.Fatalf("unexpected empty defaults: %+v", cfg)
	}
	if cfg.Drafts.IndexCacheTTL <= 0 {
		t.Fatalf("index cache TTL must default to a positive duration, got %v", cfg.Drafts.IndexCacheTTL)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	os.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	os.Setenv("MONGODB_DATABASE", "bistroplan_test")
	os.Setenv("REDIS_HOST", "localhost")
	os.Setenv("REDIS_PORT", "6379")
	os.Setenv("DRAFTS_DEFAULT_NAME", "Test Plan")
	defer func() {
		os.Unsetenv("MONGODB_URI")
		os.Unsetenv("MONGODB_DATABASE")
		os.Unsetenv("REDIS_HOST")
		os.Unsetenv("REDIS_PORT")
		os.Unsetenv("DRAFTS_DEFAULT_NAME")
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MongoDB.URI == "" || cfg.Redis.Host == "" {
		t.Fatalf("unexpected empty config values: %+v", cfg)
	}
	if cfg.Drafts.DefaultDraftName != "Test Plan" {
		t.Fatalf("default draft name not read from env: %q", cfg.Drafts.DefaultDraftName)
	}
}
