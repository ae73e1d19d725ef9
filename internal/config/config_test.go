package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HOST", "PORT", "REQUEST_TIMEOUT", "COLLABORATOR_TIMEOUT", "MAX_UPLOAD_SIZE",
		"GEMINI_API_KEY", "GEMINI_MODEL", "OLLAMA_URL", "OLLAMA_MODEL",
		"OPENAI_API_KEY", "OPENAI_MODEL", "MEAL_CLASSIFIER_URL",
		"REFERENCE_CACHE_MAX_ENTRIES", "REFERENCE_CACHE_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Host != "0.0.0.0" || cfg.Port != "8080" {
		t.Errorf("Unexpected address defaults: %s:%s", cfg.Host, cfg.Port)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("Expected 60s request timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.MaxUploadSize != 10*1024*1024 {
		t.Errorf("Expected 10MB upload cap, got %d", cfg.MaxUploadSize)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("Unexpected default Gemini model: %s", cfg.GeminiModel)
	}
	if cfg.OllamaURL != "http://localhost:11434" {
		t.Errorf("Unexpected default Ollama URL: %s", cfg.OllamaURL)
	}
	if cfg.CacheMaxEntries != 0 || cfg.CacheTTL != 0 {
		t.Errorf("Expected unbounded cache defaults, got max=%d ttl=%s", cfg.CacheMaxEntries, cfg.CacheTTL)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("REQUEST_TIMEOUT", "30s")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("REFERENCE_CACHE_MAX_ENTRIES", "128")
	t.Setenv("REFERENCE_CACHE_TTL", "1h")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Port)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.GeminiAPIKey != "test-key" {
		t.Errorf("Expected API key from env, got %q", cfg.GeminiAPIKey)
	}
	if cfg.CacheMaxEntries != 128 || cfg.CacheTTL != time.Hour {
		t.Errorf("Unexpected cache policy: max=%d ttl=%s", cfg.CacheMaxEntries, cfg.CacheTTL)
	}
}

func TestLoadFromEnv_InvalidPort(t *testing.T) {
	clearEnv(t)
	for _, port := range []string{"not-a-port", "0", "70000"} {
		t.Setenv("PORT", port)
		if _, err := LoadFromEnv(); err == nil {
			t.Errorf("Expected error for PORT=%q", port)
		}
	}
}

func TestLoadFromEnv_InvalidUploadSize(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_UPLOAD_SIZE", "-1")
	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error for negative upload size")
	}
}

func TestLoadFromEnv_MalformedValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("REQUEST_TIMEOUT", "soon")
	t.Setenv("MAX_UPLOAD_SIZE", "lots")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("Expected fallback timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.MaxUploadSize != 10*1024*1024 {
		t.Errorf("Expected fallback upload cap, got %d", cfg.MaxUploadSize)
	}
}

func TestServerAddress(t *testing.T) {
	cfg := &Config{Host: " 127.0.0.1 ", Port: " 8080 "}
	if got := cfg.ServerAddress(); got != "127.0.0.1:8080" {
		t.Errorf("Expected 127.0.0.1:8080, got %q", got)
	}
}
