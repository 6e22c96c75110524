package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.RAG.ChunkSize != 1000 || cfg.RAG.ChunkOverlap != 200 || cfg.RAG.TopK != 5 {
		t.Errorf("unexpected RAG defaults: %+v", cfg.RAG)
	}
	if cfg.Uploads.Dir != "uploads" {
		t.Errorf("expected default uploads dir, got %q", cfg.Uploads.Dir)
	}
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  port: 9001\nrag:\n  chunk_size: 500\n  chunk_overlap: 50\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("expected port 9001, got %d", cfg.Server.Port)
	}
	if cfg.RAG.ChunkSize != 500 || cfg.RAG.ChunkOverlap != 50 {
		t.Errorf("unexpected RAG config: %+v", cfg.RAG)
	}
	// Unset fields still get defaults.
	if cfg.RAG.TopK != 5 {
		t.Errorf("expected default top_k, got %d", cfg.RAG.TopK)
	}
}

func TestLoadConfig_RejectsOverlapAtLeastChunkSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("rag:\n  chunk_size: 100\n  chunk_overlap: 100\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for overlap >= chunk_size")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for invalid YAML")
	}
}
