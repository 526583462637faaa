package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultThresholds(t *testing.T) {
	cfg := Default()
	if cfg.MinSimilarity != 0.3 {
		t.Fatalf("MinSimilarity = %v, want 0.3", cfg.MinSimilarity)
	}
	if cfg.SkillSimilarity != 0.4 {
		t.Fatalf("SkillSimilarity = %v, want 0.4", cfg.SkillSimilarity)
	}
	if cfg.TopN != 10 || cfg.MaxPerSkillGap != 3 || cfg.RoleMatchLimit != 4 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadAppliesFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("min_similarity: 0.25\ntop_n: 7\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("MATCH_SKILL_SIMILARITY", "0.5")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MinSimilarity != 0.25 {
		t.Fatalf("file override lost: MinSimilarity = %v", cfg.MinSimilarity)
	}
	if cfg.TopN != 7 {
		t.Fatalf("file override lost: TopN = %d", cfg.TopN)
	}
	if cfg.SkillSimilarity != 0.5 {
		t.Fatalf("env override lost: SkillSimilarity = %v", cfg.SkillSimilarity)
	}
}

func TestNormalizedClampsBounds(t *testing.T) {
	cfg := Config{MaxPerSkillGap: 9, EmbedConcurrency: -1}.normalized()
	if cfg.MaxPerSkillGap != 3 {
		t.Fatalf("MaxPerSkillGap = %d, want clamp to 3", cfg.MaxPerSkillGap)
	}
	if cfg.EmbedConcurrency != 1 {
		t.Fatalf("EmbedConcurrency = %d, want floor of 1", cfg.EmbedConcurrency)
	}
	if cfg.TopN != Default().TopN {
		t.Fatalf("TopN = %d, want default backfill", cfg.TopN)
	}
}
