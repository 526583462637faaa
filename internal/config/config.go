package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/brightpath/pathways-backend/internal/logger"
	"github.com/brightpath/pathways-backend/internal/utils"
)

// Config carries the tunable knobs of the matching engine. The similarity
// thresholds are configuration rather than constants: 0.3 and 0.4 are the
// operating defaults, not derived values.
type Config struct {
	// MinSimilarity is the floor below which a profile/course comparison is
	// treated as noise.
	MinSimilarity float64 `yaml:"min_similarity"`
	// SkillSimilarity is the stricter floor for single-skill queries, which
	// are shorter and noisier than full profiles.
	SkillSimilarity float64 `yaml:"skill_similarity"`
	// TopN bounds the primary recommendation list.
	TopN int `yaml:"top_n"`
	// MaxPerSkillGap bounds skill-gap matches to 1-3 courses per gap.
	MaxPerSkillGap int `yaml:"max_per_skill_gap"`
	// RoleMatchLimit bounds role-based retrieval.
	RoleMatchLimit int `yaml:"role_match_limit"`
	// EmbedConcurrency is the admission-control width against the embedding
	// provider. Widening it risks provider rate limits; narrowing it only
	// costs latency.
	EmbedConcurrency int `yaml:"embed_concurrency"`
	// FallbackCourseLimit bounds the basic course listing fetched by the
	// keyword fallback paths.
	FallbackCourseLimit int `yaml:"fallback_course_limit"`
}

func Default() Config {
	return Config{
		MinSimilarity:       0.3,
		SkillSimilarity:     0.4,
		TopN:                10,
		MaxPerSkillGap:      3,
		RoleMatchLimit:      4,
		EmbedConcurrency:    5,
		FallbackCourseLimit: 200,
	}
}

// Load starts from defaults, layers an optional YAML file (CONFIG_PATH),
// then applies env overrides.
func Load(log *logger.Logger) (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
		if log != nil {
			log.Info("Loaded config file", "path", path)
		}
	}

	cfg.MinSimilarity = utils.GetEnvAsFloat("MATCH_MIN_SIMILARITY", cfg.MinSimilarity, log)
	cfg.SkillSimilarity = utils.GetEnvAsFloat("MATCH_SKILL_SIMILARITY", cfg.SkillSimilarity, log)
	cfg.TopN = utils.GetEnvAsInt("MATCH_TOP_N", cfg.TopN, log)
	cfg.MaxPerSkillGap = utils.GetEnvAsInt("MATCH_MAX_PER_SKILL_GAP", cfg.MaxPerSkillGap, log)
	cfg.RoleMatchLimit = utils.GetEnvAsInt("MATCH_ROLE_LIMIT", cfg.RoleMatchLimit, log)
	cfg.EmbedConcurrency = utils.GetEnvAsInt("EMBED_CONCURRENCY", cfg.EmbedConcurrency, log)
	cfg.FallbackCourseLimit = utils.GetEnvAsInt("MATCH_FALLBACK_COURSE_LIMIT", cfg.FallbackCourseLimit, log)

	return cfg.normalized(), nil
}

func (c Config) normalized() Config {
	d := Default()
	if c.TopN <= 0 {
		c.TopN = d.TopN
	}
	if c.MaxPerSkillGap < 1 {
		c.MaxPerSkillGap = 1
	}
	if c.MaxPerSkillGap > 3 {
		c.MaxPerSkillGap = 3
	}
	if c.RoleMatchLimit <= 0 {
		c.RoleMatchLimit = d.RoleMatchLimit
	}
	if c.EmbedConcurrency < 1 {
		c.EmbedConcurrency = 1
	}
	if c.FallbackCourseLimit <= 0 {
		c.FallbackCourseLimit = d.FallbackCourseLimit
	}
	return c
}
