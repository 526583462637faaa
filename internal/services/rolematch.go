package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/brightpath/pathways-backend/internal/config"
	"github.com/brightpath/pathways-backend/internal/logger"
	pkgerrors "github.com/brightpath/pathways-backend/internal/pkg/errors"
	"github.com/brightpath/pathways-backend/internal/types"
	"github.com/brightpath/pathways-backend/internal/vectors"
)

// domainRule maps trigger words found in role/cluster text to the keyword
// bundle for that professional domain.
type domainRule struct {
	name     string
	triggers []string
	keywords []string
}

var domainRules = []domainRule{
	{
		name:     "finance/accounting",
		triggers: []string{"financ", "account", "audit", "bookkeep", "tax", "banking", "treasury"},
		keywords: []string{"accounting", "finance", "bookkeeping", "audit", "tax", "excel", "financial reporting", "payroll", "budget"},
	},
	{
		name:     "technology",
		triggers: []string{"software", "developer", "engineer", "technolog", "programm", "devops", "tech"},
		keywords: []string{"programming", "software", "coding", "development", "cloud", "database", "web", "it support"},
	},
	{
		name:     "business/management",
		triggers: []string{"manag", "business", "administr", "operation", "executive", "supervis"},
		keywords: []string{"management", "leadership", "business", "operations", "strategy", "administration", "project management"},
	},
	{
		name:     "marketing",
		triggers: []string{"market", "brand", "advertis", "sales", "commercial"},
		keywords: []string{"marketing", "branding", "advertising", "sales", "social media", "communication", "customer"},
	},
	{
		name:     "data/analytics",
		triggers: []string{"data", "analy", "statist", "intelligence"},
		keywords: []string{"data", "analytics", "statistics", "excel", "sql", "visualization", "reporting"},
	},
	{
		name:     "human resources",
		triggers: []string{"human resource", "hr ", "recruit", "talent", "people"},
		keywords: []string{"human resources", "recruitment", "talent", "onboarding", "training", "employee relations"},
	},
}

type RoleMatcher interface {
	// MatchRole returns up to limit courses suited to an entry-level role.
	// The corpus is supplied by the caller so one fetch can serve several
	// roles off the same career cluster.
	MatchRole(ctx context.Context, roleName, clusterTitle string, corpus []*types.Course, limit int) ([]types.RoleCourseMatch, error)
}

type roleMatcher struct {
	log      *logger.Logger
	cfg      config.Config
	embedder Embedder
}

func NewRoleMatcher(baseLog *logger.Logger, cfg config.Config, embedder Embedder) RoleMatcher {
	return &roleMatcher{
		log:      baseLog.With("service", "RoleMatcher"),
		cfg:      cfg,
		embedder: embedder,
	}
}

func (m *roleMatcher) MatchRole(ctx context.Context, roleName, clusterTitle string, corpus []*types.Course, limit int) ([]types.RoleCourseMatch, error) {
	if limit <= 0 {
		limit = m.cfg.RoleMatchLimit
	}
	if len(corpus) == 0 {
		return []types.RoleCourseMatch{}, nil
	}

	roleText := roleName + " " + clusterTitle
	domains := extractDomainKeywords(roleText)
	tokens := roleTokens(roleText)

	// Narrow the corpus to plausibly-relevant courses before any embedding
	// work. Skipped when it would leave too few candidates to rank.
	candidates := prefilterCorpus(corpus, domains, tokens)
	if len(candidates) < 2*limit {
		candidates = corpus
	}

	matches := m.semanticRoleMatches(ctx, roleName, clusterTitle, domains, candidates, limit)
	if matches == nil {
		matches = keywordRoleMatches(roleName, candidates, domains, tokens, limit)
	}
	if len(matches) < limit {
		// Last resort: pad with plain picks so a non-empty corpus always
		// yields limit results.
		seen := make(map[uuid.UUID]bool, len(matches))
		for _, match := range matches {
			seen[match.Course.ID] = true
		}
		for _, course := range corpus {
			if seen[course.ID] {
				continue
			}
			matches = append(matches, types.RoleCourseMatch{
				Course:         course,
				RelevanceScore: 50,
				Reason:         "Recommended course",
			})
			if len(matches) == limit {
				break
			}
		}
	}
	return matches, nil
}

// semanticRoleMatches ranks candidates by similarity to a deliberately
// repetitive query. Short role names embed poorly on their own; repeating the
// role and domain vocabulary biases the vector toward the right region.
// Returns nil (not empty) when the embedding path is unusable so the caller
// can tell "no vector" from "no match".
func (m *roleMatcher) semanticRoleMatches(ctx context.Context, roleName, clusterTitle string, domains []string, candidates []*types.Course, limit int) []types.RoleCourseMatch {
	query := fmt.Sprintf(
		"Role: %s. Position: %s. Career: %s. Domain: %s. Industry: %s. Field: %s. Key skills: %s.",
		roleName, roleName, roleName,
		clusterTitle, clusterTitle, clusterTitle,
		strings.Join(domains, ", "),
	)
	queryVec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrEmbeddingUnavailable) && !errors.Is(err, pkgerrors.ErrTextTooShort) {
			m.log.Error("role query embedding failed", "role", roleName, "error", err)
		}
		return nil
	}

	type scored struct {
		course *types.Course
		sim    float64
	}
	var ranked []scored
	for _, course := range candidates {
		vec := vectors.ParseEmbedding(course.Embedding)
		if vec == nil {
			continue
		}
		sim, err := vectors.CosineSimilarity(queryVec, vec)
		if err != nil {
			continue
		}
		ranked = append(ranked, scored{course: course, sim: sim})
	}
	if len(ranked) == 0 {
		// Zero parseable corpus embeddings; hand over to the keyword scorer.
		return nil
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].sim > ranked[j].sim
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	matches := make([]types.RoleCourseMatch, 0, len(ranked))
	for _, r := range ranked {
		matches = append(matches, types.RoleCourseMatch{
			Course:         r.course,
			RelevanceScore: vectors.RelevanceScore(r.sim),
			Reason:         fmt.Sprintf("Closely matches the %s role", roleName),
		})
	}
	return matches
}

// keywordRoleMatches is the degraded-mode scorer: domain-keyword hits count
// double against generic role/cluster tokens, ties break on domain hits
// before total hits.
func keywordRoleMatches(roleName string, candidates []*types.Course, domains, tokens []string, limit int) []types.RoleCourseMatch {
	type scored struct {
		course     *types.Course
		domainHits int
		totalHits  int
	}
	var ranked []scored
	for _, course := range candidates {
		text := courseSearchText(course)
		domainHits := countHits(text, domains)
		tokenHits := countHits(text, tokens)
		if domainHits+tokenHits == 0 {
			continue
		}
		ranked = append(ranked, scored{course: course, domainHits: domainHits, totalHits: domainHits + tokenHits})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		wi := 2*ranked[i].domainHits + (ranked[i].totalHits - ranked[i].domainHits)
		wj := 2*ranked[j].domainHits + (ranked[j].totalHits - ranked[j].domainHits)
		if wi != wj {
			return wi > wj
		}
		if ranked[i].domainHits != ranked[j].domainHits {
			return ranked[i].domainHits > ranked[j].domainHits
		}
		return ranked[i].totalHits > ranked[j].totalHits
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	matches := make([]types.RoleCourseMatch, 0, len(ranked))
	for _, r := range ranked {
		score := 40 + 10*(2*r.domainHits+(r.totalHits-r.domainHits))
		if score > 100 {
			score = 100
		}
		reason := fmt.Sprintf("Keyword match for the %s role", roleName)
		if r.domainHits > 0 {
			reason = fmt.Sprintf("Covers core %s skills", roleName)
		}
		matches = append(matches, types.RoleCourseMatch{
			Course:         r.course,
			RelevanceScore: score,
			Reason:         reason,
		})
	}
	return matches
}

// extractDomainKeywords returns the union of keyword bundles whose trigger
// words appear in the role/cluster text.
func extractDomainKeywords(roleText string) []string {
	text := strings.ToLower(roleText)
	var keywords []string
	seen := make(map[string]bool)
	for _, rule := range domainRules {
		for _, trigger := range rule.triggers {
			if strings.Contains(text, trigger) {
				for _, kw := range rule.keywords {
					if !seen[kw] {
						seen[kw] = true
						keywords = append(keywords, kw)
					}
				}
				break
			}
		}
	}
	return keywords
}

var roleStopwords = map[string]bool{
	"and": true, "the": true, "for": true, "of": true, "in": true,
	"junior": true, "senior": true, "entry": true, "level": true,
	"assistant": true, "associate": true, "specialist": true,
}

func roleTokens(roleText string) []string {
	fields := strings.FieldsFunc(strings.ToLower(roleText), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	var tokens []string
	seen := make(map[string]bool)
	for _, f := range fields {
		if len(f) < 3 || roleStopwords[f] || seen[f] {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	return tokens
}

func prefilterCorpus(corpus []*types.Course, domains, tokens []string) []*types.Course {
	var out []*types.Course
	for _, course := range corpus {
		text := courseSearchText(course)
		if countHits(text, domains) > 0 || countHits(text, tokens) > 0 {
			out = append(out, course)
		}
	}
	return out
}

func countHits(text string, terms []string) int {
	hits := 0
	for _, term := range terms {
		if term != "" && strings.Contains(text, strings.ToLower(term)) {
			hits++
		}
	}
	return hits
}
