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
	"github.com/brightpath/pathways-backend/internal/repos"
	"github.com/brightpath/pathways-backend/internal/types"
	"github.com/brightpath/pathways-backend/internal/vectors"
)

// skillQueryTemplate wraps a bare skill name in enough context for a useful
// embedding; short queries like "Excel" are too ambiguous on their own.
const skillQueryTemplate = "Skill: %s. Looking for courses that teach %s skills and competencies."

type SkillGapMatcher interface {
	// CoursesForGap finds 1-3 courses addressing one skill gap, combining
	// direct tag matches with semantic matches against the embedded corpus.
	CoursesForGap(ctx context.Context, gap types.SkillGap) ([]types.GapCourseMatch, error)
	// CoursesForGaps matches several gaps against a single corpus fetch.
	// Results are keyed by the gap's skill name.
	CoursesForGaps(ctx context.Context, gaps []types.SkillGap) (map[string][]types.GapCourseMatch, error)
}

type skillGapMatcher struct {
	log      *logger.Logger
	cfg      config.Config
	embedder Embedder
	courses  repos.CourseRepo
}

func NewSkillGapMatcher(baseLog *logger.Logger, cfg config.Config, embedder Embedder, courses repos.CourseRepo) SkillGapMatcher {
	return &skillGapMatcher{
		log:      baseLog.With("service", "SkillGapMatcher"),
		cfg:      cfg,
		embedder: embedder,
		courses:  courses,
	}
}

func (m *skillGapMatcher) CoursesForGap(ctx context.Context, gap types.SkillGap) ([]types.GapCourseMatch, error) {
	corpus, err := m.courses.GetWithEmbeddings(ctx, nil)
	if err != nil {
		m.log.Error("corpus unavailable for skill-gap matching", "error", err)
		return []types.GapCourseMatch{}, nil
	}
	return m.matchGap(ctx, gap, corpus)
}

func (m *skillGapMatcher) CoursesForGaps(ctx context.Context, gaps []types.SkillGap) (map[string][]types.GapCourseMatch, error) {
	out := make(map[string][]types.GapCourseMatch, len(gaps))
	if len(gaps) == 0 {
		return out, nil
	}

	// One corpus fetch serves every gap.
	corpus, err := m.courses.GetWithEmbeddings(ctx, nil)
	if err != nil {
		m.log.Error("corpus unavailable for skill-gap matching", "error", err)
		return out, nil
	}
	for _, gap := range gaps {
		matches, err := m.matchGap(ctx, gap, corpus)
		if err != nil {
			return nil, err
		}
		out[gap.Skill] = matches
	}
	return out, nil
}

// gapCandidate accumulates evidence for one course across the direct and
// semantic match paths.
type gapCandidate struct {
	course       *types.Course
	relevance    int
	direct       bool
	semantic     bool
	matchedSkill string
}

func (m *skillGapMatcher) matchGap(ctx context.Context, gap types.SkillGap, corpus []*types.Course) ([]types.GapCourseMatch, error) {
	skill := strings.TrimSpace(gap.Skill)
	if skill == "" {
		return []types.GapCourseMatch{}, nil
	}

	acc := make(map[uuid.UUID]*gapCandidate)
	order := make([]uuid.UUID, 0, 8)

	direct, err := m.courses.GetBySkillName(ctx, nil, skill)
	if err != nil {
		m.log.Error("direct tag lookup failed", "skill", skill, "error", err)
	} else {
		for _, d := range direct {
			acc[d.Course.ID] = &gapCandidate{
				course:       d.Course,
				relevance:    int(d.MatchStrength * 100),
				direct:       true,
				matchedSkill: d.MatchedSkill,
			}
			order = append(order, d.Course.ID)
		}
	}

	for _, sem := range m.semanticMatches(ctx, skill, corpus) {
		if existing, ok := acc[sem.course.ID]; ok {
			// Seen on both paths: boost instead of double-counting.
			existing.semantic = true
			existing.relevance += 10
			if existing.relevance > 100 {
				existing.relevance = 100
			}
			continue
		}
		cand := sem
		acc[cand.course.ID] = &cand
		order = append(order, cand.course.ID)
	}

	candidates := make([]*gapCandidate, 0, len(order))
	for _, id := range order {
		candidates = append(candidates, acc[id])
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].relevance > candidates[j].relevance
	})
	if len(candidates) > m.cfg.MaxPerSkillGap {
		candidates = candidates[:m.cfg.MaxPerSkillGap]
	}

	matches := make([]types.GapCourseMatch, 0, len(candidates))
	for _, c := range candidates {
		matches = append(matches, types.GapCourseMatch{
			Course:         c.course,
			RelevanceScore: c.relevance,
			MatchType:      c.matchType(),
			Reason:         gapReason(c, skill),
		})
	}
	return matches, nil
}

// semanticMatches embeds the templated skill query and scores the corpus
// against it. An unavailable embedding provider is not an error here; the
// direct tag path still stands.
func (m *skillGapMatcher) semanticMatches(ctx context.Context, skill string, corpus []*types.Course) []gapCandidate {
	query := fmt.Sprintf(skillQueryTemplate, skill, skill)
	queryVec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrEmbeddingUnavailable) || errors.Is(err, pkgerrors.ErrTextTooShort) {
			m.log.Warn("semantic path unavailable for skill", "skill", skill, "error", err)
			return nil
		}
		m.log.Error("skill query embedding failed", "skill", skill, "error", err)
		return nil
	}

	var out []gapCandidate
	for _, course := range corpus {
		vec := vectors.ParseEmbedding(course.Embedding)
		if vec == nil {
			continue
		}
		sim, err := vectors.CosineSimilarity(queryVec, vec)
		if err != nil || sim < m.cfg.SkillSimilarity {
			continue
		}
		out = append(out, gapCandidate{
			course:    course,
			relevance: vectors.RelevanceScore(sim),
			semantic:  true,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].relevance > out[j].relevance
	})
	return out
}

func (c *gapCandidate) matchType() string {
	switch {
	case c.direct && c.semantic:
		return types.MatchTypeCombined
	case c.direct:
		return types.MatchTypeDirect
	default:
		return types.MatchTypeSemantic
	}
}

// gapReason synthesizes the "why this course" sentence, preferring the most
// concrete evidence available.
func gapReason(c *gapCandidate, skill string) string {
	lowerSkill := strings.ToLower(skill)
	reason := ""
	switch {
	case c.matchedSkill != "" && strings.EqualFold(c.matchedSkill, skill):
		reason = fmt.Sprintf("Directly teaches %s", skill)
	case c.matchedSkill != "":
		reason = fmt.Sprintf("Covers %s, closely related to %s", c.matchedSkill, skill)
	case strings.Contains(strings.ToLower(c.course.Title), lowerSkill):
		reason = fmt.Sprintf("%s focuses on %s", c.course.Title, skill)
	case strings.Contains(strings.ToLower(c.course.Description), lowerSkill):
		reason = fmt.Sprintf("The course content covers %s", skill)
	default:
		reason = fmt.Sprintf("Strong semantic match for building %s skills", skill)
	}
	if c.direct && c.semantic {
		reason += "; also a strong semantic match for your profile"
	}
	return reason
}
