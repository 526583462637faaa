package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/brightpath/pathways-backend/internal/config"
	"github.com/brightpath/pathways-backend/internal/logger"
	pkgerrors "github.com/brightpath/pathways-backend/internal/pkg/errors"
	"github.com/brightpath/pathways-backend/internal/repos"
	"github.com/brightpath/pathways-backend/internal/types"
	"github.com/brightpath/pathways-backend/internal/vectors"
)

// ProfileBuilder assembles the weighted profile text for an assessment result.
type ProfileBuilder interface {
	Build(ctx context.Context, result *types.AssessmentResult) (string, error)
}

// Embedder turns text into a vector. Failures surface as
// ErrEmbeddingUnavailable (or ErrTextTooShort) so orchestration can route to
// keyword fallbacks.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type RecommendationService interface {
	// Recommend ranks the active course corpus against the student's
	// assessment profile. An unusable profile or an unreachable corpus yields
	// an empty list, never an error; an unreachable embedding provider yields
	// the keyword-fallback ranking.
	Recommend(ctx context.Context, result *types.AssessmentResult) ([]types.RankedCourse, error)
	// RecommendByType ranks the technical and soft sub-corpora independently
	// so callers can guarantee representation of both categories.
	RecommendByType(ctx context.Context, result *types.AssessmentResult, maxPerType int) (technical, soft []types.RankedCourse, err error)
	// GenerateAndStore runs Recommend and upserts the outcome for the student.
	GenerateAndStore(ctx context.Context, studentID uuid.UUID, result *types.AssessmentResult) ([]types.RankedCourse, error)
	// ListForStudent returns stored recommendations, newest-best first.
	ListForStudent(ctx context.Context, studentID uuid.UUID, q repos.RecommendationQuery) ([]*types.CourseRecommendation, error)
	// UpdateStatus moves a stored recommendation through its lifecycle.
	UpdateStatus(ctx context.Context, id uuid.UUID, status, dismissedReason string) error
}

type recommendationService struct {
	log      *logger.Logger
	cfg      config.Config
	profiles ProfileBuilder
	embedder Embedder
	courses  repos.CourseRepo
	recs     repos.RecommendationRepo
}

func NewRecommendationService(
	baseLog *logger.Logger,
	cfg config.Config,
	profiles ProfileBuilder,
	embedder Embedder,
	courses repos.CourseRepo,
	recs repos.RecommendationRepo,
) RecommendationService {
	return &recommendationService{
		log:      baseLog.With("service", "RecommendationService"),
		cfg:      cfg,
		profiles: profiles,
		embedder: embedder,
		courses:  courses,
		recs:     recs,
	}
}

func (s *recommendationService) Recommend(ctx context.Context, result *types.AssessmentResult) ([]types.RankedCourse, error) {
	profileText, err := s.profiles.Build(ctx, result)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrInsufficientProfile) {
			s.log.Info("assessment result has nothing to recommend against", "student_id", result.StudentID.String())
			return []types.RankedCourse{}, nil
		}
		return []types.RankedCourse{}, err
	}

	// The profile embedding and the corpus fetch are order-independent;
	// only scoring needs both. Errors are collected per branch rather than
	// cancelling the group, since each failure has its own fallback.
	var (
		profileVec []float32
		embedErr   error
		corpus     []*types.Course
		corpusErr  error
	)
	var g errgroup.Group
	g.Go(func() error {
		profileVec, embedErr = s.embedder.Embed(ctx, profileText)
		return nil
	})
	g.Go(func() error {
		corpus, corpusErr = s.courses.GetWithEmbeddings(ctx, nil)
		return nil
	})
	_ = g.Wait()

	if corpusErr != nil {
		s.log.Error("course corpus unavailable, returning empty recommendations", "error", corpusErr)
		return []types.RankedCourse{}, nil
	}
	if embedErr != nil {
		if errors.Is(embedErr, pkgerrors.ErrEmbeddingUnavailable) || errors.Is(embedErr, pkgerrors.ErrTextTooShort) {
			s.log.Warn("profile embedding unavailable, using keyword fallback", "error", embedErr)
			return s.keywordFallback(ctx, result)
		}
		return []types.RankedCourse{}, embedErr
	}

	ranked := s.rankCorpus(profileVec, corpus, result, s.cfg.TopN)
	s.log.Info("ranked course corpus",
		"student_id", result.StudentID.String(),
		"corpus_size", len(corpus),
		"returned", len(ranked))
	return ranked, nil
}

func (s *recommendationService) RecommendByType(ctx context.Context, result *types.AssessmentResult, maxPerType int) ([]types.RankedCourse, []types.RankedCourse, error) {
	if maxPerType <= 0 {
		maxPerType = 5
	}

	profileText, err := s.profiles.Build(ctx, result)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrInsufficientProfile) {
			return []types.RankedCourse{}, []types.RankedCourse{}, nil
		}
		return nil, nil, err
	}

	// One embed serves both sub-corpora.
	profileVec, embedErr := s.embedder.Embed(ctx, profileText)
	useFallback := false
	if embedErr != nil {
		if !errors.Is(embedErr, pkgerrors.ErrEmbeddingUnavailable) && !errors.Is(embedErr, pkgerrors.ErrTextTooShort) {
			return nil, nil, embedErr
		}
		s.log.Warn("profile embedding unavailable, keyword-ranking sub-corpora", "error", embedErr)
		useFallback = true
	}

	rankType := func(skillType string, out *[]types.RankedCourse, outErr *error) {
		sub, err := s.courses.GetBySkillType(ctx, nil, skillType)
		if err != nil {
			*outErr = err
			return
		}
		if useFallback {
			*out = rankByKeywords(sub, fallbackTerms(result), result, maxPerType)
			return
		}
		*out = s.rankCorpus(profileVec, sub, result, maxPerType)
	}

	var (
		technical, soft  []types.RankedCourse
		techErr, softErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		rankType(types.SkillTypeTechnical, &technical, &techErr)
		return nil
	})
	g.Go(func() error {
		rankType(types.SkillTypeSoft, &soft, &softErr)
		return nil
	})
	_ = g.Wait()

	if techErr != nil || softErr != nil {
		s.log.Error("sub-corpus fetch failed, returning empty type lists",
			"technical_error", techErr, "soft_error", softErr)
		return []types.RankedCourse{}, []types.RankedCourse{}, nil
	}
	return technical, soft, nil
}

func (s *recommendationService) GenerateAndStore(ctx context.Context, studentID uuid.UUID, result *types.AssessmentResult) ([]types.RankedCourse, error) {
	ranked, err := s.Recommend(ctx, result)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return ranked, nil
	}

	rows := make([]*types.CourseRecommendation, 0, len(ranked))
	for _, rc := range ranked {
		rows = append(rows, &types.CourseRecommendation{
			StudentID:          studentID,
			CourseID:           rc.Course.ID,
			AssessmentResultID: result.ID,
			RecommendationType: types.RecommendationTypeAssessment,
			RelevanceScore:     rc.RelevanceScore,
			MatchReasons:       rc.MatchReasons,
			SkillGapsAddressed: rc.SkillGapsAddressed,
		})
	}
	if err := s.recs.Upsert(ctx, nil, rows); err != nil {
		s.log.Error("failed to persist recommendations", "student_id", studentID.String(), "error", err)
		return nil, err
	}
	s.log.Info("stored recommendations", "student_id", studentID.String(), "count", len(rows))
	return ranked, nil
}

func (s *recommendationService) ListForStudent(ctx context.Context, studentID uuid.UUID, q repos.RecommendationQuery) ([]*types.CourseRecommendation, error) {
	return s.recs.GetByStudent(ctx, nil, studentID, q)
}

func (s *recommendationService) UpdateStatus(ctx context.Context, id uuid.UUID, status, dismissedReason string) error {
	return s.recs.UpdateStatus(ctx, nil, id, status, dismissedReason)
}

// rankCorpus scores every course with a parseable embedding, drops matches
// below the similarity floor, and returns the top entries ordered by raw
// similarity. Sorting on the unrounded similarity avoids rank instability
// from relevance-score rounding ties.
func (s *recommendationService) rankCorpus(profileVec []float32, corpus []*types.Course, result *types.AssessmentResult, limit int) []types.RankedCourse {
	ranked := make([]types.RankedCourse, 0, len(corpus))
	for _, course := range corpus {
		vec := vectors.ParseEmbedding(course.Embedding)
		if vec == nil {
			continue
		}
		sim, err := vectors.CosineSimilarity(profileVec, vec)
		if err != nil {
			s.log.Warn("skipping course with incompatible embedding", "course_id", course.ID.String(), "error", err)
			continue
		}
		if sim < s.cfg.MinSimilarity {
			continue
		}
		ranked = append(ranked, types.RankedCourse{
			Course:             course,
			Similarity:         sim,
			RelevanceScore:     vectors.RelevanceScore(sim),
			MatchReasons:       matchReasons(course, result),
			SkillGapsAddressed: skillGapsAddressed(course, result),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// keywordFallback ranks a bounded basic course listing by literal keyword
// hits when no profile vector exists. It intentionally applies no similarity
// threshold since there is no similarity.
func (s *recommendationService) keywordFallback(ctx context.Context, result *types.AssessmentResult) ([]types.RankedCourse, error) {
	terms := fallbackTerms(result)
	if len(terms) == 0 {
		return []types.RankedCourse{}, nil
	}

	courses, err := s.courses.GetBasic(ctx, nil, s.cfg.FallbackCourseLimit)
	if err != nil {
		s.log.Error("keyword fallback could not fetch courses", "error", err)
		return []types.RankedCourse{}, nil
	}

	ranked := rankByKeywords(courses, terms, result, s.cfg.TopN)
	s.log.Info("keyword fallback ranking served", "terms", len(terms), "returned", len(ranked))
	return ranked, nil
}

// fallbackTerms collects the literal search terms that stand in for the
// profile vector: gap names plus career-cluster titles and domains.
func fallbackTerms(result *types.AssessmentResult) []string {
	var terms []string
	seen := make(map[string]bool)
	add := func(t string) {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			return
		}
		seen[key] = true
		terms = append(terms, t)
	}
	for _, gap := range result.PrioritySkillGaps {
		add(gap.Skill)
	}
	for _, gap := range result.SecondarySkillGaps {
		add(gap.Skill)
	}
	for _, cluster := range result.CareerClusters {
		add(cluster.Title)
		for _, domain := range cluster.Domains {
			add(domain)
		}
	}
	return terms
}

func rankByKeywords(courses []*types.Course, terms []string, result *types.AssessmentResult, limit int) []types.RankedCourse {
	type scored struct {
		course *types.Course
		hits   int
	}
	matches := make([]scored, 0, len(courses))
	for _, course := range courses {
		text := courseSearchText(course)
		hits := 0
		for _, term := range terms {
			if strings.Contains(text, strings.ToLower(term)) {
				hits++
			}
		}
		if hits > 0 {
			matches = append(matches, scored{course: course, hits: hits})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].hits > matches[j].hits
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	ranked := make([]types.RankedCourse, 0, len(matches))
	for _, m := range matches {
		score := 40 + m.hits*15
		if score > 100 {
			score = 100
		}
		ranked = append(ranked, types.RankedCourse{
			Course:             m.course,
			RelevanceScore:     score,
			MatchReasons:       matchReasons(m.course, result),
			SkillGapsAddressed: skillGapsAddressed(m.course, result),
		})
	}
	return ranked
}
