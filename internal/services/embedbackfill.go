package services

import (
	"context"
	"strings"

	"github.com/brightpath/pathways-backend/internal/config"
	"github.com/brightpath/pathways-backend/internal/logger"
	"github.com/brightpath/pathways-backend/internal/repos"
	"github.com/brightpath/pathways-backend/internal/types"
	"github.com/brightpath/pathways-backend/internal/vectors"
)

// BatchEmbedder is the batched counterpart of Embedder. embedding.Service
// satisfies it.
type BatchEmbedder interface {
	EmbedMany(ctx context.Context, texts []string, maxConcurrent int) [][]float32
}

type CourseEmbeddingService interface {
	// BackfillEmbeddings computes and stores vectors for active courses that
	// do not have a parseable one yet. Returns the number of courses updated.
	// Per-course failures are skipped, not fatal; a later run picks them up.
	BackfillEmbeddings(ctx context.Context) (int, error)
}

type courseEmbeddingService struct {
	log      *logger.Logger
	cfg      config.Config
	embedder BatchEmbedder
	courses  repos.CourseRepo
}

func NewCourseEmbeddingService(baseLog *logger.Logger, cfg config.Config, embedder BatchEmbedder, courses repos.CourseRepo) CourseEmbeddingService {
	return &courseEmbeddingService{
		log:      baseLog.With("service", "CourseEmbeddingService"),
		cfg:      cfg,
		embedder: embedder,
		courses:  courses,
	}
}

func (s *courseEmbeddingService) BackfillEmbeddings(ctx context.Context) (int, error) {
	corpus, err := s.courses.GetWithEmbeddings(ctx, nil)
	if err != nil {
		return 0, err
	}

	var (
		pending []*types.Course
		texts   []string
	)
	for _, course := range corpus {
		if vectors.ParseEmbedding(course.Embedding) != nil {
			continue
		}
		pending = append(pending, course)
		texts = append(texts, courseEmbeddingText(course))
	}
	if len(pending) == 0 {
		return 0, nil
	}

	vecs := s.embedder.EmbedMany(ctx, texts, s.cfg.EmbedConcurrency)

	updated := 0
	for i, course := range pending {
		if vecs[i] == nil {
			s.log.Warn("course embedding failed, will retry on next run", "course_id", course.ID.String())
			continue
		}
		if err := s.courses.UpdateEmbedding(ctx, nil, course.ID, vectors.SerializeEmbedding(vecs[i])); err != nil {
			s.log.Error("could not store course embedding", "course_id", course.ID.String(), "error", err)
			continue
		}
		updated++
	}
	s.log.Info("course embedding backfill finished", "candidates", len(pending), "updated", updated)
	return updated, nil
}

// courseEmbeddingText flattens the fields that describe what a course
// teaches into the text that gets embedded.
func courseEmbeddingText(course *types.Course) string {
	parts := []string{course.Title, course.Description}
	if course.Category != "" {
		parts = append(parts, "Category: "+course.Category)
	}
	if len(course.Skills) > 0 {
		names := make([]string, 0, len(course.Skills))
		for _, tag := range course.Skills {
			names = append(names, tag.SkillName)
		}
		parts = append(parts, "Skills: "+strings.Join(names, ", "))
	}
	if len(course.TargetOutcomes) > 0 {
		parts = append(parts, "Outcomes: "+strings.Join(course.TargetOutcomes, ", "))
	}
	return strings.Join(parts, "\n")
}
