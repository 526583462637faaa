package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brightpath/pathways-backend/internal/logger"
	pkgerrors "github.com/brightpath/pathways-backend/internal/pkg/errors"
	"github.com/brightpath/pathways-backend/internal/types"
)

// RecommendationQuery narrows GetByStudent. Zero values mean no filter.
type RecommendationQuery struct {
	Status             string
	AssessmentResultID uuid.UUID
}

type RecommendationRepo interface {
	// Upsert writes recommendation rows keyed by (student, course,
	// assessment result). Conflicting rows get refreshed scores and reasons;
	// their status (including a student's dismissal) is preserved.
	Upsert(ctx context.Context, tx *gorm.DB, recs []*types.CourseRecommendation) error
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, q RecommendationQuery) ([]*types.CourseRecommendation, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status, dismissedReason string) error
}

type recommendationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationRepo {
	return &recommendationRepo{db: db, log: baseLog.With("repo", "RecommendationRepo")}
}

func (r *recommendationRepo) Upsert(ctx context.Context, tx *gorm.DB, recs []*types.CourseRecommendation) error {
	if len(recs) == 0 {
		return nil
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	now := time.Now()
	for _, rec := range recs {
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		if rec.Status == "" {
			rec.Status = types.RecommendationStatusActive
		}
		if rec.RecommendationType == "" {
			rec.RecommendationType = types.RecommendationTypeAssessment
		}
		rec.UpdatedAt = now
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "student_id"},
				{Name: "course_id"},
				{Name: "assessment_result_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"relevance_score",
				"match_reasons",
				"skill_gaps_addressed",
				"recommendation_type",
				"updated_at",
			}),
		}).
		Create(&recs).Error; err != nil {
		return dbErr("recommendation.Upsert", err)
	}
	return nil
}

func (r *recommendationRepo) GetByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, q RecommendationQuery) ([]*types.CourseRecommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).
		Where("student_id = ?", studentID).
		Preload("Course").
		Order("relevance_score DESC")
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.AssessmentResultID != uuid.Nil {
		query = query.Where("assessment_result_id = ?", q.AssessmentResultID)
	}

	var results []*types.CourseRecommendation
	if err := query.Find(&results).Error; err != nil {
		return nil, dbErr("recommendation.GetByStudent", err)
	}
	return results, nil
}

func (r *recommendationRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status, dismissedReason string) error {
	switch status {
	case types.RecommendationStatusActive,
		types.RecommendationStatusEnrolled,
		types.RecommendationStatusDismissed,
		types.RecommendationStatusCompleted:
	default:
		return pkgerrors.ErrInvalidArgument
	}

	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	updates := map[string]any{
		"status":     status,
		"updated_at": time.Now(),
	}
	if status == types.RecommendationStatusDismissed {
		now := time.Now()
		updates["dismissed_at"] = &now
		if dismissedReason != "" {
			updates["dismissed_reason"] = dismissedReason
		}
	}

	res := transaction.WithContext(ctx).
		Model(&types.CourseRecommendation{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return dbErr("recommendation.UpdateStatus", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}
