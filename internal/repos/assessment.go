package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/pathways-backend/internal/logger"
	pkgerrors "github.com/brightpath/pathways-backend/internal/pkg/errors"
	"github.com/brightpath/pathways-backend/internal/types"
)

type AssessmentResultRepo interface {
	Create(ctx context.Context, tx *gorm.DB, result *types.AssessmentResult) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AssessmentResult, error)
	GetLatestByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (*types.AssessmentResult, error)
}

type assessmentResultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentResultRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentResultRepo {
	return &assessmentResultRepo{db: db, log: baseLog.With("repo", "AssessmentResultRepo")}
}

func (r *assessmentResultRepo) Create(ctx context.Context, tx *gorm.DB, result *types.AssessmentResult) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(result).Error; err != nil {
		return dbErr("assessment.Create", err)
	}
	return nil
}

func (r *assessmentResultRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AssessmentResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.AssessmentResult
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, dbErr("assessment.GetByID", err)
	}
	return &result, nil
}

func (r *assessmentResultRepo) GetLatestByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (*types.AssessmentResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.AssessmentResult
	if err := transaction.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, dbErr("assessment.GetLatestByStudent", err)
	}
	return &result, nil
}
