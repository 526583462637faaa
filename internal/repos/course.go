package repos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/brightpath/pathways-backend/internal/logger"
	pkgerrors "github.com/brightpath/pathways-backend/internal/pkg/errors"
	"github.com/brightpath/pathways-backend/internal/types"
)

// CourseRepo reads the active course corpus. Every query filters to Active,
// non-deleted courses; embedding parsing is left to callers so rows with a
// malformed vector can still serve keyword paths.
type CourseRepo interface {
	GetWithEmbeddings(ctx context.Context, tx *gorm.DB) ([]*types.Course, error)
	GetBySkillType(ctx context.Context, tx *gorm.DB, skillType string) ([]*types.Course, error)
	GetBasic(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Course, error)
	GetBySkillName(ctx context.Context, tx *gorm.DB, name string) ([]types.SkillNameMatch, error)
	UpdateEmbedding(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, embedding datatypes.JSON) error
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

// dbErr wraps any corpus/persistence failure, surfacing the SQLSTATE when the
// driver provides one.
func dbErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pkgerrors.NewDatabaseError(fmt.Sprintf("%s (sqlstate %s)", op, pgErr.Code), err)
	}
	return pkgerrors.NewDatabaseError(op, err)
}

func (r *courseRepo) activeScope(tx *gorm.DB) *gorm.DB {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.Where("status = ?", types.CourseStatusActive)
}

func (r *courseRepo) GetWithEmbeddings(ctx context.Context, tx *gorm.DB) ([]*types.Course, error) {
	var results []*types.Course
	if err := r.activeScope(tx).WithContext(ctx).
		Preload("Skills").
		Find(&results).Error; err != nil {
		return nil, dbErr("course.GetWithEmbeddings", err)
	}
	return results, nil
}

func (r *courseRepo) GetBySkillType(ctx context.Context, tx *gorm.DB, skillType string) ([]*types.Course, error) {
	var results []*types.Course
	if err := r.activeScope(tx).WithContext(ctx).
		Where("skill_type = ?", skillType).
		Preload("Skills").
		Find(&results).Error; err != nil {
		return nil, dbErr("course.GetBySkillType", err)
	}
	return results, nil
}

func (r *courseRepo) GetBasic(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Course, error) {
	var results []*types.Course
	q := r.activeScope(tx).WithContext(ctx).
		Omit("embedding").
		Preload("Skills").
		Order("title ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, dbErr("course.GetBasic", err)
	}
	return results, nil
}

func (r *courseRepo) GetBySkillName(ctx context.Context, tx *gorm.DB, name string) ([]types.SkillNameMatch, error) {
	query := strings.TrimSpace(name)
	if query == "" {
		return []types.SkillNameMatch{}, nil
	}

	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	// Substring match in both directions so "Excel" finds "Advanced Excel"
	// and "Microsoft Excel Basics" finds "Excel". The || concatenation is
	// portable across postgres and the sqlite test database.
	var tags []*types.CourseSkill
	if err := transaction.WithContext(ctx).
		Where("LOWER(skill_name) LIKE '%' || LOWER(?) || '%' OR LOWER(?) LIKE '%' || LOWER(skill_name) || '%'", query, query).
		Find(&tags).Error; err != nil {
		return nil, dbErr("course.GetBySkillName", err)
	}
	if len(tags) == 0 {
		return []types.SkillNameMatch{}, nil
	}

	strongest := make(map[uuid.UUID]types.SkillNameMatch, len(tags))
	courseIDs := make([]uuid.UUID, 0, len(tags))
	for _, tag := range tags {
		strength := tagMatchStrength(query, tag.SkillName)
		existing, seen := strongest[tag.CourseID]
		if !seen {
			courseIDs = append(courseIDs, tag.CourseID)
		}
		if !seen || strength > existing.MatchStrength {
			strongest[tag.CourseID] = types.SkillNameMatch{
				MatchedSkill:  tag.SkillName,
				MatchStrength: strength,
			}
		}
	}

	var courses []*types.Course
	if err := r.activeScope(tx).WithContext(ctx).
		Where("id IN ?", courseIDs).
		Preload("Skills").
		Find(&courses).Error; err != nil {
		return nil, dbErr("course.GetBySkillName", err)
	}

	results := make([]types.SkillNameMatch, 0, len(courses))
	for _, course := range courses {
		match := strongest[course.ID]
		match.Course = course
		results = append(results, match)
	}
	return results, nil
}

func (r *courseRepo) UpdateEmbedding(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, embedding datatypes.JSON) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Course{}).
		Where("id = ?", courseID).
		Update("embedding", embedding)
	if res.Error != nil {
		return dbErr("course.UpdateEmbedding", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

func tagMatchStrength(query, tag string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	tg := strings.ToLower(strings.TrimSpace(tag))
	switch {
	case q == tg:
		return 1.0
	case strings.Contains(tg, q):
		return 0.8
	default:
		return 0.6
	}
}
