package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RecommendationTypeAssessment = "assessment"
	RecommendationTypeSkillGap   = "skill_gap"
	RecommendationTypeCareerPath = "career_path"
	RecommendationTypeManual     = "manual"

	RecommendationStatusActive    = "active"
	RecommendationStatusEnrolled  = "enrolled"
	RecommendationStatusDismissed = "dismissed"
	RecommendationStatusCompleted = "completed"
)

// CourseRecommendation is the persisted outcome of a recommendation run.
// Identity is the (student, course, assessment result) triple; re-running
// generation upserts onto the same row instead of duplicating it.
type CourseRecommendation struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID          uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_student_course_result;index" json:"student_id"`
	CourseID           uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_student_course_result" json:"course_id"`
	AssessmentResultID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_student_course_result;index" json:"assessment_result_id"`
	Course             *Course           `gorm:"foreignKey:CourseID;references:ID" json:"course,omitempty"`
	AssessmentResult   *AssessmentResult `gorm:"foreignKey:AssessmentResultID;references:ID" json:"assessment_result,omitempty"`
	RelevanceScore     int               `gorm:"column:relevance_score;not null;default:0" json:"relevance_score"`
	MatchReasons       []string          `gorm:"column:match_reasons;type:jsonb;serializer:json" json:"match_reasons"`
	SkillGapsAddressed []string          `gorm:"column:skill_gaps_addressed;type:jsonb;serializer:json" json:"skill_gaps_addressed"`
	RecommendationType string            `gorm:"column:recommendation_type;not null;default:'assessment'" json:"recommendation_type"`
	Status             string            `gorm:"column:status;not null;default:'active';index" json:"status"`
	DismissedReason    *string           `gorm:"column:dismissed_reason" json:"dismissed_reason,omitempty"`
	DismissedAt        *time.Time        `gorm:"column:dismissed_at" json:"dismissed_at,omitempty"`
	CreatedAt          time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"not null" json:"updated_at"`
	DeletedAt          gorm.DeletedAt    `gorm:"index" json:"deleted_at,omitempty"`
}

func (CourseRecommendation) TableName() string { return "course_recommendation" }

func (r *CourseRecommendation) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
