package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SkillGap is one underdeveloped skill surfaced by assessment analysis.
type SkillGap struct {
	Skill        string `json:"skill"`
	CurrentLevel string `json:"current_level,omitempty"`
	TargetLevel  string `json:"target_level,omitempty"`
}

// CareerCluster groups related career paths surfaced by assessment analysis.
type CareerCluster struct {
	Title      string   `json:"title"`
	Domains    []string `json:"domains,omitempty"`
	EntryRoles []string `json:"entry_roles,omitempty"`
}

// EmployabilityArea is an employability factor flagged either as a strength
// or an area to improve.
type EmployabilityArea struct {
	Area string `json:"area"`
	Kind string `json:"kind,omitempty"` // "strength" | "improvement"
}

type AssessmentResult struct {
	ID                 uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID          uuid.UUID           `gorm:"type:uuid;not null;index" json:"student_id"`
	FieldOfStudy       string              `gorm:"column:field_of_study" json:"field_of_study"`
	RiasecCode         string              `gorm:"column:riasec_code" json:"riasec_code"`
	RecommendedTrack   string              `gorm:"column:recommended_track" json:"recommended_track"`
	PrioritySkillGaps  []SkillGap          `gorm:"column:priority_skill_gaps;type:jsonb;serializer:json" json:"priority_skill_gaps"`
	SecondarySkillGaps []SkillGap          `gorm:"column:secondary_skill_gaps;type:jsonb;serializer:json" json:"secondary_skill_gaps"`
	CurrentStrengths   []string            `gorm:"column:current_strengths;type:jsonb;serializer:json" json:"current_strengths"`
	CareerClusters     []CareerCluster     `gorm:"column:career_clusters;type:jsonb;serializer:json" json:"career_clusters"`
	EmployabilityAreas []EmployabilityArea `gorm:"column:employability_areas;type:jsonb;serializer:json" json:"employability_areas"`
	AptitudeStrengths  []string            `gorm:"column:aptitude_strengths;type:jsonb;serializer:json" json:"aptitude_strengths"`
	CreatedAt          time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time           `gorm:"not null" json:"updated_at"`
	DeletedAt          gorm.DeletedAt      `gorm:"index" json:"deleted_at,omitempty"`
}

func (AssessmentResult) TableName() string { return "assessment_result" }

func (a *AssessmentResult) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
