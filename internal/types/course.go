package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	CourseStatusActive   = "Active"
	CourseStatusDraft    = "Draft"
	CourseStatusArchived = "Archived"

	SkillTypeTechnical = "technical"
	SkillTypeSoft      = "soft"
)

type Course struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string         `gorm:"column:title;not null" json:"title"`
	Code           string         `gorm:"column:code;index" json:"code"`
	Description    string         `gorm:"column:description" json:"description"`
	Duration       string         `gorm:"column:duration" json:"duration"`
	Category       string         `gorm:"column:category" json:"category"`
	TargetOutcomes []string       `gorm:"column:target_outcomes;type:jsonb;serializer:json" json:"target_outcomes"`
	SkillType      string         `gorm:"column:skill_type;index" json:"skill_type"`
	Status         string         `gorm:"column:status;not null;default:'Active';index" json:"status"`
	// Embedding holds the precomputed course vector as a JSON array. Rows
	// without a parseable vector are still returned by corpus queries; the
	// scorer is responsible for skipping them.
	Embedding datatypes.JSON `gorm:"column:embedding;type:jsonb" json:"embedding,omitempty"`
	Skills    []CourseSkill  `gorm:"foreignKey:CourseID;references:ID" json:"skills,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string { return "course" }

func (c *Course) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CourseSkill struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID         uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	SkillName        string    `gorm:"column:skill_name;not null;index" json:"skill_name"`
	ProficiencyLevel string    `gorm:"column:proficiency_level" json:"proficiency_level,omitempty"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
}

func (CourseSkill) TableName() string { return "course_skill" }

func (s *CourseSkill) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
