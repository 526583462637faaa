package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/brightpath/pathways-backend/internal/logger"
	pkgerrors "github.com/brightpath/pathways-backend/internal/pkg/errors"
	"github.com/brightpath/pathways-backend/internal/types"
)

// KeywordResolver is the slice of the keyword resolver the builder needs.
type KeywordResolver interface {
	Resolve(ctx context.Context, fieldOfStudy string) string
}

// Builder assembles the composite profile text a recommendation request is
// embedded from. Section order is deliberate: embeddings of long text skew
// toward earlier dense content, so the strongest ranking factors come first
// and RIASEC/aptitude context comes last.
type Builder struct {
	log      *logger.Logger
	keywords KeywordResolver
}

func NewBuilder(baseLog *logger.Logger, resolver KeywordResolver) *Builder {
	return &Builder{
		log:      baseLog.With("service", "ProfileBuilder"),
		keywords: resolver,
	}
}

func (b *Builder) Build(ctx context.Context, result *types.AssessmentResult) (string, error) {
	if result == nil {
		return "", pkgerrors.ErrInsufficientProfile
	}

	sections := make([]string, 0, 8)

	if field := strings.TrimSpace(result.FieldOfStudy); field != "" {
		section := fmt.Sprintf("Field of study: %s.", field)
		if b.keywords != nil {
			if kw := strings.TrimSpace(b.keywords.Resolve(ctx, field)); kw != "" {
				section += fmt.Sprintf(" Domain focus areas: %s.", kw)
			}
		}
		sections = append(sections, section)
	}

	hasPrimaryFactor := false

	if s := gapSection("Priority skills to develop", result.PrioritySkillGaps); s != "" {
		sections = append(sections, s)
		hasPrimaryFactor = true
	}
	if s := gapSection("Secondary skills to develop", result.SecondarySkillGaps); s != "" {
		sections = append(sections, s)
		hasPrimaryFactor = true
	}
	if len(result.CurrentStrengths) > 0 {
		sections = append(sections, fmt.Sprintf("Current strengths: %s.", strings.Join(result.CurrentStrengths, ", ")))
	}
	if track := strings.TrimSpace(result.RecommendedTrack); track != "" {
		sections = append(sections, fmt.Sprintf("Recommended learning track: %s.", track))
	}

	if s := clusterSection(result.CareerClusters); s != "" {
		sections = append(sections, s)
		hasPrimaryFactor = true
	}

	if s := employabilitySection(result.EmployabilityAreas); s != "" {
		sections = append(sections, s)
	}

	if s := contextSection(result.RiasecCode, result.AptitudeStrengths); s != "" {
		sections = append(sections, s)
	}

	if !hasPrimaryFactor {
		b.log.Debug("Assessment result has neither skill gaps nor career clusters", "assessment_result_id", result.ID)
		return "", pkgerrors.ErrInsufficientProfile
	}

	return strings.Join(sections, "\n\n"), nil
}

func gapSection(label string, gaps []types.SkillGap) string {
	parts := make([]string, 0, len(gaps))
	for _, g := range gaps {
		skill := strings.TrimSpace(g.Skill)
		if skill == "" {
			continue
		}
		if g.CurrentLevel != "" && g.TargetLevel != "" {
			parts = append(parts, fmt.Sprintf("%s (%s to %s)", skill, g.CurrentLevel, g.TargetLevel))
			continue
		}
		parts = append(parts, skill)
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("%s: %s.", label, strings.Join(parts, ", "))
}

func clusterSection(clusters []types.CareerCluster) string {
	titles := make([]string, 0, 3)
	for _, c := range clusters {
		title := strings.TrimSpace(c.Title)
		if title == "" {
			continue
		}
		titles = append(titles, title)
		if len(titles) == 3 {
			break
		}
	}
	if len(titles) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Career interests: %s.", strings.Join(titles, ", ")))
	top := clusters[0]
	if len(top.Domains) > 0 {
		sb.WriteString(fmt.Sprintf(" Key domains: %s.", strings.Join(top.Domains, ", ")))
	}
	if len(top.EntryRoles) > 0 {
		sb.WriteString(fmt.Sprintf(" Target entry-level roles: %s.", strings.Join(top.EntryRoles, ", ")))
	}
	return sb.String()
}

func employabilitySection(areas []types.EmployabilityArea) string {
	improvements := make([]string, 0, len(areas))
	strengths := make([]string, 0, len(areas))
	for _, a := range areas {
		area := strings.TrimSpace(a.Area)
		if area == "" {
			continue
		}
		if a.Kind == "strength" {
			strengths = append(strengths, area)
			continue
		}
		improvements = append(improvements, area)
	}
	parts := make([]string, 0, 2)
	if len(improvements) > 0 {
		parts = append(parts, fmt.Sprintf("Employability areas to improve: %s.", strings.Join(improvements, ", ")))
	}
	if len(strengths) > 0 {
		parts = append(parts, fmt.Sprintf("Employability strengths: %s.", strings.Join(strengths, ", ")))
	}
	return strings.Join(parts, " ")
}

func contextSection(riasec string, aptitudes []string) string {
	parts := make([]string, 0, 2)
	if code := strings.TrimSpace(riasec); code != "" {
		parts = append(parts, fmt.Sprintf("RIASEC profile: %s.", code))
	}
	if len(aptitudes) > 0 {
		top := aptitudes
		if len(top) > 3 {
			top = top[:3]
		}
		parts = append(parts, fmt.Sprintf("Aptitude strengths: %s.", strings.Join(top, ", ")))
	}
	return strings.Join(parts, " ")
}
