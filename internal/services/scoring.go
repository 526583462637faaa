package services

import (
	"strings"

	"github.com/brightpath/pathways-backend/internal/types"
)

const genericMatchReason = "Matches your career profile"

// matchReasons builds up to three deterministic explanation sentences for a
// ranked course. Reasons are rule-based rather than similarity-derived so the
// same course/result pair always explains itself the same way.
func matchReasons(course *types.Course, result *types.AssessmentResult) []string {
	reasons := make([]string, 0, 3)

	if hit := overlappingGaps(course, result.PrioritySkillGaps); len(hit) > 0 {
		reasons = append(reasons, "Builds skills you need most: "+strings.Join(hit, ", "))
	}
	if len(reasons) < 3 {
		if hit := overlappingGaps(course, result.SecondarySkillGaps); len(hit) > 0 {
			reasons = append(reasons, "Strengthens secondary skills: "+strings.Join(hit, ", "))
		}
	}
	if len(reasons) < 3 {
		if domain := mentionedClusterDomain(course, result.CareerClusters); domain != "" {
			reasons = append(reasons, "Relevant to your target career area: "+domain)
		}
	}
	if len(reasons) == 0 {
		reasons = append(reasons, genericMatchReason)
	}
	if len(reasons) > 3 {
		reasons = reasons[:3]
	}
	return reasons
}

// skillGapsAddressed lists the gap names this course appears to cover, using
// case-insensitive substring matching in either direction against the
// course's tags, title and description. Display only; never used for ranking.
func skillGapsAddressed(course *types.Course, result *types.AssessmentResult) []string {
	text := courseSearchText(course)
	addressed := make([]string, 0, len(result.PrioritySkillGaps)+len(result.SecondarySkillGaps))
	seen := make(map[string]bool)

	consider := func(gaps []types.SkillGap) {
		for _, gap := range gaps {
			name := strings.TrimSpace(gap.Skill)
			if name == "" || seen[strings.ToLower(name)] {
				continue
			}
			if courseAddressesSkill(course, text, name) {
				addressed = append(addressed, name)
				seen[strings.ToLower(name)] = true
			}
		}
	}
	consider(result.PrioritySkillGaps)
	consider(result.SecondarySkillGaps)
	return addressed
}

// overlappingGaps returns the gap names whose name and a course skill tag
// contain each other (either direction, case-insensitive).
func overlappingGaps(course *types.Course, gaps []types.SkillGap) []string {
	var hit []string
	for _, gap := range gaps {
		name := strings.ToLower(strings.TrimSpace(gap.Skill))
		if name == "" {
			continue
		}
		for _, tag := range course.Skills {
			tg := strings.ToLower(strings.TrimSpace(tag.SkillName))
			if tg == "" {
				continue
			}
			if strings.Contains(tg, name) || strings.Contains(name, tg) {
				hit = append(hit, strings.TrimSpace(gap.Skill))
				break
			}
		}
	}
	return hit
}

func mentionedClusterDomain(course *types.Course, clusters []types.CareerCluster) string {
	if len(clusters) == 0 {
		return ""
	}
	desc := strings.ToLower(course.Description)
	for _, domain := range clusters[0].Domains {
		d := strings.TrimSpace(domain)
		if d != "" && strings.Contains(desc, strings.ToLower(d)) {
			return d
		}
	}
	return ""
}

func courseAddressesSkill(course *types.Course, searchText, skill string) bool {
	name := strings.ToLower(strings.TrimSpace(skill))
	if name == "" {
		return false
	}
	if strings.Contains(searchText, name) {
		return true
	}
	// Reverse direction: a broad tag like "Spreadsheets" addresses the
	// narrower gap "Advanced Spreadsheets".
	for _, tag := range course.Skills {
		tg := strings.ToLower(strings.TrimSpace(tag.SkillName))
		if tg != "" && strings.Contains(name, tg) {
			return true
		}
	}
	return false
}

// courseSearchText flattens the fields keyword paths match against.
func courseSearchText(course *types.Course) string {
	parts := make([]string, 0, 3+len(course.Skills))
	parts = append(parts, course.Title, course.Description, course.Category)
	for _, tag := range course.Skills {
		parts = append(parts, tag.SkillName)
	}
	return strings.ToLower(strings.Join(parts, " "))
}
