package types

// Ephemeral match results. These are built per request and never persisted
// directly; the recommendation repo converts RankedCourse into
// CourseRecommendation rows.

const (
	MatchTypeDirect   = "direct"
	MatchTypeSemantic = "semantic"
	MatchTypeCombined = "direct+semantic"
	MatchTypeFallback = "fallback"
)

// RankedCourse is one scored entry in a recommendation list.
type RankedCourse struct {
	Course             *Course  `json:"course"`
	Similarity         float64  `json:"similarity"`
	RelevanceScore     int      `json:"relevance_score"`
	MatchReasons       []string `json:"match_reasons"`
	SkillGapsAddressed []string `json:"skill_gaps_addressed"`
}

// GapCourseMatch is one course matched against a single skill gap.
type GapCourseMatch struct {
	Course         *Course `json:"course"`
	RelevanceScore int     `json:"relevance_score"`
	MatchType      string  `json:"match_type"`
	Reason         string  `json:"reason"`
}

// RoleCourseMatch is one course matched against a job role query.
type RoleCourseMatch struct {
	Course         *Course `json:"course"`
	RelevanceScore int     `json:"relevance_score"`
	Reason         string  `json:"reason"`
}

// SkillNameMatch is a course joined through a skill tag, with the strength of
// the tag match relative to the queried skill name.
type SkillNameMatch struct {
	Course        *Course `json:"course"`
	MatchedSkill  string  `json:"matched_skill"`
	MatchStrength float64 `json:"match_strength"` // 1.0 exact, 0.8 partial, 0.6 weak
}
