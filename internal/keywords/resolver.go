package keywords

import (
	"context"
	"strings"

	"github.com/brightpath/pathways-backend/internal/clients/openai"
	"github.com/brightpath/pathways-backend/internal/logger"
)

// GenericKeywords is the last-resort bundle when nothing about the field of
// study is recognizable.
const GenericKeywords = "professional skills, communication, problem solving, teamwork, time management, critical thinking, career development, workplace readiness"

// tier is one strategy in the resolution chain. A tier either produces a
// keyword bundle or signals the chain to continue.
type tier interface {
	name() string
	attempt(ctx context.Context, field string) (string, bool)
}

// Resolver maps a free-text field of study to domain keywords through an
// ordered tier chain: AI generation, pattern rules, generic bundle. Results
// are cached by normalized field before the first tier runs.
type Resolver struct {
	log   *logger.Logger
	cache Cache
	tiers []tier
}

// NewResolver wires the tier chain. ai may be nil, in which case resolution
// starts at the pattern tier.
func NewResolver(baseLog *logger.Logger, ai openai.Client, cache Cache) *Resolver {
	resolverLog := baseLog.With("service", "KeywordResolver")
	tiers := make([]tier, 0, 3)
	if ai != nil {
		tiers = append(tiers, &aiTier{log: resolverLog, ai: ai})
	}
	tiers = append(tiers, &patternTier{}, &genericTier{})
	return &Resolver{
		log:   resolverLog,
		cache: cache,
		tiers: tiers,
	}
}

func (r *Resolver) Resolve(ctx context.Context, fieldOfStudy string) string {
	field := strings.TrimSpace(fieldOfStudy)
	if field == "" {
		return GenericKeywords
	}

	if r.cache != nil {
		if cached, ok := r.cache.Get(ctx, field); ok {
			r.log.Debug("Keyword cache hit", "field", NormalizeField(field))
			return cached
		}
	}

	for _, t := range r.tiers {
		keywords, ok := t.attempt(ctx, field)
		if !ok {
			continue
		}
		r.log.Info("Domain keywords resolved", "field", NormalizeField(field), "tier", t.name())
		if r.cache != nil {
			r.cache.Put(ctx, field, keywords)
		}
		return keywords
	}

	// The generic tier always succeeds; this is unreachable with the default
	// chain but keeps custom chains safe.
	return GenericKeywords
}

// -------------------- AI tier --------------------

type aiTier struct {
	log *logger.Logger
	ai  openai.Client
}

func (t *aiTier) name() string { return "ai" }

func (t *aiTier) attempt(ctx context.Context, field string) (string, bool) {
	res, err := t.ai.GenerateKeywords(ctx, field)
	if err != nil {
		t.log.Warn("AI keyword generation failed, falling through", "field", NormalizeField(field), "error", err)
		return "", false
	}
	if res.Fallback || strings.TrimSpace(res.Keywords) == "" {
		t.log.Debug("AI keyword generation requested fallback", "field", NormalizeField(field))
		return "", false
	}
	return strings.TrimSpace(res.Keywords), true
}

// -------------------- Pattern tier --------------------

type patternRule struct {
	terms    []string
	keywords string
}

// Rules are checked in order; the first match wins. Terms of three characters
// or fewer are matched as whole tokens so "cs" does not fire on "physics".
var patternRules = []patternRule{
	{
		terms:    []string{"computer", "software", "information technology", "cs", "it", "bca", "mca"},
		keywords: "programming, data structures, algorithms, databases, web development, software engineering, operating systems, networking, cloud computing, python, java",
	},
	{
		terms:    []string{"commerce", "bcom", "bba", "mba", "accounting", "finance"},
		keywords: "accounting, bookkeeping, taxation, financial analysis, business management, economics, excel, tally, auditing, banking, marketing",
	},
	{
		terms:    []string{"engineering", "btech", "mtech", "mechanical", "electrical", "civil", "electronics"},
		keywords: "engineering mathematics, mechanics, circuit design, thermodynamics, CAD, materials science, manufacturing, project engineering, technical drawing",
	},
	{
		terms:    []string{"science", "physics", "chemistry", "biology", "bsc", "msc"},
		keywords: "scientific method, laboratory techniques, data analysis, research methodology, statistics, experimentation, technical writing",
	},
	{
		terms:    []string{"arts", "humanities", "literature", "history", "sociology", "psychology", "ba"},
		keywords: "writing, research, critical analysis, communication, public speaking, content creation, social research, languages",
	},
	{
		terms:    []string{"design", "animation", "multimedia", "fine arts", "fashion"},
		keywords: "graphic design, visual communication, typography, illustration, animation, video editing, UI design, creative software, portfolio development",
	},
	{
		terms:    []string{"school", "10th", "12th", "secondary", "high school"},
		keywords: "foundational mathematics, science basics, english, computer literacy, study skills, general knowledge, exam preparation",
	},
}

type patternTier struct{}

func (t *patternTier) name() string { return "pattern" }

func (t *patternTier) attempt(_ context.Context, field string) (string, bool) {
	lowered := NormalizeField(field)
	for _, rule := range patternRules {
		if matchesAny(lowered, rule.terms) {
			return rule.keywords, true
		}
	}
	return "", false
}

func matchesAny(field string, terms []string) bool {
	tokens := strings.FieldsFunc(field, func(r rune) bool {
		return r == ' ' || r == '.' || r == ',' || r == '-' || r == '(' || r == ')'
	})
	for _, term := range terms {
		if len(term) <= 3 {
			for _, tok := range tokens {
				if tok == term {
					return true
				}
			}
			continue
		}
		if strings.Contains(field, term) {
			return true
		}
	}
	return false
}

// -------------------- Generic tier --------------------

type genericTier struct{}

func (t *genericTier) name() string { return "generic" }

func (t *genericTier) attempt(context.Context, string) (string, bool) {
	return GenericKeywords, true
}
