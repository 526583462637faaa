package keywords

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/brightpath/pathways-backend/internal/clients/openai"
	"github.com/brightpath/pathways-backend/internal/logger"
)

type fakeAI struct {
	res   openai.KeywordResult
	err   error
	calls int
}

func (f *fakeAI) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("not used")
}

func (f *fakeAI) GenerateKeywords(context.Context, string) (openai.KeywordResult, error) {
	f.calls++
	return f.res, f.err
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestResolveAITierServes(t *testing.T) {
	ai := &fakeAI{res: openai.KeywordResult{Keywords: "robotics, control systems, embedded programming"}}
	r := NewResolver(testLogger(t), ai, NewMemoryCache(0))

	got := r.Resolve(context.Background(), "Mechatronics")
	if got != ai.res.Keywords {
		t.Fatalf("Resolve = %q, want AI keywords", got)
	}
	if ai.calls != 1 {
		t.Fatalf("AI calls = %d, want 1", ai.calls)
	}
}

func TestResolveFallsToPatternOnAIFailure(t *testing.T) {
	cases := []struct {
		name  string
		field string
		want  string
	}{
		{name: "computer_science", field: "Computer Science", want: "programming"},
		{name: "cs_token", field: "B.Sc CS", want: "programming"},
		{name: "physics_is_not_cs", field: "Physics", want: "scientific method"},
		{name: "commerce", field: "BCom (Hons)", want: "accounting"},
		{name: "engineering", field: "Mechanical Engineering", want: "mechanics"},
		{name: "arts", field: "History and Humanities", want: "critical analysis"},
		{name: "design", field: "Animation and Multimedia", want: "graphic design"},
		{name: "school", field: "12th Standard", want: "foundational mathematics"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ai := &fakeAI{err: errors.New("provider down")}
			r := NewResolver(testLogger(t), ai, NewMemoryCache(0))
			got := r.Resolve(context.Background(), tc.field)
			if !strings.Contains(got, tc.want) {
				t.Fatalf("Resolve(%q) = %q, want substring %q", tc.field, got, tc.want)
			}
		})
	}
}

func TestResolveGenericWhenNothingMatches(t *testing.T) {
	ai := &fakeAI{res: openai.KeywordResult{Fallback: true}}
	r := NewResolver(testLogger(t), ai, NewMemoryCache(0))
	got := r.Resolve(context.Background(), "Underwater Basket Weaving")
	if got != GenericKeywords {
		t.Fatalf("Resolve = %q, want generic bundle", got)
	}
}

func TestResolveCacheShortCircuitsAI(t *testing.T) {
	ai := &fakeAI{res: openai.KeywordResult{Keywords: "nursing, anatomy, patient care"}}
	cache := NewMemoryCache(0)
	r := NewResolver(testLogger(t), ai, cache)

	first := r.Resolve(context.Background(), "Nursing")
	second := r.Resolve(context.Background(), "  nursing  ")
	if first != second {
		t.Fatalf("cache returned different keywords: %q vs %q", first, second)
	}
	if ai.calls != 1 {
		t.Fatalf("AI calls = %d, want 1 (second resolve served by cache)", ai.calls)
	}
	if cache.Len() != 1 {
		t.Fatalf("cache entries = %d, want 1", cache.Len())
	}
}

func TestResolveWithoutAIClient(t *testing.T) {
	r := NewResolver(testLogger(t), nil, NewMemoryCache(0))
	got := r.Resolve(context.Background(), "Software Engineering")
	if !strings.Contains(got, "programming") {
		t.Fatalf("Resolve without AI = %q, want pattern keywords", got)
	}
}

func TestMemoryCacheCap(t *testing.T) {
	cache := NewMemoryCache(2)
	ctx := context.Background()
	cache.Put(ctx, "a", "ka")
	cache.Put(ctx, "b", "kb")
	cache.Put(ctx, "c", "kc")
	if cache.Len() != 2 {
		t.Fatalf("cache entries = %d, want cap of 2", cache.Len())
	}
	if _, ok := cache.Get(ctx, "c"); ok {
		t.Fatal("insert above cap should be dropped")
	}
	// Updating an existing key is still allowed at the cap.
	cache.Put(ctx, "a", "ka2")
	if v, _ := cache.Get(ctx, "a"); v != "ka2" {
		t.Fatalf("existing key update = %q, want ka2", v)
	}
}
