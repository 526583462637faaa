package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/brightpath/pathways-backend/internal/config"
	pkgerrors "github.com/brightpath/pathways-backend/internal/pkg/errors"
	"github.com/brightpath/pathways-backend/internal/types"
)

func TestMatchRoleJuniorAccountant(t *testing.T) {
	accounting := []*types.Course{
		course("Bookkeeping Essentials", types.SkillTypeTechnical, nil, "Bookkeeping", "Accounting"),
		course("Excel for Accountants", types.SkillTypeTechnical, nil, "Excel", "Financial Reporting"),
		course("Payroll and Tax Basics", types.SkillTypeTechnical, nil, "Payroll", "Tax"),
	}
	corpus := make([]*types.Course, 0, 23)
	corpus = append(corpus, accounting...)
	for i := 0; i < 20; i++ {
		corpus = append(corpus, course(fmt.Sprintf("Pottery %d", i), types.SkillTypeSoft, nil, "Ceramics"))
	}

	embedder := &fakeEmbedder{err: fmt.Errorf("%w: provider down", pkgerrors.ErrEmbeddingUnavailable)}
	matcher := NewRoleMatcher(testLogger(t), config.Default(), embedder)

	matches, err := matcher.MatchRole(context.Background(), "Junior Accountant", "Finance, Accounting & Business Management", corpus, 4)
	if err != nil {
		t.Fatalf("MatchRole: %v", err)
	}
	if len(matches) != 4 {
		t.Fatalf("got %d matches, want limit 4", len(matches))
	}

	wantTop := map[uuid.UUID]bool{
		accounting[0].ID: true,
		accounting[1].ID: true,
		accounting[2].ID: true,
	}
	for i := 0; i < 3; i++ {
		if !wantTop[matches[i].Course.ID] {
			t.Fatalf("position %d is %q, want an accounting course above the filler", i, matches[i].Course.Title)
		}
	}
	if wantTop[matches[3].Course.ID] {
		t.Fatal("fourth slot should be filler padding, not a duplicate accounting course")
	}
	if matches[3].Reason != "Recommended course" {
		t.Fatalf("padded reason = %q", matches[3].Reason)
	}
}

func TestMatchRoleSemanticRanking(t *testing.T) {
	dev := course("Web Development Bootcamp", types.SkillTypeTechnical, []float32{1, 0}, "Programming")
	design := course("Graphic Design Basics", types.SkillTypeSoft, []float32{0.5, 0.87}, "Design")
	corpus := []*types.Course{design, dev}

	matcher := NewRoleMatcher(testLogger(t), config.Default(), &fakeEmbedder{vec: []float32{1, 0}})

	matches, err := matcher.MatchRole(context.Background(), "Software Developer", "Technology", corpus, 2)
	if err != nil {
		t.Fatalf("MatchRole: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Course.ID != dev.ID {
		t.Fatalf("top match = %q, want the development course", matches[0].Course.Title)
	}
	if matches[0].RelevanceScore <= matches[1].RelevanceScore {
		t.Fatalf("scores not descending: %d, %d", matches[0].RelevanceScore, matches[1].RelevanceScore)
	}
}

func TestMatchRoleEmptyCorpus(t *testing.T) {
	matcher := NewRoleMatcher(testLogger(t), config.Default(), &fakeEmbedder{vec: []float32{1}})
	matches, err := matcher.MatchRole(context.Background(), "Junior Accountant", "Finance", nil, 4)
	if err != nil {
		t.Fatalf("MatchRole: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("empty corpus produced %d matches", len(matches))
	}
}

func TestMatchRoleLastResortPadding(t *testing.T) {
	corpus := []*types.Course{
		course("Pottery", types.SkillTypeSoft, nil, "Ceramics"),
		course("Woodworking", types.SkillTypeSoft, nil, "Carpentry"),
	}
	embedder := &fakeEmbedder{err: fmt.Errorf("%w: provider down", pkgerrors.ErrEmbeddingUnavailable)}
	matcher := NewRoleMatcher(testLogger(t), config.Default(), embedder)

	matches, err := matcher.MatchRole(context.Background(), "Quantum Chemist", "Research", corpus, 4)
	if err != nil {
		t.Fatalf("MatchRole: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want the whole 2-course corpus as padding", len(matches))
	}
	for _, m := range matches {
		if m.Reason != "Recommended course" {
			t.Fatalf("reason = %q, want the last-resort label", m.Reason)
		}
	}
}

func TestExtractDomainKeywords(t *testing.T) {
	cases := []struct {
		name     string
		roleText string
		want     string
	}{
		{"accounting", "Junior Accountant", "bookkeeping"},
		{"technology", "Software Engineer", "programming"},
		{"marketing", "Brand Manager", "advertising"},
		{"analytics", "Data Analyst", "sql"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := extractDomainKeywords(tc.roleText)
			found := false
			for _, kw := range got {
				if kw == tc.want {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("extractDomainKeywords(%q) = %v, missing %q", tc.roleText, got, tc.want)
			}
		})
	}
}
