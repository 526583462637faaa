package repos

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/brightpath/pathways-backend/internal/logger"
	pkgerrors "github.com/brightpath/pathways-backend/internal/pkg/errors"
	"github.com/brightpath/pathways-backend/internal/types"
	"github.com/brightpath/pathways-backend/internal/vectors"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.AssessmentResult{},
		&types.Course{},
		&types.CourseSkill{},
		&types.CourseRecommendation{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedCourse(t *testing.T, db *gorm.DB, title, skillType, status string, embedding []float32, skills ...string) *types.Course {
	t.Helper()
	course := &types.Course{
		ID:          uuid.New(),
		Title:       title,
		Description: "A course on " + title,
		SkillType:   skillType,
		Status:      status,
		Embedding:   vectors.SerializeEmbedding(embedding),
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	for _, s := range skills {
		if err := db.Create(&types.CourseSkill{CourseID: course.ID, SkillName: s}).Error; err != nil {
			t.Fatalf("seed skill: %v", err)
		}
	}
	return course
}

func TestGetWithEmbeddingsFiltersStatus(t *testing.T) {
	db := testDB(t)
	repo := NewCourseRepo(db, testLogger(t))
	ctx := context.Background()

	seedCourse(t, db, "Excel for Accountants", types.SkillTypeTechnical, types.CourseStatusActive, []float32{1, 0}, "Excel")
	seedCourse(t, db, "No Vector Course", types.SkillTypeTechnical, types.CourseStatusActive, nil)
	seedCourse(t, db, "Draft Course", types.SkillTypeTechnical, types.CourseStatusDraft, []float32{0, 1})
	deleted := seedCourse(t, db, "Deleted Course", types.SkillTypeSoft, types.CourseStatusActive, []float32{1, 1})
	if err := db.Delete(deleted).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	courses, err := repo.GetWithEmbeddings(ctx, nil)
	if err != nil {
		t.Fatalf("GetWithEmbeddings: %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("got %d courses, want 2 (active only, malformed embedding still included)", len(courses))
	}
	for _, c := range courses {
		if c.Title == "Draft Course" || c.Title == "Deleted Course" {
			t.Fatalf("inactive course leaked: %s", c.Title)
		}
	}
}

func TestGetWithEmbeddingsPreloadsSkills(t *testing.T) {
	db := testDB(t)
	repo := NewCourseRepo(db, testLogger(t))

	seedCourse(t, db, "Excel for Accountants", types.SkillTypeTechnical, types.CourseStatusActive, []float32{1, 0}, "Excel", "Bookkeeping")

	courses, err := repo.GetWithEmbeddings(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetWithEmbeddings: %v", err)
	}
	if len(courses) != 1 || len(courses[0].Skills) != 2 {
		t.Fatalf("skills not preloaded: %+v", courses)
	}
}

func TestGetBySkillType(t *testing.T) {
	db := testDB(t)
	repo := NewCourseRepo(db, testLogger(t))

	seedCourse(t, db, "Python Basics", types.SkillTypeTechnical, types.CourseStatusActive, []float32{1, 0})
	seedCourse(t, db, "Public Speaking", types.SkillTypeSoft, types.CourseStatusActive, []float32{0, 1})

	soft, err := repo.GetBySkillType(context.Background(), nil, types.SkillTypeSoft)
	if err != nil {
		t.Fatalf("GetBySkillType: %v", err)
	}
	if len(soft) != 1 || soft[0].Title != "Public Speaking" {
		t.Fatalf("GetBySkillType(soft) = %+v", soft)
	}
}

func TestGetBasicLimits(t *testing.T) {
	db := testDB(t)
	repo := NewCourseRepo(db, testLogger(t))

	for i := 0; i < 5; i++ {
		seedCourse(t, db, fmt.Sprintf("Course %d", i), types.SkillTypeTechnical, types.CourseStatusActive, []float32{1})
	}

	courses, err := repo.GetBasic(context.Background(), nil, 3)
	if err != nil {
		t.Fatalf("GetBasic: %v", err)
	}
	if len(courses) != 3 {
		t.Fatalf("GetBasic limit: got %d, want 3", len(courses))
	}
}

func TestGetBySkillNameStrengths(t *testing.T) {
	db := testDB(t)
	repo := NewCourseRepo(db, testLogger(t))
	ctx := context.Background()

	exact := seedCourse(t, db, "Excel for Accountants", types.SkillTypeTechnical, types.CourseStatusActive, nil, "Excel")
	partial := seedCourse(t, db, "Office Suite", types.SkillTypeTechnical, types.CourseStatusActive, nil, "Advanced Excel")
	weak := seedCourse(t, db, "Spreadsheets 101", types.SkillTypeTechnical, types.CourseStatusActive, nil, "Excel Formulas and Macros")

	matches, err := repo.GetBySkillName(ctx, nil, "excel")
	if err != nil {
		t.Fatalf("GetBySkillName: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}
	byID := make(map[uuid.UUID]types.SkillNameMatch)
	for _, m := range matches {
		byID[m.Course.ID] = m
	}
	if byID[exact.ID].MatchStrength != 1.0 {
		t.Fatalf("exact strength = %v, want 1.0", byID[exact.ID].MatchStrength)
	}
	if byID[partial.ID].MatchStrength != 0.8 {
		t.Fatalf("partial strength = %v, want 0.8", byID[partial.ID].MatchStrength)
	}
	if byID[weak.ID].MatchStrength != 0.8 {
		// "Excel Formulas and Macros" contains "excel", so it is a partial
		// tag match, not a weak one.
		t.Fatalf("containing-tag strength = %v, want 0.8", byID[weak.ID].MatchStrength)
	}
}

func TestGetBySkillNameWeakDirection(t *testing.T) {
	db := testDB(t)
	repo := NewCourseRepo(db, testLogger(t))

	course := seedCourse(t, db, "Data Course", types.SkillTypeTechnical, types.CourseStatusActive, nil, "SQL")
	matches, err := repo.GetBySkillName(context.Background(), nil, "SQL for Analytics")
	if err != nil {
		t.Fatalf("GetBySkillName: %v", err)
	}
	if len(matches) != 1 || matches[0].Course.ID != course.ID {
		t.Fatalf("matches = %+v", matches)
	}
	if matches[0].MatchStrength != 0.6 {
		t.Fatalf("weak strength = %v, want 0.6", matches[0].MatchStrength)
	}
}

func TestUpsertIsIdempotentPerCompositeKey(t *testing.T) {
	db := testDB(t)
	repo := NewRecommendationRepo(db, testLogger(t))
	ctx := context.Background()

	studentID := uuid.New()
	resultID := uuid.New()
	course := seedCourse(t, db, "Excel for Accountants", types.SkillTypeTechnical, types.CourseStatusActive, nil)

	first := &types.CourseRecommendation{
		StudentID:          studentID,
		CourseID:           course.ID,
		AssessmentResultID: resultID,
		RelevanceScore:     70,
		MatchReasons:       []string{"Builds skills you need: Excel"},
	}
	if err := repo.Upsert(ctx, nil, []*types.CourseRecommendation{first}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := &types.CourseRecommendation{
		StudentID:          studentID,
		CourseID:           course.ID,
		AssessmentResultID: resultID,
		RelevanceScore:     85,
		MatchReasons:       []string{"Builds skills you need: Excel", "Matches your career profile"},
	}
	if err := repo.Upsert(ctx, nil, []*types.CourseRecommendation{second}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int64
	if err := db.Model(&types.CourseRecommendation{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("row count = %d, want 1 (upsert, not duplicate)", count)
	}

	recs, err := repo.GetByStudent(ctx, nil, studentID, RecommendationQuery{})
	if err != nil {
		t.Fatalf("GetByStudent: %v", err)
	}
	if len(recs) != 1 || recs[0].RelevanceScore != 85 {
		t.Fatalf("updated score = %+v", recs)
	}
}

func TestUpsertPreservesDismissal(t *testing.T) {
	db := testDB(t)
	repo := NewRecommendationRepo(db, testLogger(t))
	ctx := context.Background()

	studentID := uuid.New()
	resultID := uuid.New()
	course := seedCourse(t, db, "Excel for Accountants", types.SkillTypeTechnical, types.CourseStatusActive, nil)

	rec := &types.CourseRecommendation{
		StudentID:          studentID,
		CourseID:           course.ID,
		AssessmentResultID: resultID,
		RelevanceScore:     70,
	}
	if err := repo.Upsert(ctx, nil, []*types.CourseRecommendation{rec}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.UpdateStatus(ctx, nil, rec.ID, types.RecommendationStatusDismissed, "already enrolled elsewhere"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	// A re-run must not resurrect the dismissal.
	rerun := &types.CourseRecommendation{
		StudentID:          studentID,
		CourseID:           course.ID,
		AssessmentResultID: resultID,
		RelevanceScore:     90,
	}
	if err := repo.Upsert(ctx, nil, []*types.CourseRecommendation{rerun}); err != nil {
		t.Fatalf("rerun upsert: %v", err)
	}

	recs, err := repo.GetByStudent(ctx, nil, studentID, RecommendationQuery{})
	if err != nil {
		t.Fatalf("GetByStudent: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("row count = %d, want 1", len(recs))
	}
	got := recs[0]
	if got.Status != types.RecommendationStatusDismissed {
		t.Fatalf("status = %q, want dismissed preserved across upsert", got.Status)
	}
	if got.RelevanceScore != 90 {
		t.Fatalf("score = %d, want refreshed 90", got.RelevanceScore)
	}
	if got.DismissedReason == nil || *got.DismissedReason != "already enrolled elsewhere" {
		t.Fatalf("dismissed reason lost: %+v", got.DismissedReason)
	}
	if got.DismissedAt == nil {
		t.Fatal("dismissed_at not stamped")
	}
}

func TestGetByStudentFiltersAndOrder(t *testing.T) {
	db := testDB(t)
	repo := NewRecommendationRepo(db, testLogger(t))
	ctx := context.Background()

	studentID := uuid.New()
	resultA := uuid.New()
	resultB := uuid.New()
	c1 := seedCourse(t, db, "Course A", types.SkillTypeTechnical, types.CourseStatusActive, nil)
	c2 := seedCourse(t, db, "Course B", types.SkillTypeTechnical, types.CourseStatusActive, nil)
	c3 := seedCourse(t, db, "Course C", types.SkillTypeSoft, types.CourseStatusActive, nil)

	recs := []*types.CourseRecommendation{
		{StudentID: studentID, CourseID: c1.ID, AssessmentResultID: resultA, RelevanceScore: 60},
		{StudentID: studentID, CourseID: c2.ID, AssessmentResultID: resultA, RelevanceScore: 95},
		{StudentID: studentID, CourseID: c3.ID, AssessmentResultID: resultB, RelevanceScore: 80},
	}
	if err := repo.Upsert(ctx, nil, recs); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.UpdateStatus(ctx, nil, recs[2].ID, types.RecommendationStatusEnrolled, ""); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	all, err := repo.GetByStudent(ctx, nil, studentID, RecommendationQuery{})
	if err != nil {
		t.Fatalf("GetByStudent: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all rows = %d, want 3", len(all))
	}
	if all[0].RelevanceScore != 95 || all[2].RelevanceScore != 60 {
		t.Fatalf("not ordered by relevance desc: %d, %d, %d", all[0].RelevanceScore, all[1].RelevanceScore, all[2].RelevanceScore)
	}

	enrolled, err := repo.GetByStudent(ctx, nil, studentID, RecommendationQuery{Status: types.RecommendationStatusEnrolled})
	if err != nil {
		t.Fatalf("GetByStudent(status): %v", err)
	}
	if len(enrolled) != 1 || enrolled[0].CourseID != c3.ID {
		t.Fatalf("status filter = %+v", enrolled)
	}

	forA, err := repo.GetByStudent(ctx, nil, studentID, RecommendationQuery{AssessmentResultID: resultA})
	if err != nil {
		t.Fatalf("GetByStudent(result): %v", err)
	}
	if len(forA) != 2 {
		t.Fatalf("assessment filter rows = %d, want 2", len(forA))
	}
}

func TestUpdateEmbedding(t *testing.T) {
	db := testDB(t)
	repo := NewCourseRepo(db, testLogger(t))
	ctx := context.Background()

	c := seedCourse(t, db, "No Vector Yet", types.SkillTypeTechnical, types.CourseStatusActive, nil)
	if err := repo.UpdateEmbedding(ctx, nil, c.ID, vectors.SerializeEmbedding([]float32{0.3, 0.4})); err != nil {
		t.Fatalf("UpdateEmbedding: %v", err)
	}

	var reloaded types.Course
	if err := db.First(&reloaded, "id = ?", c.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	vec := vectors.ParseEmbedding(reloaded.Embedding)
	if len(vec) != 2 || vec[0] != 0.3 {
		t.Fatalf("stored vector = %v", vec)
	}

	if err := repo.UpdateEmbedding(ctx, nil, uuid.New(), vectors.SerializeEmbedding([]float32{1})); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("missing course error = %v, want ErrNotFound", err)
	}
}

func TestAssessmentResultRepo(t *testing.T) {
	db := testDB(t)
	repo := NewAssessmentResultRepo(db, testLogger(t))
	ctx := context.Background()

	studentID := uuid.New()
	older := &types.AssessmentResult{
		StudentID:    studentID,
		FieldOfStudy: "Accounting",
		CreatedAt:    time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	newer := &types.AssessmentResult{
		StudentID:    studentID,
		FieldOfStudy: "Accounting",
		CreatedAt:    time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.Create(ctx, nil, older); err != nil {
		t.Fatalf("create older: %v", err)
	}
	if err := repo.Create(ctx, nil, newer); err != nil {
		t.Fatalf("create newer: %v", err)
	}

	got, err := repo.GetByID(ctx, nil, older.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != older.ID || got.FieldOfStudy != "Accounting" {
		t.Fatalf("GetByID = %+v", got)
	}

	latest, err := repo.GetLatestByStudent(ctx, nil, studentID)
	if err != nil {
		t.Fatalf("GetLatestByStudent: %v", err)
	}
	if latest.ID != newer.ID {
		t.Fatalf("latest = %v, want the newer result", latest.ID)
	}

	if _, err := repo.GetByID(ctx, nil, uuid.New()); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("missing result error = %v, want ErrNotFound", err)
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	db := testDB(t)
	repo := NewRecommendationRepo(db, testLogger(t))
	ctx := context.Background()

	if err := repo.UpdateStatus(ctx, nil, uuid.New(), "bogus", ""); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("invalid status error = %v, want ErrInvalidArgument", err)
	}
	if err := repo.UpdateStatus(ctx, nil, uuid.New(), types.RecommendationStatusEnrolled, ""); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("missing row error = %v, want ErrNotFound", err)
	}
}
