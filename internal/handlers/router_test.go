package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nekto007/language-learning-tool/internal/config"
	"github.com/nekto007/language-learning-tool/internal/coursegen"
	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"
	"github.com/nekto007/language-learning-tool/internal/schema"
	"github.com/nekto007/language-learning-tool/internal/service"
	"github.com/nekto007/language-learning-tool/internal/slicer"
	"github.com/nekto007/language-learning-tool/internal/tasks"
	"github.com/nekto007/language-learning-tool/internal/vocab"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

func testConfig(adminID uuid.UUID) *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{SecretKey: testSecret},
		App: config.AppConfig{
			DefaultTimezone: "Europe/Amsterdam",
			AdminUserIDs:    []string{adminID.String()},
		},
	}
}

func signToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// buildTestServer assembles the full stack on an in-memory database.
func buildTestServer(t *testing.T, adminID uuid.UUID) (http.Handler, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	log := slog.Default()
	bookRepo := repository.NewGormBookRepository()
	blockRepo := repository.NewGormBlockRepository()
	wordRepo := repository.NewGormWordRepository()
	taskRepo := repository.NewGormTaskRepository()
	courseRepo := repository.NewGormCourseRepository()
	lessonRepo := repository.NewGormLessonRepository()
	progressRepo := repository.NewGormProgressRepository()
	srsRepo := repository.NewGormSRSRepository()
	grammarRepo := repository.NewGormGrammarRepository()
	userRepo := repository.NewGormUserRepository("Europe/Amsterdam")

	loc, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)

	taskSvc := tasks.NewService(db, blockRepo, taskRepo, log)
	importer := schema.NewImporter(db, bookRepo, blockRepo, log)
	generator := coursegen.NewGenerator(
		db, bookRepo, blockRepo, courseRepo, importer,
		vocab.NewExtractor(db, blockRepo, wordRepo),
		taskSvc,
		slicer.NewSlicer(blockRepo, lessonRepo, taskRepo, taskSvc, log, loc),
		log,
	)

	users := service.NewUserService(db, userRepo)
	availability := service.NewAvailabilityService(db, lessonRepo, progressRepo, log)
	lessons := service.NewLessonService(db, lessonRepo, progressRepo, courseRepo, srsRepo, userRepo, availability, log)
	srsSvc := service.NewSRSService(db, lessonRepo, srsRepo, wordRepo, log)
	review := service.NewReviewService(db, srsRepo, grammarRepo, log)
	plans := service.NewPlanService(db, courseRepo, lessonRepo, progressRepo, grammarRepo, srsRepo, bookRepo, blockRepo, review, log)
	progress := service.NewProgressService(db, bookRepo, progressRepo, userRepo, log)
	grammar := service.NewGrammarService(db, grammarRepo, userRepo, log)
	admin := service.NewCourseAdminService(db, courseRepo, lessonRepo, generator, log)

	router := NewRouter(testConfig(adminID), log, Handlers{
		Lesson:   NewLessonHandler(lessons, users),
		SRS:      NewSRSHandler(srsSvc, review, users),
		Plan:     NewPlanHandler(plans, users),
		Grammar:  NewGrammarHandler(grammar, users),
		Progress: NewProgressHandler(progress),
		Admin:    NewAdminHandler(admin, importer),
	})
	return router, db
}

func doRequest(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_RejectsMissingToken(t *testing.T) {
	h, _ := buildTestServer(t, uuid.New())
	rec := doRequest(t, h, http.MethodGet, "/api/v1/daily-plan", "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_DailyPlanForFreshUser(t *testing.T) {
	h, _ := buildTestServer(t, uuid.New())
	token := signToken(t, uuid.New())

	rec := doRequest(t, h, http.MethodGet, "/api/v1/daily-plan", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var plan model.DailyPlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Nil(t, plan.NextLesson)
	require.NotNil(t, plan.Onboarding)
	assert.True(t, plan.Onboarding.NoWords)
}

func TestRouter_AdminSubtreeNeedsAdmin(t *testing.T) {
	adminID := uuid.New()
	h, _ := buildTestServer(t, adminID)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/admin/courses", signToken(t, uuid.New()), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/admin/courses", signToken(t, adminID), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_AdminBuildsCourseAndUserEnrolls(t *testing.T) {
	adminID := uuid.New()
	h, db := buildTestServer(t, adminID)

	book := &model.Book{Title: "The Voyage", Level: model.LevelA2, ChapterCount: 2}
	require.NoError(t, db.Create(book).Error)
	text := strings.Repeat("The young sailor studied the wide ocean chart again. ", 40)
	for i := 1; i <= 2; i++ {
		require.NoError(t, db.Create(&model.Chapter{
			BookID: book.BookID, ChapNum: i, TextRaw: text, Words: 400,
		}).Error)
	}

	rec := doRequest(t, h, http.MethodPost, "/api/v1/admin/courses", signToken(t, adminID),
		`{"book_id": 1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var built model.CourseBuildResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &built))
	assert.True(t, built.Success)
	assert.NotZero(t, built.CourseID)
	assert.NotZero(t, built.Lessons)

	userToken := signToken(t, uuid.New())
	rec = doRequest(t, h, http.MethodPost, "/api/v1/courses/1/enroll", userToken, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// enrolling twice is a conflict, mapped to 400
	rec = doRequest(t, h, http.MethodPost, "/api/v1/courses/1/enroll", userToken, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// any authenticated user can read the course schedule
	rec = doRequest(t, h, http.MethodGet, "/api/v1/courses/1/schedule", userToken, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var schedule model.CourseScheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schedule))
	assert.Equal(t, built.Modules, len(schedule.Modules))
	assert.Equal(t, built.Lessons, schedule.TotalLessons)
}

func TestRouter_ReadingProgressPatch(t *testing.T) {
	h, db := buildTestServer(t, uuid.New())
	book := &model.Book{Title: "The Voyage", Level: model.LevelB1}
	require.NoError(t, db.Create(book).Error)
	require.NoError(t, db.Create(&model.Chapter{BookID: book.BookID, ChapNum: 1, TextRaw: "Text."}).Error)

	token := signToken(t, uuid.New())
	rec := doRequest(t, h, http.MethodPatch, "/api/progress", token,
		`{"book_id": 1, "chapter_id": 1, "offset_pct": 42.5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp model.UpdateReadingProgressResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 42.5, resp.OffsetPct, 0.01)
}
