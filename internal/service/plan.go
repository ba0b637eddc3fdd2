package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"

	"gorm.io/gorm"
)

const (
	onboardingBookLimit = 5
	suggestedBookLimit  = 3

	// streakScanLimit bounds the day-by-day walk; nobody keeps a longer streak
	// than this without the counter being cached elsewhere.
	streakScanLimit = 730
)

// PlanService assembles the "what should I do today" summary (C10).
type PlanService struct {
	db           *gorm.DB
	courseRepo   repository.CourseRepository
	lessonRepo   repository.LessonRepository
	progressRepo repository.ProgressRepository
	grammarRepo  repository.GrammarRepository
	srsRepo      repository.SRSRepository
	bookRepo     repository.BookRepository
	blockRepo    repository.BlockRepository
	review       *ReviewService
	logger       *slog.Logger
	now          func() time.Time
}

func NewPlanService(
	db *gorm.DB,
	courseRepo repository.CourseRepository,
	lessonRepo repository.LessonRepository,
	progressRepo repository.ProgressRepository,
	grammarRepo repository.GrammarRepository,
	srsRepo repository.SRSRepository,
	bookRepo repository.BookRepository,
	blockRepo repository.BlockRepository,
	review *ReviewService,
	logger *slog.Logger,
) *PlanService {
	return &PlanService{
		db:           db,
		courseRepo:   courseRepo,
		lessonRepo:   lessonRepo,
		progressRepo: progressRepo,
		grammarRepo:  grammarRepo,
		srsRepo:      srsRepo,
		bookRepo:     bookRepo,
		blockRepo:    blockRepo,
		review:       review,
		logger:       logger,
		now:          time.Now,
	}
}

// DailyPlan builds the plan for the user's current local day. A user with no
// history at all gets an onboarding section instead of a lesson pointer.
func (s *PlanService) DailyPlan(ctx context.Context, user *model.User) (*model.DailyPlanResponse, error) {
	plan := &model.DailyPlanResponse{}

	enrollment, err := s.progressRepo.FindActiveEnrollment(ctx, s.db, user.UserID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		enrollment = nil
	}

	if enrollment == nil {
		fresh, err := s.isFreshUser(ctx, user)
		if err != nil {
			return nil, err
		}
		if fresh {
			onboarding, err := s.buildOnboarding(ctx)
			if err != nil {
				return nil, err
			}
			plan.Onboarding = onboarding
			return plan, nil
		}
	}

	counts, err := s.review.DueCounts(ctx, user)
	if err != nil {
		return nil, err
	}
	plan.WordsDue = counts.WordsDue

	if enrollment != nil {
		if err := s.fillLessonAndGrammar(ctx, user, enrollment, plan); err != nil {
			return nil, err
		}
	}

	if err := s.fillReading(ctx, user, plan); err != nil {
		return nil, err
	}
	if err := s.fillBonus(ctx, user, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// isFreshUser: no lesson progress, no reading history, no vocabulary cards.
func (s *PlanService) isFreshUser(ctx context.Context, user *model.User) (bool, error) {
	lessons, err := s.progressRepo.CountLessonProgress(ctx, s.db, user.UserID)
	if err != nil || lessons > 0 {
		return false, err
	}
	books, err := s.progressRepo.CountReadBooks(ctx, s.db, user.UserID)
	if err != nil || books > 0 {
		return false, err
	}
	words, err := s.srsRepo.CountUserWords(ctx, s.db, user.UserID)
	if err != nil || words > 0 {
		return false, err
	}
	return true, nil
}

// buildOnboarding points a brand-new user at the first lesson of the first
// active course plus a short book shelf.
func (s *PlanService) buildOnboarding(ctx context.Context) (*model.PlanOnboarding, error) {
	onboarding := &model.PlanOnboarding{NoWords: true, AvailableBooks: []model.PlanBook{}}

	courses, err := s.courseRepo.List(ctx, s.db, true)
	if err != nil {
		return nil, err
	}
	if len(courses) > 0 {
		module, err := s.courseRepo.FindModuleByOrder(ctx, s.db, courses[0].CourseID, 1)
		if err == nil {
			lesson, err := s.lessonRepo.FirstOfModule(ctx, s.db, module.ModuleID)
			if err == nil {
				lesson.Module = module
				lesson.Module.Course = courses[0]
				onboarding.FirstLesson = planLesson(lesson)
			} else if !errors.Is(err, model.ErrNotFound) {
				return nil, err
			}
		} else if !errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
	}

	books, err := s.bookRepo.ListBooks(ctx, s.db, onboardingBookLimit)
	if err != nil {
		return nil, err
	}
	for _, book := range books {
		onboarding.AvailableBooks = append(onboarding.AvailableBooks, planBook(book))
	}
	total, err := s.bookRepo.CountBooks(ctx, s.db)
	if err != nil {
		return nil, err
	}
	onboarding.TotalBooks = total
	return onboarding, nil
}

// fillLessonAndGrammar resolves the next pending lesson and a grammar topic
// tied to the module the user is working through.
func (s *PlanService) fillLessonAndGrammar(ctx context.Context, user *model.User, enrollment *model.BookCourseEnrollment, plan *model.DailyPlanResponse) error {
	next, module, err := s.nextLesson(ctx, enrollment)
	if err != nil {
		return err
	}
	if next != nil {
		plan.NextLesson = planLesson(next)
	}

	topic, err := s.grammarTopic(ctx, user, module)
	if err != nil {
		return err
	}
	if topic != nil {
		due, err := s.grammarRepo.CountDueExercises(ctx, s.db, user.UserID, &topic.TopicID, s.now())
		if err != nil {
			return err
		}
		status := model.TopicStatusNew
		if st, err := s.topicStatus(ctx, user, topic.TopicID); err != nil {
			return err
		} else if st != "" {
			status = st
		}
		plan.GrammarTopic = &model.PlanGrammarTopic{
			TopicID:      topic.TopicID,
			Slug:         topic.Slug,
			Title:        topic.Title,
			Status:       status,
			DueExercises: int(due),
		}
	}
	return nil
}

// nextLesson walks the enrollment forward: the lesson after the last completed
// one, falling over module boundaries, or the very first lesson when nothing
// has been completed yet. Returns the lesson's module alongside it.
func (s *PlanService) nextLesson(ctx context.Context, enrollment *model.BookCourseEnrollment) (*model.DailyLesson, *model.BookCourseModule, error) {
	last, err := s.progressRepo.LastCompletedLesson(ctx, s.db, enrollment.UserID, enrollment.EnrollmentID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return nil, nil, err
		}
		return s.firstLessonOf(ctx, enrollment.CourseID, 1)
	}

	next, err := s.lessonRepo.FindNextAfter(ctx, s.db, last.DailyLesson)
	if err == nil {
		module, err := s.moduleOf(ctx, next)
		return next, module, err
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, nil, err
	}

	// Module exhausted; move to the next one, or report course completion.
	doneModule := last.DailyLesson.Module
	next2, module, err := s.firstLessonOf(ctx, enrollment.CourseID, doneModule.OrderIndex+1)
	if err != nil {
		return nil, nil, err
	}
	if next2 == nil {
		return nil, doneModule, nil
	}
	return next2, module, nil
}

func (s *PlanService) firstLessonOf(ctx context.Context, courseID uint, orderIndex int) (*model.DailyLesson, *model.BookCourseModule, error) {
	module, err := s.courseRepo.FindModuleByOrder(ctx, s.db, courseID, orderIndex)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	lesson, err := s.lessonRepo.FirstOfModule(ctx, s.db, module.ModuleID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, module, nil
		}
		return nil, nil, err
	}
	lesson.Module = module
	return lesson, module, nil
}

func (s *PlanService) moduleOf(ctx context.Context, lesson *model.DailyLesson) (*model.BookCourseModule, error) {
	if lesson.Module != nil {
		return lesson.Module, nil
	}
	module, err := s.courseRepo.FindModuleByID(ctx, s.db, lesson.ModuleID)
	if err != nil {
		return nil, err
	}
	lesson.Module = module
	return module, nil
}

// grammarTopic picks the topic to study: the module's own topic when the block
// schema names one, otherwise the first topic in catalogue order.
func (s *PlanService) grammarTopic(ctx context.Context, user *model.User, module *model.BookCourseModule) (*model.GrammarTopic, error) {
	if module != nil {
		if slug, err := s.moduleGrammarSlug(ctx, module); err != nil {
			return nil, err
		} else if slug != "" {
			topic, err := s.grammarRepo.FindTopicBySlug(ctx, s.db, slug)
			if err == nil {
				return topic, nil
			}
			if !errors.Is(err, model.ErrNotFound) {
				return nil, err
			}
		}
	}

	// Prefer a topic the user is mid-way through before starting a new one.
	statuses, err := s.grammarRepo.FindTopicStatuses(ctx, s.db, user.UserID,
		[]string{model.TopicStatusTheoryCompleted, model.TopicStatusPracticing})
	if err != nil {
		return nil, err
	}
	if len(statuses) > 0 && statuses[0].Topic != nil {
		return statuses[0].Topic, nil
	}

	topic, err := s.grammarRepo.FirstActiveTopic(ctx, s.db)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return topic, nil
}

func (s *PlanService) topicStatus(ctx context.Context, user *model.User, topicID uint) (string, error) {
	statuses, err := s.grammarRepo.FindTopicStatuses(ctx, s.db, user.UserID, nil)
	if err != nil {
		return "", err
	}
	for _, st := range statuses {
		if st.TopicID == topicID {
			return st.Status, nil
		}
	}
	return "", nil
}

func (s *PlanService) moduleGrammarSlug(ctx context.Context, module *model.BookCourseModule) (string, error) {
	if module.PrimaryBlock != nil {
		return module.PrimaryBlock.GrammarKey, nil
	}
	if module.PrimaryBlockID == nil {
		return "", nil
	}
	block, err := s.blockRepo.FindByID(ctx, s.db, *module.PrimaryBlockID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	module.PrimaryBlock = block
	return block.GrammarKey, nil
}

// fillReading suggests continuing the last-read book unless it was already
// read today, and lists a short shelf when the user has no book going.
func (s *PlanService) fillReading(ctx context.Context, user *model.User, plan *model.DailyPlanResponse) error {
	last, err := s.progressRepo.LastReadBook(ctx, s.db, user.UserID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return err
	}
	if last != nil {
		dayStart := user.LocalDayStart(s.now())
		readToday, err := s.progressRepo.HasReadingOn(ctx, s.db, user.UserID, dayStart, dayStart.AddDate(0, 0, 1))
		if err != nil {
			return err
		}
		if !readToday {
			book, err := s.bookRepo.FindByID(ctx, s.db, last.BookID)
			if err == nil {
				pb := planBook(book)
				plan.BookToRead = &pb
				return nil
			}
			if !errors.Is(err, model.ErrNotFound) {
				return err
			}
		} else {
			return nil
		}
	}

	books, err := s.bookRepo.ListBooks(ctx, s.db, suggestedBookLimit)
	if err != nil {
		return err
	}
	for _, book := range books {
		plan.SuggestedBooks = append(plan.SuggestedBooks, planBook(book))
	}
	return nil
}

// fillBonus offers extra work once today's lesson goal is met: the lesson
// after the pending one, and more reading when a book is in flight.
func (s *PlanService) fillBonus(ctx context.Context, user *model.User, plan *model.DailyPlanResponse) error {
	dayStart := user.LocalDayStart(s.now())
	doneToday, err := s.progressRepo.HasCompletionOn(ctx, s.db, user.UserID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil || !doneToday {
		return err
	}

	if plan.NextLesson != nil {
		lesson, err := s.lessonRepo.FindByID(ctx, s.db, plan.NextLesson.LessonID)
		if err != nil {
			return err
		}
		after, err := s.lessonRepo.FindNextAfter(ctx, s.db, lesson)
		if err == nil {
			plan.Bonus.ExtraLesson = planLesson(after)
		} else if !errors.Is(err, model.ErrNotFound) {
			return err
		}
	}
	plan.Bonus.ExtraReading = plan.BookToRead != nil
	return nil
}

// Streak counts consecutive local days with any learning activity: a lesson
// completion, a vocabulary review, a grammar answer, or reading. Today only
// extends the streak when it already has activity; an idle today does not
// break yesterday's run.
func (s *PlanService) Streak(ctx context.Context, user *model.User) (*model.StreakResponse, error) {
	dayStart := user.LocalDayStart(s.now())

	streak := 0
	active, err := s.activeOn(ctx, user, dayStart)
	if err != nil {
		return nil, err
	}
	if active {
		streak++
	}

	for i := 1; i <= streakScanLimit; i++ {
		day := dayStart.AddDate(0, 0, -i)
		active, err := s.activeOn(ctx, user, day)
		if err != nil {
			return nil, err
		}
		if !active {
			break
		}
		streak++
	}
	return &model.StreakResponse{Streak: streak}, nil
}

func (s *PlanService) activeOn(ctx context.Context, user *model.User, dayStart time.Time) (bool, error) {
	dayEnd := dayStart.AddDate(0, 0, 1)

	if ok, err := s.progressRepo.HasCompletionOn(ctx, s.db, user.UserID, dayStart, dayEnd); ok || err != nil {
		return ok, err
	}
	if ok, err := s.srsRepo.HasReviewOn(ctx, s.db, user.UserID, dayStart, dayEnd); ok || err != nil {
		return ok, err
	}
	if ok, err := s.grammarRepo.HasAnswerOn(ctx, s.db, user.UserID, dayStart, dayEnd); ok || err != nil {
		return ok, err
	}
	return s.progressRepo.HasReadingOn(ctx, s.db, user.UserID, dayStart, dayEnd)
}

func planLesson(lesson *model.DailyLesson) *model.PlanLesson {
	pl := &model.PlanLesson{
		LessonID:    lesson.DailyLessonID,
		Title:       lesson.Title,
		LessonOrder: lesson.LessonOrder,
		LessonType:  lesson.LessonType,
	}
	if lesson.Module != nil {
		pl.ModuleNumber = lesson.Module.ModuleNumber
		pl.Level = string(lesson.Module.EffectiveLevel())
	}
	return pl
}

func planBook(book *model.Book) model.PlanBook {
	return model.PlanBook{BookID: book.BookID, Title: book.Title, Level: string(book.Level)}
}
