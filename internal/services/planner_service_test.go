package services_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/revplan/internal/errors"
	"github.com/vytor/revplan/internal/models"
	"github.com/vytor/revplan/internal/repository"
	"github.com/vytor/revplan/internal/services"
	"github.com/vytor/revplan/internal/testutil"
	"github.com/vytor/revplan/internal/testutil/mocks"
)

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

func catalogue() []models.Subject {
	item := func(id, name string, d models.Difficulty) models.StudyItem {
		return models.StudyItem{ID: id, Name: name, Difficulty: d, Confidence: 0.6, RecentPerformance: 0.6}
	}
	return []models.Subject{
		{
			ID: "bio", Name: "Biology",
			Topics: []models.Topic{
				{
					ID: "bio-cells", Name: "Cells", Difficulty: models.DifficultyOK, Confidence: 0.6, RecentPerformance: 0.6,
					Subtopics: []models.StudyItem{
						item("bio-cells-mitosis", "Mitosis", models.DifficultyHard),
						item("bio-cells-membranes", "Membranes", models.DifficultyEasy),
					},
				},
			},
		},
		{
			ID: "pe", Name: "PE",
			Topics: []models.Topic{
				{ID: "pe-levers", Name: "Levers", Difficulty: models.DifficultyOK, Confidence: 0.6, RecentPerformance: 0.6},
			},
		},
	}
}

type PlannerServiceSuite struct {
	suite.Suite
	ctx   context.Context
	kv    *testutil.MemoryKV
	clock *stepClock
	svc   services.PlannerService
}

func (s *PlannerServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.kv = testutil.NewMemoryKV()
	s.clock = &stepClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	s.svc = services.NewPlannerService(repository.NewStateRepository(s.kv, catalogue), s.clock)
}

func (s *PlannerServiceSuite) assertCode(err error, code string) {
	s.Require().Error(err)
	s.Assert().Equal(code, errors.AsAppError(err).Code)
}

func (s *PlannerServiceSuite) TestToday_GeneratesAndPersists() {
	day, err := s.svc.Today(s.ctx)
	s.Require().NoError(err)
	s.Assert().Equal("2026-10-19", day.Date)
	s.Assert().Len(day.Entries, 4, "180 minute budget in 45 minute sessions")
	s.Assert().Equal(180, day.PlannedMinutes)
	s.Assert().NotEmpty(day.Entries[0].Name)

	_, ok, err := s.kv.Load(s.ctx, repository.KeyPlan)
	s.Require().NoError(err)
	s.Assert().True(ok)

	again, err := s.svc.Today(s.ctx)
	s.Require().NoError(err)
	s.Assert().Equal(day, again, "stored plan is reused")

	_, err = s.svc.Day(s.ctx, "19/10/2026")
	s.assertCode(err, errors.ErrCodeValidation)
}

func (s *PlannerServiceSuite) TestCompleteSession() {
	day, err := s.svc.Today(s.ctx)
	s.Require().NoError(err)
	first := day.Entries[0]

	rec, err := s.svc.CompleteSession(s.ctx, services.CompleteRequest{
		ItemID:  first.ItemID,
		EntryID: first.ID,
		Methods: []models.Method{models.MethodExamQuestions},
	})
	s.Require().NoError(err)
	s.Assert().NotEmpty(rec.ID)
	s.Assert().Equal(25, rec.Duration, "defaults to the timer length")
	s.Assert().Equal(first.ID, rec.PlanEntryID)

	day, err = s.svc.Today(s.ctx)
	s.Require().NoError(err)
	s.Assert().True(day.Entries[0].Completed)
	s.Assert().Equal(45, day.CompletedMinutes)

	score, err := s.svc.Score(s.ctx, first.ItemID)
	s.Require().NoError(err)
	s.Assert().InDelta(0.72, score.Performance, 1e-9)
	s.Assert().False(score.Schedulable, "just studied")

	summary, err := s.svc.Metrics(s.ctx)
	s.Require().NoError(err)
	s.Assert().Equal(1, summary.Streak)
	s.Assert().Equal(25, summary.TotalMinutes)
}

func (s *PlannerServiceSuite) TestCompleteSession_Validation() {
	_, err := s.svc.CompleteSession(s.ctx, services.CompleteRequest{})
	s.assertCode(err, errors.ErrCodeValidation)

	_, err = s.svc.CompleteSession(s.ctx, services.CompleteRequest{ItemID: "ghost"})
	s.assertCode(err, errors.ErrCodeNotFound)

	_, err = s.svc.CompleteSession(s.ctx, services.CompleteRequest{ItemID: "pe-levers", Methods: []models.Method{"Osmosis"}})
	s.assertCode(err, errors.ErrCodeValidation)

	_, err = s.svc.CompleteSession(s.ctx, services.CompleteRequest{ItemID: "pe-levers", EntryID: "plan-1999-01-01-0"})
	s.assertCode(err, errors.ErrCodeNotFound)
}

func (s *PlannerServiceSuite) TestRollover_SweepsMissedDay() {
	_, err := s.svc.Today(s.ctx)
	s.Require().NoError(err)

	changed, err := s.svc.Rollover(s.ctx)
	s.Require().NoError(err)
	s.Assert().False(changed)

	s.clock.now = s.clock.now.AddDate(0, 0, 1)
	changed, err = s.svc.Rollover(s.ctx)
	s.Require().NoError(err)
	s.Assert().True(changed)

	plan, err := s.svc.Plan(s.ctx)
	s.Require().NoError(err)
	for _, e := range plan.Days["2026-10-19"] {
		s.Assert().True(e.MissedLogged, "yesterday is frozen with misses logged")
	}
	s.Assert().Contains(plan.Days, "2026-10-20")

	scores, err := s.svc.Scores(s.ctx)
	s.Require().NoError(err)
	missed := 0.0
	for _, sc := range scores {
		missed += sc.Missed
	}
	s.Assert().Equal(4.0, missed)

	misses, err := s.svc.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Assert().Empty(misses, "second sweep finds nothing")
}

func (s *PlannerServiceSuite) TestUpdateSettings() {
	zero := 0
	budget := 90
	updated, err := s.svc.UpdateSettings(s.ctx, services.SettingsPatch{SessionLength: &zero, DailyTimeBudget: &budget})
	s.Require().NoError(err)
	s.Assert().Equal(45, updated.SessionLength, "invalid value keeps the previous one")
	s.Assert().Equal(90, updated.DailyTimeBudget)

	day, err := s.svc.Today(s.ctx)
	s.Require().NoError(err)
	s.Assert().Len(day.Entries, 2)

	_, err = s.svc.UpdateSettings(s.ctx, services.SettingsPatch{SubjectWeights: map[string]float64{"chemistry": 1}})
	s.assertCode(err, errors.ErrCodeValidation)

	stored, err := s.svc.Settings(s.ctx)
	s.Require().NoError(err)
	s.Assert().Equal(90, stored.DailyTimeBudget)
}

func (s *PlannerServiceSuite) TestDeadlines() {
	_, err := s.svc.AddDeadline(s.ctx, services.DeadlineInput{Name: "Cells test", Date: "2026-10-21", Topics: []string{"bio-cells-mitosis"}})
	s.assertCode(err, errors.ErrCodeValidation)
	_, err = s.svc.AddDeadline(s.ctx, services.DeadlineInput{Name: "Cells test", Date: "next week", Topics: []string{"bio-cells"}})
	s.assertCode(err, errors.ErrCodeValidation)
	_, err = s.svc.AddDeadline(s.ctx, services.DeadlineInput{Name: "Mixed", Date: "2026-10-21", Topics: []string{"bio-cells", "pe-levers"}})
	s.assertCode(err, errors.ErrCodeValidation)

	d, err := s.svc.AddDeadline(s.ctx, services.DeadlineInput{Name: "Cells test", Date: "2026-10-21", Topics: []string{"bio-cells"}})
	s.Require().NoError(err)
	s.Assert().Equal("bio", d.SubjectID)

	plan, err := s.svc.Plan(s.ctx)
	s.Require().NoError(err)
	prep := 0
	for _, e := range plan.Days["2026-10-20"] {
		if e.IsDeadlinePrep {
			prep++
		}
	}
	s.Assert().Equal(2, prep, "both subtopics of the topic get prep sessions")

	list, err := s.svc.ListDeadlines(s.ctx)
	s.Require().NoError(err)
	s.Assert().Len(list, 1)

	s.Require().NoError(s.svc.RemoveDeadline(s.ctx, d.ID))
	s.assertCode(s.svc.RemoveDeadline(s.ctx, d.ID), errors.ErrCodeNotFound)
}

func (s *PlannerServiceSuite) TestUpdateItem() {
	conf := 0.9
	hard := "hard"
	score, err := s.svc.UpdateItem(s.ctx, "pe-levers", services.ItemUpdate{Confidence: &conf, Difficulty: &hard})
	s.Require().NoError(err)
	s.Assert().Equal(0.9, score.Confidence)
	s.Assert().Equal(models.DifficultyHard, score.Difficulty)

	bad := "Brutal"
	_, err = s.svc.UpdateItem(s.ctx, "pe-levers", services.ItemUpdate{Difficulty: &bad})
	s.assertCode(err, errors.ErrCodeValidation)

	done := true
	_, err = s.svc.UpdateItem(s.ctx, "bio-cells", services.ItemUpdate{Completed: &done})
	s.assertCode(err, errors.ErrCodeValidation)

	score, err = s.svc.UpdateItem(s.ctx, "bio-cells-mitosis", services.ItemUpdate{Completed: &done})
	s.Require().NoError(err)
	s.Assert().True(score.Completed)

	_, err = s.svc.UpdateItem(s.ctx, "ghost", services.ItemUpdate{})
	s.assertCode(err, errors.ErrCodeNotFound)

	summary, err := s.svc.Metrics(s.ctx)
	s.Require().NoError(err)
	s.Assert().Equal(1, summary.Completion.CompletedSubtopics)
	s.Assert().Equal("C", summary.PredictedGrade)
}

func (s *PlannerServiceSuite) TestPriorityItem() {
	item, err := s.svc.PriorityItem(s.ctx, "bio-cells")
	s.Require().NoError(err)
	s.Assert().Equal("bio-cells-mitosis", item.ID)

	_, err = s.svc.PriorityItem(s.ctx, "bio-cells-mitosis")
	s.assertCode(err, errors.ErrCodeNotFound)
}

func (s *PlannerServiceSuite) TestPastPapers() {
	score := 64.0
	p, err := s.svc.AddPastPaper(s.ctx, services.PaperInput{SubjectID: "bio", Name: "June 2024 Paper 1", Score: &score})
	s.Require().NoError(err)
	s.Assert().True(p.Completed)

	_, err = s.svc.AddPastPaper(s.ctx, services.PaperInput{SubjectID: "latin", Name: "x"})
	s.assertCode(err, errors.ErrCodeValidation)
	tooHigh := 140.0
	_, err = s.svc.AddPastPaper(s.ctx, services.PaperInput{SubjectID: "bio", Name: "x", Score: &tooHigh})
	s.assertCode(err, errors.ErrCodeValidation)

	toggled, err := s.svc.TogglePastPaper(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Assert().False(toggled.Completed)

	papers, err := s.svc.ListPastPapers(s.ctx)
	s.Require().NoError(err)
	s.Assert().Len(papers, 1)

	s.Require().NoError(s.svc.RemovePastPaper(s.ctx, p.ID))
	s.assertCode(s.svc.RemovePastPaper(s.ctx, p.ID), errors.ErrCodeNotFound)
	_, err = s.svc.TogglePastPaper(s.ctx, p.ID)
	s.assertCode(err, errors.ErrCodeNotFound)
}

func (s *PlannerServiceSuite) TestReset() {
	_, err := s.svc.Today(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.svc.Reset(s.ctx))

	keys, err := s.kv.Keys(s.ctx)
	s.Require().NoError(err)
	s.Assert().Empty(keys)

	subjects, err := s.svc.Subjects(s.ctx)
	s.Require().NoError(err)
	s.Assert().Len(subjects, 2, "catalogue is reseeded")
}

func TestPlannerServiceSuite(t *testing.T) {
	suite.Run(t, new(PlannerServiceSuite))
}

func TestPlannerService_StorageFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockStateRepository)
	repo.On("Load", mock.Anything).Return(nil, stderrors.New("connection refused"))

	svc := services.NewPlannerService(repo, &stepClock{now: time.Now()})
	_, err := svc.Today(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInternal, errors.AsAppError(err).Code)
	repo.AssertExpectations(t)
}
