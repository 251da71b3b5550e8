package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/revplan/internal/clock"
	"github.com/vytor/revplan/internal/config"
	"github.com/vytor/revplan/internal/errors"
	"github.com/vytor/revplan/internal/models"
	"github.com/vytor/revplan/internal/repository"
	"github.com/vytor/revplan/internal/services"
	"github.com/vytor/revplan/internal/testutil"
)

func subjects() []models.Subject {
	return []models.Subject{
		{
			ID: "bio", Name: "Biology",
			Topics: []models.Topic{
				{
					ID: "bio-cells", Name: "Cells", Difficulty: models.DifficultyOK, Confidence: 0.6, RecentPerformance: 0.6,
					Subtopics: []models.StudyItem{
						{ID: "bio-cells-mitosis", Name: "Mitosis", Difficulty: models.DifficultyHard, Confidence: 0.6, RecentPerformance: 0.6},
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

type CLISuite struct {
	suite.Suite
	svc services.PlannerService
	out *bytes.Buffer
}

func (s *CLISuite) SetupTest() {
	clk := clock.Fixed(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))
	s.svc = services.NewPlannerService(repository.NewStateRepository(testutil.NewMemoryKV(), subjects), clk)
	s.out = new(bytes.Buffer)
}

func (s *CLISuite) run(args ...string) error {
	s.out.Reset()
	root := NewRootCommand(
		WithPlanner(s.svc),
		WithOutput(s.out),
		WithConfig(config.Config{LogLevel: "ERROR"}),
	)
	root.SetArgs(args)
	root.SetOut(s.out)
	root.SetErr(s.out)
	return root.ExecuteContext(context.Background())
}

func (s *CLISuite) TestToday_Table() {
	s.Require().NoError(s.run("today"))
	s.Assert().Contains(s.out.String(), "2026-10-19")
	s.Assert().Contains(s.out.String(), "planned 180 min")
	s.Assert().Contains(s.out.String(), "Mitosis")
}

func (s *CLISuite) TestToday_JSON() {
	s.Require().NoError(s.run("today", "--json"))
	var day services.DayView
	s.Require().NoError(json.Unmarshal(s.out.Bytes(), &day))
	s.Assert().Equal("2026-10-19", day.Date)
	s.Assert().Equal(180, day.PlannedMinutes)
}

func (s *CLISuite) TestPlan_Regenerate() {
	s.Require().NoError(s.run("plan", "--regenerate", "--json"))
	var plan models.Plan
	s.Require().NoError(json.Unmarshal(s.out.Bytes(), &plan))
	s.Assert().Len(plan.Days, 7)
}

func (s *CLISuite) TestComplete() {
	s.Require().NoError(s.run("complete", "pe-levers", "-m", "Exam questions", "-d", "30"))
	s.Assert().Contains(s.out.String(), "logged 30 min on pe-levers")

	score, err := s.svc.Score(context.Background(), "pe-levers")
	s.Require().NoError(err)
	s.Assert().InDelta(0.72, score.Performance, 1e-9)

	err = s.run("complete", "pe-levers", "-m", "Juggling")
	s.Require().Error(err)
	s.Assert().Equal(errors.ErrCodeValidation, errors.AsAppError(err).Code)
}

func (s *CLISuite) TestSettings() {
	s.Require().NoError(s.run("settings", "--budget", "90", "--day-budget", "Saturday=240", "--spaced-repetition=false"))
	var settings models.Settings
	s.Require().NoError(json.Unmarshal(s.out.Bytes(), &settings))
	s.Assert().Equal(90, settings.DailyTimeBudget)
	s.Assert().False(settings.SpacedRepetition)
	s.Assert().Equal(map[string]int{"saturday": 240}, settings.DayBudgets)

	s.Require().Error(s.run("settings", "--day-budget", "saturday"))
}

func (s *CLISuite) TestDeadlineLifecycle() {
	s.Require().NoError(s.run("deadline", "add", "Cells", "test", "--date", "2026-10-23", "--subject", "bio", "--topic", "bio-cells", "--json"))
	var d models.Deadline
	s.Require().NoError(json.Unmarshal(s.out.Bytes(), &d))
	s.Assert().Equal("Cells test", d.Name)

	s.Require().NoError(s.run("deadline", "list"))
	s.Assert().Contains(s.out.String(), d.ID)

	s.Require().NoError(s.run("deadline", "remove", d.ID))
	err := s.run("deadline", "remove", d.ID)
	s.Assert().True(errors.IsNotFound(err))
}

func (s *CLISuite) TestItemSetAndPriority() {
	s.Require().NoError(s.run("item", "set", "bio-cells-mitosis", "--confidence", "0.9", "--json"))
	var scores []services.ItemScore
	s.Require().NoError(json.Unmarshal(s.out.Bytes(), &scores))
	s.Require().Len(scores, 1)
	s.Assert().InDelta(0.9, scores[0].Confidence, 1e-9)

	s.Require().Error(s.run("item", "set", "bio-cells-mitosis"))

	s.Require().NoError(s.run("item", "priority", "bio-cells"))
	s.Assert().Contains(s.out.String(), "bio-cells-mitosis")
}

func (s *CLISuite) TestPapers() {
	s.Require().NoError(s.run("paper", "add", "June", "2024", "--subject", "bio", "--score", "72", "--json"))
	var papers []models.PastPaper
	s.Require().NoError(json.Unmarshal(s.out.Bytes(), &papers))
	s.Require().Len(papers, 1)
	s.Assert().True(papers[0].Completed)

	s.Require().NoError(s.run("paper", "toggle", papers[0].ID))
	s.Assert().Contains(s.out.String(), "false")

	s.Require().NoError(s.run("paper", "remove", papers[0].ID))
	s.Require().NoError(s.run("paper", "list", "--json"))
	s.Assert().JSONEq("[]", s.out.String())
}

func (s *CLISuite) TestMetricsAndScores() {
	s.Require().NoError(s.run("metrics"))
	s.Assert().Contains(s.out.String(), "Predicted grade")

	s.Require().NoError(s.run("score"))
	s.Assert().Contains(s.out.String(), "pe-levers")

	s.Require().NoError(s.run("subjects"))
	s.Assert().Contains(s.out.String(), "Biology (bio)")
}

func (s *CLISuite) TestReset_RequiresConfirmation() {
	s.Require().Error(s.run("reset"))
	s.Require().NoError(s.run("reset", "--yes"))
	s.Assert().Contains(s.out.String(), "state reset")
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func TestParsePairs(t *testing.T) {
	ints, err := parseIntPairs([]string{"Monday=60", " sunday = 0 "})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"monday": 60, "sunday": 0}, ints)

	_, err = parseIntPairs([]string{"monday=lots"})
	assert.Error(t, err)

	floats, err := parseFloatPairs([]string{"bio=2.5"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"bio": 2.5}, floats)

	_, err = parseFloatPairs([]string{"=1"})
	assert.Error(t, err)
}
