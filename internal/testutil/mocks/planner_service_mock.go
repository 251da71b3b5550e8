package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/revplan/internal/metrics"
	"github.com/vytor/revplan/internal/models"
	"github.com/vytor/revplan/internal/planner"
	"github.com/vytor/revplan/internal/services"
)

// MockPlannerService is a mock implementation of services.PlannerService
type MockPlannerService struct {
	mock.Mock
}

var _ services.PlannerService = (*MockPlannerService)(nil)

func (m *MockPlannerService) Plan(ctx context.Context) (*models.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *MockPlannerService) Day(ctx context.Context, dayKey string) (*services.DayView, error) {
	args := m.Called(ctx, dayKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.DayView), args.Error(1)
}

func (m *MockPlannerService) Today(ctx context.Context) (*services.DayView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.DayView), args.Error(1)
}

func (m *MockPlannerService) Generate(ctx context.Context) (*services.GenerateResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.GenerateResult), args.Error(1)
}

func (m *MockPlannerService) Rollover(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockPlannerService) Sweep(ctx context.Context) ([]planner.Miss, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]planner.Miss), args.Error(1)
}

func (m *MockPlannerService) CompleteSession(ctx context.Context, req services.CompleteRequest) (*models.SessionRecord, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionRecord), args.Error(1)
}

func (m *MockPlannerService) Scores(ctx context.Context) ([]services.ItemScore, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.ItemScore), args.Error(1)
}

func (m *MockPlannerService) Score(ctx context.Context, itemID string) (*services.ItemScore, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ItemScore), args.Error(1)
}

func (m *MockPlannerService) PriorityItem(ctx context.Context, topicID string) (*services.ItemScore, error) {
	args := m.Called(ctx, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ItemScore), args.Error(1)
}

func (m *MockPlannerService) UpdateItem(ctx context.Context, itemID string, upd services.ItemUpdate) (*services.ItemScore, error) {
	args := m.Called(ctx, itemID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ItemScore), args.Error(1)
}

func (m *MockPlannerService) Subjects(ctx context.Context) ([]models.Subject, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subject), args.Error(1)
}

func (m *MockPlannerService) Metrics(ctx context.Context) (*metrics.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*metrics.Summary), args.Error(1)
}

func (m *MockPlannerService) Settings(ctx context.Context) (models.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Settings), args.Error(1)
}

func (m *MockPlannerService) UpdateSettings(ctx context.Context, patch services.SettingsPatch) (models.Settings, error) {
	args := m.Called(ctx, patch)
	return args.Get(0).(models.Settings), args.Error(1)
}

func (m *MockPlannerService) AddDeadline(ctx context.Context, in services.DeadlineInput) (*models.Deadline, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deadline), args.Error(1)
}

func (m *MockPlannerService) ListDeadlines(ctx context.Context) ([]models.Deadline, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Deadline), args.Error(1)
}

func (m *MockPlannerService) RemoveDeadline(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPlannerService) AddPastPaper(ctx context.Context, in services.PaperInput) (*models.PastPaper, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PastPaper), args.Error(1)
}

func (m *MockPlannerService) ListPastPapers(ctx context.Context) ([]models.PastPaper, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PastPaper), args.Error(1)
}

func (m *MockPlannerService) TogglePastPaper(ctx context.Context, id string) (*models.PastPaper, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PastPaper), args.Error(1)
}

func (m *MockPlannerService) RemovePastPaper(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPlannerService) Reset(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
