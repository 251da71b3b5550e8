package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/revplan/internal/clock"
	"github.com/vytor/revplan/internal/errors"
	"github.com/vytor/revplan/internal/logger"
	"github.com/vytor/revplan/internal/mastery"
	"github.com/vytor/revplan/internal/metrics"
	"github.com/vytor/revplan/internal/models"
	"github.com/vytor/revplan/internal/planner"
	"github.com/vytor/revplan/internal/repository"
)

// PlannerService runs the planning engine over persisted state
type PlannerService interface {
	Plan(ctx context.Context) (*models.Plan, error)
	Day(ctx context.Context, dayKey string) (*DayView, error)
	Today(ctx context.Context) (*DayView, error)
	Generate(ctx context.Context) (*GenerateResult, error)
	Rollover(ctx context.Context) (bool, error)
	Sweep(ctx context.Context) ([]planner.Miss, error)
	CompleteSession(ctx context.Context, req CompleteRequest) (*models.SessionRecord, error)
	Scores(ctx context.Context) ([]ItemScore, error)
	Score(ctx context.Context, itemID string) (*ItemScore, error)
	PriorityItem(ctx context.Context, topicID string) (*ItemScore, error)
	UpdateItem(ctx context.Context, itemID string, upd ItemUpdate) (*ItemScore, error)
	Subjects(ctx context.Context) ([]models.Subject, error)
	Metrics(ctx context.Context) (*metrics.Summary, error)
	Settings(ctx context.Context) (models.Settings, error)
	UpdateSettings(ctx context.Context, patch SettingsPatch) (models.Settings, error)
	AddDeadline(ctx context.Context, in DeadlineInput) (*models.Deadline, error)
	ListDeadlines(ctx context.Context) ([]models.Deadline, error)
	RemoveDeadline(ctx context.Context, id string) error
	AddPastPaper(ctx context.Context, in PaperInput) (*models.PastPaper, error)
	ListPastPapers(ctx context.Context) ([]models.PastPaper, error)
	TogglePastPaper(ctx context.Context, id string) (*models.PastPaper, error)
	RemovePastPaper(ctx context.Context, id string) error
	Reset(ctx context.Context) error
}

type plannerService struct {
	repo    repository.StateRepository
	clock   clock.Clock
	weights planner.Weights

	// mu sequences every call: the engine assumes a single actor.
	mu sync.Mutex
}

// NewPlannerService creates a new PlannerService
func NewPlannerService(repo repository.StateRepository, clk clock.Clock) PlannerService {
	return &plannerService{repo: repo, clock: clk, weights: planner.DefaultWeights()}
}

type snapshot struct {
	*repository.State
	store *mastery.Store
	now   time.Time
}

func (s *plannerService) load(ctx context.Context) (*snapshot, error) {
	st, err := s.repo.Load(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load state: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &snapshot{State: st, store: mastery.NewStore(st.Subjects), now: s.clock.Now()}, nil
}

func (s *plannerService) save(ctx context.Context, snap *snapshot, keys ...string) error {
	snap.Subjects = snap.store.Subjects()
	if err := s.repo.Save(ctx, snap.State, keys...); err != nil {
		logger.FromContext(ctx).Error("failed to save state: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *plannerService) builder(settings models.Settings) *planner.Builder {
	b := planner.NewBuilder()
	b.Weights = s.weights
	if q := planner.NewSubjectQuota(settings.SubjectWeights); q != nil {
		b.Strategy = q
	}
	return b
}

// regenerate sweeps misses from elapsed days and rebuilds the plan.
func (s *plannerService) regenerate(ctx context.Context, snap *snapshot) []planner.Miss {
	log := logger.FromContext(ctx)

	misses := planner.SweepMisses(snap.store, snap.Plan, snap.now)
	if len(misses) > 0 {
		log.Info("logged %d missed sessions", len(misses))
	}
	snap.Plan = s.builder(snap.Settings).Build(snap.store, planner.BuildInput{
		Now:       snap.now,
		Settings:  snap.Settings,
		Deadlines: snap.Deadlines,
		Previous:  snap.Plan,
	})
	log.Debug("plan regenerated: days=%d", len(snap.Plan.Days))
	return misses
}

// ensurePlan regenerates when there is no plan or it was generated on an
// earlier day.
func (s *plannerService) ensurePlan(ctx context.Context, snap *snapshot) (bool, error) {
	if snap.Plan != nil {
		generated := clock.DayKey(snap.Plan.GeneratedAt.In(snap.now.Location()))
		if generated == clock.DayKey(snap.now) {
			return false, nil
		}
	}
	s.regenerate(ctx, snap)
	if err := s.save(ctx, snap, repository.KeySubjects, repository.KeyPlan); err != nil {
		return false, err
	}
	return true, nil
}

func (s *plannerService) Plan(ctx context.Context) (*models.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.FromContext(ctx).Debug("getting plan")
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.ensurePlan(ctx, snap); err != nil {
		return nil, err
	}
	return snap.Plan, nil
}

func (s *plannerService) Day(ctx context.Context, dayKey string) (*DayView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.FromContext(ctx).Debug("getting plan day: %s", dayKey)
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if dayKey == "" {
		dayKey = clock.DayKey(snap.now)
	} else if _, err := clock.ParseDayKey(dayKey, snap.now.Location()); err != nil {
		return nil, errors.NewValidationError("date", "expected YYYY-MM-DD")
	}
	if _, err := s.ensurePlan(ctx, snap); err != nil {
		return nil, err
	}
	return dayView(snap, dayKey), nil
}

func (s *plannerService) Today(ctx context.Context) (*DayView, error) {
	return s.Day(ctx, "")
}

func dayView(snap *snapshot, dayKey string) *DayView {
	view := &DayView{Date: dayKey, Entries: []EntryView{}}
	for _, entry := range snap.Plan.Day(dayKey) {
		e, ok := snap.store.Resolve(entry.ItemID)
		if !ok {
			continue
		}
		view.Entries = append(view.Entries, EntryView{
			PlanEntry:   entry,
			Name:        e.Name(),
			SubjectID:   e.SubjectID,
			SubjectName: e.SubjectName,
		})
		view.PlannedMinutes += entry.Duration
		if entry.Completed {
			view.CompletedMinutes += entry.Duration
		}
	}
	return view
}

func (s *plannerService) Generate(ctx context.Context) (*GenerateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.FromContext(ctx)
	log.Info("regenerating plan")
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	misses := s.regenerate(ctx, snap)
	if err := s.save(ctx, snap, repository.KeySubjects, repository.KeyPlan); err != nil {
		return nil, err
	}
	if misses == nil {
		misses = []planner.Miss{}
	}
	return &GenerateResult{Plan: snap.Plan, Misses: misses}, nil
}

// Rollover regenerates when the stored plan was generated before today.
func (s *plannerService) Rollover(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	changed, err := s.ensurePlan(ctx, snap)
	if changed {
		logger.FromContext(ctx).Info("plan rolled over to %s", clock.DayKey(snap.now))
	}
	return changed, err
}

func (s *plannerService) Sweep(ctx context.Context) ([]planner.Miss, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.FromContext(ctx)
	log.Debug("sweeping missed sessions")
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	misses := planner.SweepMisses(snap.store, snap.Plan, snap.now)
	if len(misses) == 0 {
		return []planner.Miss{}, nil
	}
	if err := s.save(ctx, snap, repository.KeySubjects, repository.KeyPlan); err != nil {
		return nil, err
	}
	log.Info("logged %d missed sessions", len(misses))
	return misses, nil
}

func (s *plannerService) CompleteSession(ctx context.Context, req CompleteRequest) (*models.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.FromContext(ctx)
	log.Debug("completing session: item_id=%s, entry_id=%s", req.ItemID, req.EntryID)

	if strings.TrimSpace(req.ItemID) == "" {
		return nil, errors.NewValidationError("item_id", "required")
	}
	for _, m := range req.Methods {
		if !m.Valid() {
			return nil, errors.NewValidationError("methods", "unknown method "+string(m))
		}
	}
	if req.Duration < 0 {
		return nil, errors.NewValidationError("duration", "must not be negative")
	}

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.store.Resolve(req.ItemID); !ok {
		return nil, errors.NewNotFoundError("item", req.ItemID)
	}
	if req.EntryID != "" {
		entry := snap.Plan.Entry(req.EntryID)
		if entry == nil || entry.ItemID != req.ItemID {
			return nil, errors.NewNotFoundError("plan entry", req.EntryID)
		}
	}

	duration := req.Duration
	if duration == 0 {
		duration = snap.Settings.TimerLength
	}
	rec, err := planner.ApplyCompletion(snap.store, snap.Plan, planner.Completion{
		SessionID: uuid.NewString(),
		ItemID:    req.ItemID,
		EntryID:   req.EntryID,
		Methods:   req.Methods,
		Duration:  duration,
		At:        snap.now,
	})
	if err != nil {
		log.Error("failed to apply completion: %v", err)
		return nil, errors.NewInternalError(err)
	}
	snap.Sessions = append(snap.Sessions, rec)
	// Remaining slots are re-planned against the boosted scores.
	s.regenerate(ctx, snap)

	if err := s.save(ctx, snap, repository.KeySubjects, repository.KeyPlan, repository.KeySessions); err != nil {
		return nil, err
	}
	log.Info("session completed: item_id=%s, duration=%d", rec.ItemID, rec.Duration)
	return &rec, nil
}

func (s *plannerService) itemScore(snap *snapshot, e mastery.Entry) ItemScore {
	ctx := planner.NewContext(snap.now, snap.Settings, snap.Deadlines)
	b := s.weights.Breakdown(e, ctx)
	return ItemScore{
		ID:            e.ID(),
		Name:          e.Name(),
		Kind:          e.Kind.String(),
		SubjectID:     e.SubjectID,
		SubjectName:   e.SubjectName,
		ParentTopicID: e.ParentTopicID(),
		Difficulty:    e.Difficulty(),
		Confidence:    e.Confidence(),
		Performance:   e.RecentPerformance(),
		Completed:     e.Completed(),
		Missed:        e.MissedSessions(),
		Schedulable:   planner.CanSchedule(e, snap.now, snap.Settings.SpacedRepetition),
		Score:         b.Total(),
		Breakdown:     b,
	}
}

func (s *plannerService) Scores(ctx context.Context) ([]ItemScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.FromContext(ctx).Debug("scoring items")
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	items := snap.store.Items()
	out := make([]ItemScore, len(items))
	for i, e := range items {
		out[i] = s.itemScore(snap, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (s *plannerService) Score(ctx context.Context, itemID string) (*ItemScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.FromContext(ctx).Debug("scoring item: %s", itemID)
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	e, ok := snap.store.Resolve(itemID)
	if !ok {
		return nil, errors.NewNotFoundError("item", itemID)
	}
	score := s.itemScore(snap, e)
	return &score, nil
}

func (s *plannerService) PriorityItem(ctx context.Context, topicID string) (*ItemScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.FromContext(ctx).Debug("finding priority item: topic_id=%s", topicID)
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.store.Topic(topicID); !ok {
		return nil, errors.NewNotFoundError("topic", topicID)
	}
	b := s.builder(snap.Settings)
	e, ok := b.PriorityItem(snap.store, topicID, planner.NewContext(snap.now, snap.Settings, snap.Deadlines))
	if !ok {
		return nil, errors.NewNotFoundError("topic", topicID)
	}
	score := s.itemScore(snap, e)
	return &score, nil
}

func (s *plannerService) UpdateItem(ctx context.Context, itemID string, upd ItemUpdate) (*ItemScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.FromContext(ctx)
	log.Debug("updating item: %s", itemID)

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	e, ok := snap.store.Resolve(itemID)
	if !ok {
		return nil, errors.NewNotFoundError("item", itemID)
	}

	if upd.Confidence != nil {
		if *upd.Confidence < 0 || *upd.Confidence > 1 {
			return nil, errors.NewValidationError("confidence", "must be between 0 and 1")
		}
		if err := snap.store.SetConfidence(itemID, *upd.Confidence); err != nil {
			return nil, errors.NewInternalError(err)
		}
	}
	if upd.Difficulty != nil {
		d, ok := models.ParseDifficulty(*upd.Difficulty)
		if !ok {
			return nil, errors.NewValidationError("difficulty", "must be Easy, OK or Hard")
		}
		if err := snap.store.SetDifficulty(itemID, d); err != nil {
			return nil, errors.NewInternalError(err)
		}
	}
	if upd.Completed != nil {
		if e.Kind == mastery.KindTopic && len(e.Topic.Subtopics) > 0 {
			return nil, errors.NewValidationError("completed", "topic is completed through its subtopics")
		}
		if err := snap.store.SetCompleted(itemID, *upd.Completed, snap.now); err != nil {
			return nil, errors.NewInternalError(err)
		}
	}

	if err := s.save(ctx, snap, repository.KeySubjects); err != nil {
		return nil, err
	}
	score := s.itemScore(snap, e)
	return &score, nil
}

func (s *plannerService) Subjects(ctx context.Context) ([]models.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.store.Subjects(), nil
}

func (s *plannerService) Metrics(ctx context.Context) (*metrics.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.FromContext(ctx).Debug("computing metrics")
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	summary := metrics.Summarize(metrics.Input{
		Store:     snap.store,
		Sessions:  snap.Sessions,
		Papers:    snap.PastPapers,
		Deadlines: snap.Deadlines,
		Now:       snap.now,
	})
	return &summary, nil
}

func (s *plannerService) Settings(ctx context.Context) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	return snap.Settings, nil
}

// UpdateSettings applies patch, replaces invalid values with the previous
// ones and regenerates the plan.
func (s *plannerService) UpdateSettings(ctx context.Context, patch SettingsPatch) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.FromContext(ctx)
	log.Debug("updating settings")

	snap, err := s.load(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	for subject := range patch.SubjectWeights {
		if _, ok := snap.store.Subject(subject); !ok {
			return models.Settings{}, errors.NewValidationError("subject_weights", "unknown subject "+subject)
		}
	}

	previous := snap.Settings
	snap.Settings = patch.apply(previous).Normalize(previous)
	s.regenerate(ctx, snap)

	if err := s.save(ctx, snap, repository.KeySettings, repository.KeySubjects, repository.KeyPlan); err != nil {
		return models.Settings{}, err
	}
	log.Info("settings updated: budget=%d, session_length=%d", snap.Settings.DailyTimeBudget, snap.Settings.SessionLength)
	return snap.Settings, nil
}

func (s *plannerService) AddDeadline(ctx context.Context, in DeadlineInput) (*models.Deadline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.FromContext(ctx)
	log.Debug("adding deadline: name=%s, date=%s", in.Name, in.Date)

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.NewValidationError("name", "required")
	}
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := clock.ParseDayKey(in.Date, snap.now.Location()); err != nil {
		return nil, errors.NewValidationError("date", "expected YYYY-MM-DD")
	}
	if len(in.Topics) == 0 {
		return nil, errors.NewValidationError("topics", "at least one topic is required")
	}

	subjectID := in.SubjectID
	for _, topicID := range in.Topics {
		e, ok := snap.store.Resolve(topicID)
		if !ok || e.Kind != mastery.KindTopic {
			return nil, errors.NewValidationError("topics", "unknown topic "+topicID)
		}
		if subjectID == "" {
			subjectID = e.SubjectID
		}
		if e.SubjectID != subjectID {
			return nil, errors.NewValidationError("topics", "topic "+topicID+" belongs to another subject")
		}
	}

	d := models.Deadline{
		ID:        uuid.NewString(),
		Name:      name,
		Date:      in.Date,
		SubjectID: subjectID,
		Topics:    append([]string(nil), in.Topics...),
		CreatedAt: snap.now,
	}
	snap.Deadlines = append(snap.Deadlines, d)
	s.regenerate(ctx, snap)

	if err := s.save(ctx, snap, repository.KeyDeadlines, repository.KeySubjects, repository.KeyPlan); err != nil {
		return nil, err
	}
	log.Info("deadline added: id=%s", d.ID)
	return &d, nil
}

func (s *plannerService) ListDeadlines(ctx context.Context) ([]models.Deadline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := append([]models.Deadline{}, snap.Deadlines...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *plannerService) RemoveDeadline(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.FromContext(ctx)
	log.Debug("removing deadline: id=%s", id)

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i, d := range snap.Deadlines {
		if d.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.NewNotFoundError("deadline", id)
	}
	snap.Deadlines = append(snap.Deadlines[:idx], snap.Deadlines[idx+1:]...)
	s.regenerate(ctx, snap)
	return s.save(ctx, snap, repository.KeyDeadlines, repository.KeySubjects, repository.KeyPlan)
}

func (s *plannerService) AddPastPaper(ctx context.Context, in PaperInput) (*models.PastPaper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.FromContext(ctx).Debug("adding past paper: name=%s", in.Name)

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.NewValidationError("name", "required")
	}
	if in.Score != nil && (*in.Score < 0 || *in.Score > 100) {
		return nil, errors.NewValidationError("score", "must be between 0 and 100")
	}
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.store.Subject(in.SubjectID); !ok {
		return nil, errors.NewValidationError("subject_id", "unknown subject "+in.SubjectID)
	}

	p := models.PastPaper{
		ID:        uuid.NewString(),
		SubjectID: in.SubjectID,
		Name:      name,
		Score:     in.Score,
		Completed: in.Score != nil,
		AddedAt:   snap.now,
	}
	snap.PastPapers = append(snap.PastPapers, p)
	if err := s.save(ctx, snap, repository.KeyPastPapers); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *plannerService) ListPastPapers(ctx context.Context) ([]models.PastPaper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]models.PastPaper{}, snap.PastPapers...), nil
}

func (s *plannerService) TogglePastPaper(ctx context.Context, id string) (*models.PastPaper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.FromContext(ctx).Debug("toggling past paper: id=%s", id)
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range snap.PastPapers {
		if snap.PastPapers[i].ID != id {
			continue
		}
		snap.PastPapers[i].Completed = !snap.PastPapers[i].Completed
		if err := s.save(ctx, snap, repository.KeyPastPapers); err != nil {
			return nil, err
		}
		p := snap.PastPapers[i]
		return &p, nil
	}
	return nil, errors.NewNotFoundError("past paper", id)
}

func (s *plannerService) RemovePastPaper(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.FromContext(ctx).Debug("removing past paper: id=%s", id)
	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range snap.PastPapers {
		if snap.PastPapers[i].ID == id {
			snap.PastPapers = append(snap.PastPapers[:i], snap.PastPapers[i+1:]...)
			return s.save(ctx, snap, repository.KeyPastPapers)
		}
	}
	return errors.NewNotFoundError("past paper", id)
}

// Reset deletes all stored state. The catalogue is reseeded on next load.
func (s *plannerService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.FromContext(ctx).Warn("resetting all planner state")
	if err := s.repo.Reset(ctx); err != nil {
		return errors.NewInternalError(err)
	}
	return nil
}
