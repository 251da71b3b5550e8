package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vytor/revplan/internal/logger"
	"github.com/vytor/revplan/internal/models"
)

type stateRepository struct {
	kv   KVStore
	seed func() []models.Subject
}

// NewStateRepository creates a StateRepository over kv. seed supplies the
// subject catalogue when none is stored.
func NewStateRepository(kv KVStore, seed func() []models.Subject) StateRepository {
	return &stateRepository{kv: kv, seed: seed}
}

func (r *stateRepository) Load(ctx context.Context) (*State, error) {
	log := logger.FromContext(ctx).WithPrefix("state_repo")
	log.Debug("loading planner state")

	st := &State{Settings: models.DefaultSettings()}

	subjects, found, err := decode[[]models.Subject](ctx, r.kv, KeySubjects)
	if err != nil {
		return nil, err
	}
	if !found || len(subjects) == 0 {
		log.Info("no stored subjects, seeding catalogue")
		subjects = r.seedSubjects()
	}
	st.Subjects = subjects

	settings, found, err := decode[models.Settings](ctx, r.kv, KeySettings)
	if err != nil {
		return nil, err
	}
	if found {
		st.Settings = settings
	}

	plan, found, err := decode[*models.Plan](ctx, r.kv, KeyPlan)
	if err != nil {
		return nil, err
	}
	if found && plan != nil && plan.Days != nil {
		st.Plan = plan
	}

	if st.Deadlines, _, err = decode[[]models.Deadline](ctx, r.kv, KeyDeadlines); err != nil {
		return nil, err
	}
	if st.Sessions, _, err = decode[[]models.SessionRecord](ctx, r.kv, KeySessions); err != nil {
		return nil, err
	}
	if st.PastPapers, _, err = decode[[]models.PastPaper](ctx, r.kv, KeyPastPapers); err != nil {
		return nil, err
	}

	log.Debug("state loaded: subjects=%d, deadlines=%d, sessions=%d, papers=%d",
		len(st.Subjects), len(st.Deadlines), len(st.Sessions), len(st.PastPapers))
	return st, nil
}

// decode loads key as a T. A missing key or a document that does not parse
// reports found=false with the zero T; only storage failures are errors.
func decode[T any](ctx context.Context, kv KVStore, key string) (T, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("state_repo")
	var zero T

	raw, ok, err := kv.Load(ctx, key)
	if err != nil {
		log.Error("failed to load %s: %v", key, err)
		return zero, false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return zero, false, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Warn("malformed %s document, using defaults: %v", key, err)
		return zero, false, nil
	}
	return v, true, nil
}

func (r *stateRepository) seedSubjects() []models.Subject {
	if r.seed == nil {
		return nil
	}
	return r.seed()
}

func (r *stateRepository) Save(ctx context.Context, state *State, keys ...string) error {
	log := logger.FromContext(ctx).WithPrefix("state_repo")
	if len(keys) == 0 {
		keys = AllKeys
	}
	log.Debug("saving planner state: keys=%v", keys)

	docs := make(map[string][]byte, len(keys))
	for _, key := range keys {
		var v any
		switch key {
		case KeySubjects:
			v = state.Subjects
		case KeySettings:
			v = state.Settings
		case KeyPlan:
			if state.Plan == nil {
				continue
			}
			v = state.Plan
		case KeyDeadlines:
			v = nonNil(state.Deadlines)
		case KeySessions:
			v = nonNil(state.Sessions)
		case KeyPastPapers:
			v = nonNil(state.PastPapers)
		default:
			return fmt.Errorf("unknown state key %q", key)
		}
		raw, err := json.Marshal(v)
		if err != nil {
			log.Error("failed to encode %s: %v", key, err)
			return fmt.Errorf("encode %s: %w", key, err)
		}
		docs[key] = raw
	}

	if err := r.kv.SaveBatch(ctx, docs); err != nil {
		log.Error("failed to save state: %v", err)
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (r *stateRepository) Reset(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("state_repo")
	log.Info("resetting planner state")

	for _, key := range AllKeys {
		if err := r.kv.Delete(ctx, key); err != nil {
			log.Error("failed to delete %s: %v", key, err)
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
