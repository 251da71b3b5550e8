// Package catalog builds the initial subject tree from a YAML description.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vytor/revplan/internal/logger"
	"github.com/vytor/revplan/internal/models"
)

//go:embed default.yaml
var defaultCatalog []byte

type catalogFile struct {
	Subjects []subjectSpec `yaml:"subjects"`
}

type subjectSpec struct {
	ID     string      `yaml:"id"`
	Name   string      `yaml:"name"`
	Topics []topicSpec `yaml:"topics"`
}

type topicSpec struct {
	Name       string   `yaml:"name"`
	Difficulty string   `yaml:"difficulty"`
	Subtopics  []string `yaml:"subtopics"`
}

// Default returns the subjects of the embedded catalogue.
func Default() []models.Subject {
	subjects, err := Parse(defaultCatalog)
	if err != nil {
		// The embedded file is part of the binary; failing here is a build defect.
		panic(fmt.Sprintf("catalog: embedded default invalid: %v", err))
	}
	return subjects
}

// Load reads a catalogue from path. An empty path, a missing file or an
// invalid file yields the embedded default.
func Load(path string) []models.Subject {
	log := logger.Default().WithPrefix("catalog")
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("cannot read catalogue %s, using default: %v", path, err)
		return Default()
	}
	subjects, err := Parse(raw)
	if err != nil {
		log.Warn("invalid catalogue %s, using default: %v", path, err)
		return Default()
	}
	log.Info("loaded catalogue %s: %d subjects", path, len(subjects))
	return subjects
}

// Parse decodes a YAML catalogue into subjects with default mastery state.
func Parse(raw []byte) ([]models.Subject, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	if len(f.Subjects) == 0 {
		return nil, fmt.Errorf("catalogue has no subjects")
	}

	seen := make(map[string]bool)
	subjects := make([]models.Subject, 0, len(f.Subjects))
	for _, sub := range f.Subjects {
		subjectID := sub.ID
		if subjectID == "" {
			subjectID = Slug(sub.Name)
		}
		if subjectID == "" {
			return nil, fmt.Errorf("subject without id or name")
		}
		subject := models.Subject{ID: subjectID, Name: sub.Name}
		for _, ts := range sub.Topics {
			topicID := subjectID + "-" + Slug(ts.Name)
			if seen[topicID] {
				return nil, fmt.Errorf("duplicate topic id %q", topicID)
			}
			seen[topicID] = true

			difficulty, ok := models.ParseDifficulty(ts.Difficulty)
			if !ok {
				difficulty = models.DifficultyOK
			}
			topic := models.Topic{
				ID:                topicID,
				Name:              ts.Name,
				Difficulty:        difficulty,
				Confidence:        models.DefaultConfidence,
				RecentPerformance: models.DefaultPerformance,
				Subtopics:         make([]models.StudyItem, 0, len(ts.Subtopics)),
			}
			for _, name := range ts.Subtopics {
				subID := topicID + "-" + Slug(name)
				if seen[subID] {
					return nil, fmt.Errorf("duplicate subtopic id %q", subID)
				}
				seen[subID] = true
				topic.Subtopics = append(topic.Subtopics, models.StudyItem{
					ID:                subID,
					Name:              name,
					ParentTopicID:     topicID,
					Difficulty:        models.DifficultyOK,
					Confidence:        models.DefaultConfidence,
					RecentPerformance: models.DefaultPerformance,
				})
			}
			subject.Topics = append(subject.Topics, topic)
		}
		subjects = append(subjects, subject)
	}
	return subjects, nil
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a display name into an id fragment.
func Slug(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "&", "and")
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
