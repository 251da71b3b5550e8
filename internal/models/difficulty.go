package models

import "strings"

// Difficulty is a self-rated complexity for a study item.
type Difficulty string

const (
	DifficultyEasy Difficulty = "Easy"
	DifficultyOK   Difficulty = "OK"
	DifficultyHard Difficulty = "Hard"
)

// Weight maps a difficulty onto the scoring weight. Unknown values weigh as OK.
func (d Difficulty) Weight() float64 {
	switch d {
	case DifficultyEasy:
		return 0.3
	case DifficultyHard:
		return 1.0
	default:
		return 0.6
	}
}

// MinIntervalDays is the minimum number of days between two sessions on an
// item of this difficulty.
func (d Difficulty) MinIntervalDays() int {
	switch d {
	case DifficultyHard:
		return 1
	case DifficultyEasy:
		return 5
	default:
		return 3
	}
}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyOK, DifficultyHard:
		return true
	}
	return false
}

// ParseDifficulty parses a difficulty case-insensitively.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, true
	case "ok":
		return DifficultyOK, true
	case "hard":
		return DifficultyHard, true
	}
	return "", false
}
