// Package coach implements the weight-loss coaching core: plan generation,
// progress analytics, and the program state store.
package coach

import (
	"errors"
	"fmt"
	"time"
)

const dateFormat = time.DateOnly

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation marks user input rejected before it reaches the store.
// The wrapped message is suitable for showing to the user as-is.
var ErrValidation = errors.New("validation")

// validationErrorf builds an ErrValidation with a human-readable message.
func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Settings holds the user's program configuration and daily targets.
//
// A zero StartDate means the start date has not been chosen yet.
type Settings struct {
	StartDate          time.Time
	ProgramDays        int
	DailyCalorieTarget int
	ProteinTarget      int
	StepTarget         int
	WaterTarget        int
	GoalKg             float64
}

// Settings bounds. Values outside these ranges are rejected with ErrValidation.
const (
	MinProgramDays        = 14
	MaxProgramDays        = 365
	MinDailyCalorieTarget = 900
	MaxDailyCalorieTarget = 6000
	MinProteinTarget      = 30
	MaxProteinTarget      = 400
	MinStepTarget         = 1000
	MaxStepTarget         = 50000
	MinWaterTarget        = 500
	MaxWaterTarget        = 7000
	MinGoalKg             = 1.0
	MaxGoalKg             = 100.0
)

// Log value bounds.
const (
	MaxCalories    = 10000
	MaxProtein     = 500
	MaxWater       = 10000
	MaxSteps       = 100000
	MaxWorkoutMins = 600
	MinWeightKg    = 20.0
	MaxWeightKg    = 400.0
)

// DefaultSettings returns the settings a fresh or reset program starts with.
func DefaultSettings() Settings {
	return Settings{
		StartDate:          time.Time{},
		ProgramDays:        90,
		DailyCalorieTarget: 1800,
		ProteinTarget:      130,
		StepTarget:         9000,
		WaterTarget:        3000,
		GoalKg:             15,
	}
}

// Validate checks that all settings values are within their documented ranges.
func (s Settings) Validate() error {
	if s.ProgramDays < MinProgramDays || s.ProgramDays > MaxProgramDays {
		return validationErrorf("program duration must be between %d and %d days", MinProgramDays, MaxProgramDays)
	}
	if s.DailyCalorieTarget < MinDailyCalorieTarget || s.DailyCalorieTarget > MaxDailyCalorieTarget {
		return validationErrorf("daily calorie target must be between %d and %d kcal",
			MinDailyCalorieTarget, MaxDailyCalorieTarget)
	}
	if s.ProteinTarget < MinProteinTarget || s.ProteinTarget > MaxProteinTarget {
		return validationErrorf("protein target must be between %d and %d g", MinProteinTarget, MaxProteinTarget)
	}
	if s.StepTarget < MinStepTarget || s.StepTarget > MaxStepTarget {
		return validationErrorf("step target must be between %d and %d", MinStepTarget, MaxStepTarget)
	}
	if s.WaterTarget < MinWaterTarget || s.WaterTarget > MaxWaterTarget {
		return validationErrorf("water target must be between %d and %d ml", MinWaterTarget, MaxWaterTarget)
	}
	if s.GoalKg < MinGoalKg || s.GoalKg > MaxGoalKg {
		return validationErrorf("goal must be between %.0f and %.0f kg", MinGoalKg, MaxGoalKg)
	}
	return nil
}

// SettingsPatch carries a partial settings update. Nil fields are left unchanged.
type SettingsPatch struct {
	StartDate          *time.Time
	ProgramDays        *int
	DailyCalorieTarget *int
	ProteinTarget      *int
	StepTarget         *int
	WaterTarget        *int
	GoalKg             *float64
}

// apply shallow-merges the patch into s and returns the result.
func (p SettingsPatch) apply(s Settings) Settings {
	if p.StartDate != nil {
		s.StartDate = normalizeDate(*p.StartDate)
	}
	if p.ProgramDays != nil {
		s.ProgramDays = *p.ProgramDays
	}
	if p.DailyCalorieTarget != nil {
		s.DailyCalorieTarget = *p.DailyCalorieTarget
	}
	if p.ProteinTarget != nil {
		s.ProteinTarget = *p.ProteinTarget
	}
	if p.StepTarget != nil {
		s.StepTarget = *p.StepTarget
	}
	if p.WaterTarget != nil {
		s.WaterTarget = *p.WaterTarget
	}
	if p.GoalKg != nil {
		s.GoalKg = *p.GoalKg
	}
	return s
}

// PlanEntry is one calendar day's prescribed workout.
type PlanEntry struct {
	Date    time.Time
	Focus   string
	Workout string
	Notes   string
}

// LogEntry holds one calendar day's recorded metrics. A nil field means the
// value was never recorded, which is distinct from a recorded zero.
type LogEntry struct {
	Calories    *int
	Protein     *int
	Water       *int
	Steps       *int
	WorkoutMins *int
}

// IsEmpty reports whether no field has been recorded.
func (e LogEntry) IsEmpty() bool {
	return e.Calories == nil && e.Protein == nil && e.Water == nil && e.Steps == nil && e.WorkoutMins == nil
}

// validate checks all recorded values against their bounds.
func (e LogEntry) validate() error {
	checks := []struct {
		value *int
		max   int
		label string
	}{
		{e.Calories, MaxCalories, "calories"},
		{e.Protein, MaxProtein, "protein"},
		{e.Water, MaxWater, "water"},
		{e.Steps, MaxSteps, "steps"},
		{e.WorkoutMins, MaxWorkoutMins, "workout minutes"},
	}
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		if *c.value < 0 || *c.value > c.max {
			return validationErrorf("%s must be between 0 and %d", c.label, c.max)
		}
	}
	return nil
}

// WeightEntry is one calendar day's recorded body weight.
type WeightEntry struct {
	Date time.Time
	Kg   float64
}

// ProgramState is the full state aggregate read by the presentation layer.
//
// Invariants: ProgramStarted implies len(Plan) == Settings.ProgramDays and
// Plan[0].Date == Settings.StartDate; not started implies an empty plan.
type ProgramState struct {
	Settings       Settings
	Logs           map[time.Time]LogEntry
	Weights        []WeightEntry
	Plan           []PlanEntry
	ProgramStarted bool
}

// normalizeDate truncates a timestamp to its calendar date at midnight UTC.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current date at midnight UTC, the form used as the key
// for logs and plan lookups.
func Today() time.Time {
	return normalizeDate(time.Now())
}

func formatDate(t time.Time) string {
	return t.Format(dateFormat)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// daysBetween returns the number of whole calendar days from a to b.
func daysBetween(a, b time.Time) int {
	const hoursPerDay = 24
	return int(normalizeDate(b).Sub(normalizeDate(a)).Hours() / hoursPerDay)
}
