package coach

import (
	"sort"
	"time"

	"github.com/burinious/burinious-weight-coach/internal/ptr"
)

// Snapshot is the portable JSON form of the whole program state. It is the
// shape served by the export endpoint and accepted by import, so field names
// are part of the data contract and stay stable.
type Snapshot struct {
	Settings SnapshotSettings       `json:"settings"`
	Logs     map[string]SnapshotLog `json:"logs"`
	Weights  []SnapshotWeight       `json:"weights"`
	Plan     []SnapshotPlanEntry    `json:"plan"`
	// Started is a pointer so a missing flag in hand-edited or legacy
	// exports is distinguishable from an explicit false.
	Started *bool `json:"programStarted"`
}

// SnapshotSettings mirrors Settings with a string start date.
type SnapshotSettings struct {
	StartDate          string  `json:"startDate"`
	ProgramDays        int     `json:"programDays"`
	DailyCalorieTarget int     `json:"dailyCalorieTarget"`
	ProteinTarget      int     `json:"proteinTargetG"`
	StepTarget         int     `json:"stepTarget"`
	WaterTarget        int     `json:"waterTargetMl"`
	GoalKg             float64 `json:"goalKg"`
}

// SnapshotLog mirrors LogEntry. Absent metrics serialise as null.
type SnapshotLog struct {
	Calories    *int `json:"calories"`
	Protein     *int `json:"proteinG"`
	Water       *int `json:"waterMl"`
	Steps       *int `json:"steps"`
	WorkoutMins *int `json:"workoutMins"`
}

// SnapshotWeight mirrors WeightEntry.
type SnapshotWeight struct {
	Date string  `json:"date"`
	Kg   float64 `json:"kg"`
}

// SnapshotPlanEntry mirrors PlanEntry.
type SnapshotPlanEntry struct {
	Date    string `json:"date"`
	Focus   string `json:"focus"`
	Workout string `json:"workout"`
	Notes   string `json:"notes"`
}

// Export converts live state into its portable snapshot form. Collections are
// emitted date-sorted so exports are stable and diffable.
func Export(state ProgramState) Snapshot {
	snapshot := Snapshot{
		Settings: SnapshotSettings{
			ProgramDays:        state.Settings.ProgramDays,
			DailyCalorieTarget: state.Settings.DailyCalorieTarget,
			ProteinTarget:      state.Settings.ProteinTarget,
			StepTarget:         state.Settings.StepTarget,
			WaterTarget:        state.Settings.WaterTarget,
			GoalKg:             state.Settings.GoalKg,
		},
		Logs:    make(map[string]SnapshotLog, len(state.Logs)),
		Weights: make([]SnapshotWeight, 0, len(state.Weights)),
		Plan:    make([]SnapshotPlanEntry, 0, len(state.Plan)),
		Started: ptr.Ref(state.ProgramStarted),
	}
	if !state.Settings.StartDate.IsZero() {
		snapshot.Settings.StartDate = formatDate(state.Settings.StartDate)
	}
	for date, entry := range state.Logs {
		snapshot.Logs[formatDate(date)] = SnapshotLog{
			Calories:    entry.Calories,
			Protein:     entry.Protein,
			Water:       entry.Water,
			Steps:       entry.Steps,
			WorkoutMins: entry.WorkoutMins,
		}
	}
	for _, weight := range sortedWeights(state.Weights) {
		snapshot.Weights = append(snapshot.Weights, SnapshotWeight{
			Date: formatDate(weight.Date),
			Kg:   weight.Kg,
		})
	}
	for _, entry := range state.Plan {
		snapshot.Plan = append(snapshot.Plan, SnapshotPlanEntry{
			Date:    formatDate(entry.Date),
			Focus:   entry.Focus,
			Workout: entry.Workout,
			Notes:   entry.Notes,
		})
	}
	return snapshot
}

// Normalize repairs a snapshot into usable live state. Imports come from old
// exports and hand-edited files, so every hole gets a defined repair instead
// of an error:
//
//   - missing or out-of-range settings fall back to defaults
//   - entries with unparseable dates are dropped
//   - a started program with no plan gets its plan reseeded
//   - a missing start date is recovered from the first plan entry
func Normalize(snapshot Snapshot) ProgramState {
	state := ProgramState{
		Settings: normalizeSettings(snapshot.Settings),
		Logs:     make(map[time.Time]LogEntry, len(snapshot.Logs)),
		Weights:  make([]WeightEntry, 0, len(snapshot.Weights)),
		Plan:     make([]PlanEntry, 0, len(snapshot.Plan)),
	}

	for rawDate, log := range snapshot.Logs {
		date, err := parseDate(rawDate)
		if err != nil {
			continue
		}
		entry := LogEntry{
			Calories:    log.Calories,
			Protein:     log.Protein,
			Water:       log.Water,
			Steps:       log.Steps,
			WorkoutMins: log.WorkoutMins,
		}
		if entry.IsEmpty() {
			continue
		}
		state.Logs[date] = entry
	}

	for _, weight := range snapshot.Weights {
		date, err := parseDate(weight.Date)
		if err != nil || weight.Kg < MinWeightKg || weight.Kg > MaxWeightKg {
			continue
		}
		state.Weights = append(state.Weights, WeightEntry{Date: date, Kg: weight.Kg})
	}
	state.Weights = dedupeWeights(state.Weights)

	for _, entry := range snapshot.Plan {
		date, err := parseDate(entry.Date)
		if err != nil {
			continue
		}
		state.Plan = append(state.Plan, PlanEntry{
			Date:    date,
			Focus:   entry.Focus,
			Workout: entry.Workout,
			Notes:   entry.Notes,
		})
	}
	sort.Slice(state.Plan, func(i, j int) bool {
		return state.Plan[i].Date.Before(state.Plan[j].Date)
	})

	switch {
	case snapshot.Started == nil:
		// A plan implies the program ran even if the flag was lost.
		state.ProgramStarted = len(state.Plan) > 0
	case *snapshot.Started:
		state.ProgramStarted = true
	default:
		// An explicit not-started wins over a leftover plan.
		state.Plan = nil
	}

	if state.Settings.StartDate.IsZero() && len(state.Plan) > 0 {
		state.Settings.StartDate = state.Plan[0].Date
	}
	if state.ProgramStarted && len(state.Plan) == 0 {
		start := state.Settings.StartDate
		if start.IsZero() {
			start = normalizeDate(time.Now())
			state.Settings.StartDate = start
		}
		state.Plan = GeneratePlan(start, state.Settings.ProgramDays)
	}

	return state
}

// normalizeSettings fills gaps and out-of-range values field by field so one
// bad value does not discard the rest.
func normalizeSettings(raw SnapshotSettings) Settings {
	settings := DefaultSettings()
	if date, err := parseDate(raw.StartDate); err == nil {
		settings.StartDate = date
	}
	if raw.ProgramDays >= MinProgramDays && raw.ProgramDays <= MaxProgramDays {
		settings.ProgramDays = raw.ProgramDays
	}
	if raw.DailyCalorieTarget >= MinDailyCalorieTarget && raw.DailyCalorieTarget <= MaxDailyCalorieTarget {
		settings.DailyCalorieTarget = raw.DailyCalorieTarget
	}
	if raw.ProteinTarget >= MinProteinTarget && raw.ProteinTarget <= MaxProteinTarget {
		settings.ProteinTarget = raw.ProteinTarget
	}
	if raw.StepTarget >= MinStepTarget && raw.StepTarget <= MaxStepTarget {
		settings.StepTarget = raw.StepTarget
	}
	if raw.WaterTarget >= MinWaterTarget && raw.WaterTarget <= MaxWaterTarget {
		settings.WaterTarget = raw.WaterTarget
	}
	if raw.GoalKg >= MinGoalKg && raw.GoalKg <= MaxGoalKg {
		settings.GoalKg = raw.GoalKg
	}
	return settings
}

// dedupeWeights keeps the last weigh-in per date, preserving input order for
// the survivors.
func dedupeWeights(weights []WeightEntry) []WeightEntry {
	latest := make(map[time.Time]float64, len(weights))
	for _, weight := range weights {
		latest[weight.Date] = weight.Kg
	}
	deduped := make([]WeightEntry, 0, len(latest))
	seen := make(map[time.Time]bool, len(latest))
	for _, weight := range weights {
		if seen[weight.Date] {
			continue
		}
		seen[weight.Date] = true
		deduped = append(deduped, WeightEntry{Date: weight.Date, Kg: latest[weight.Date]})
	}
	return deduped
}
