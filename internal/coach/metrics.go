package coach

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Aggregation constants. The weekly-score weights and the coach-note
// thresholds are a deliberate choice within the documented monotonic
// behaviour, not a law of nature.
const (
	// maxStreakDays caps the backward walk when counting the logging streak.
	maxStreakDays = 365
	// calorieWindowDays is the trailing window for the calorie trend.
	calorieWindowDays = 14
	// proteinWindowDays is the trailing window for protein-target hits.
	proteinWindowDays = 14
	// weekDays is the trailing window for the weekly score.
	weekDays = 7

	// plateauWindowEntries bounds how many recent weigh-ins plateau detection inspects.
	plateauWindowEntries = 14
	// plateauMinEntries is the minimum number of weigh-ins needed to judge a plateau.
	plateauMinEntries = 4
	// plateauThresholdKg is the weight change below which the span counts as a plateau.
	plateauThresholdKg = 0.3

	// velocityMinEntries is the minimum number of weigh-ins needed for a velocity estimate.
	velocityMinEntries = 3

	// Weekly-score blend: logging consistency, protein adherence, calorie closeness.
	scoreLoggingWeight  = 45.0
	scoreProteinWeight  = 30.0
	scoreCalorieWeight  = 25.0
	// scoreCalorieCeiling is the absolute calorie deviation at which the
	// closeness term decays to zero.
	scoreCalorieCeiling = 500.0
	// scoreCalorieNeutral is the partial credit granted when no calorie data exists.
	scoreCalorieNeutral = 0.5

	// coachLowScore is the weekly score below which consistency advice wins.
	coachLowScore = 40
	// coachCalorieDrift is the absolute calorie delta that triggers portion advice.
	coachCalorieDrift = 250
)

// clampPercent clamps a percentage to [0, 100].
func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// CurrentStreak counts consecutive logged days ending today, inclusive.
//
// The walk stops at the first missing day and is capped at a year. A zero
// today yields 0, mirroring the unparseable-date degradation of the store.
func CurrentStreak(logs map[time.Time]LogEntry, today time.Time) int {
	if today.IsZero() {
		return 0
	}
	anchor := normalizeDate(today)
	streak := 0
	for i := range maxStreakDays {
		if _, ok := logs[anchor.AddDate(0, 0, -i)]; !ok {
			break
		}
		streak++
	}
	return streak
}

// sortedWeights returns a copy of weights sorted by date ascending. The stored
// collection is unordered, so every delta computation sorts first.
func sortedWeights(weights []WeightEntry) []WeightEntry {
	sorted := make([]WeightEntry, len(weights))
	copy(sorted, weights)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// WeightDelta returns latest minus first recorded weight, rounded to 0.1 kg.
// It returns nil when fewer than two weigh-ins exist.
func WeightDelta(weights []WeightEntry) *float64 {
	if len(weights) < 2 {
		return nil
	}
	sorted := sortedWeights(weights)
	delta := round1(sorted[len(sorted)-1].Kg - sorted[0].Kg)
	return &delta
}

// LossKg returns the total weight lost (positive = lost), or nil when unknown.
func LossKg(weights []WeightEntry) *float64 {
	delta := WeightDelta(weights)
	if delta == nil {
		return nil
	}
	loss := round1(-*delta)
	return &loss
}

// GoalProgress returns the loss as a clamped percentage of the goal.
// Unknown loss counts as zero progress so the dashboard can always render.
func GoalProgress(weights []WeightEntry, goalKg float64) float64 {
	loss := LossKg(weights)
	if loss == nil || goalKg <= 0 {
		return 0
	}
	return clampPercent(*loss / goalKg * 100)
}

// ElapsedDays returns how many program days have passed, clamped to
// [0, ProgramDays]. It returns 0 when the program has not started or the
// start date is unset.
func ElapsedDays(today time.Time, settings Settings, started bool) int {
	if !started || settings.StartDate.IsZero() || today.IsZero() {
		return 0
	}
	elapsed := daysBetween(settings.StartDate, today) + 1
	return max(0, min(elapsed, settings.ProgramDays))
}

// Consistency returns the share of elapsed days with a log entry as a clamped
// percentage. Zero elapsed days yields zero.
func Consistency(loggedDays, elapsedDays int) float64 {
	if elapsedDays <= 0 {
		return 0
	}
	return clampPercent(float64(loggedDays) / float64(max(1, elapsedDays)) * 100)
}

// AverageCalories returns the mean of recorded calorie values over the last
// window calendar dates ending today. It returns nil when no calories were
// recorded in the window.
func AverageCalories(logs map[time.Time]LogEntry, today time.Time, window int) *float64 {
	anchor := normalizeDate(today)
	sum := 0
	count := 0
	for i := range window {
		entry, ok := logs[anchor.AddDate(0, 0, -i)]
		if !ok || entry.Calories == nil {
			continue
		}
		sum += *entry.Calories
		count++
	}
	if count == 0 {
		return nil
	}
	avg := float64(sum) / float64(count)
	return &avg
}

// CalorieDelta returns the rounded difference between the trailing calorie
// average and the daily target. Positive means over target. It returns nil
// when no calorie data exists in the window.
func CalorieDelta(logs map[time.Time]LogEntry, today time.Time, window, target int) *int {
	avg := AverageCalories(logs, today, window)
	if avg == nil {
		return nil
	}
	delta := int(math.Round(*avg - float64(target)))
	return &delta
}

// ProteinHitDays counts dates within the trailing window where recorded
// protein met or exceeded the target.
func ProteinHitDays(logs map[time.Time]LogEntry, today time.Time, window, target int) int {
	anchor := normalizeDate(today)
	hits := 0
	for i := range window {
		entry, ok := logs[anchor.AddDate(0, 0, -i)]
		if ok && entry.Protein != nil && *entry.Protein >= target {
			hits++
		}
	}
	return hits
}

// DaysLogged counts dates within the trailing window that have a log entry.
func DaysLogged(logs map[time.Time]LogEntry, today time.Time, window int) int {
	anchor := normalizeDate(today)
	logged := 0
	for i := range window {
		if _, ok := logs[anchor.AddDate(0, 0, -i)]; ok {
			logged++
		}
	}
	return logged
}

// MovingAverage smooths a series with a trailing window: element i is the mean
// of series[max(0,i-window+1)..i]. The result has the same length as the
// input, and the first element equals itself.
func MovingAverage(series []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	smoothed := make([]float64, len(series))
	sum := 0.0
	for i, v := range series {
		sum += v
		if i >= window {
			sum -= series[i-window]
		}
		span := min(i+1, window)
		smoothed[i] = sum / float64(span)
	}
	return smoothed
}

// PlateauStatus classifies the recent weight trend.
type PlateauStatus int

const (
	// PlateauUnknown means too few weigh-ins exist to judge.
	PlateauUnknown PlateauStatus = iota
	// PlateauNone means weight is still moving.
	PlateauNone
	// PlateauDetected means weight change stayed below the threshold.
	PlateauDetected
)

// Plateau inspects up to the last 14 weigh-ins and reports whether the weight
// has stalled.
func Plateau(weights []WeightEntry) PlateauStatus {
	sorted := sortedWeights(weights)
	if len(sorted) > plateauWindowEntries {
		sorted = sorted[len(sorted)-plateauWindowEntries:]
	}
	if len(sorted) < plateauMinEntries {
		return PlateauUnknown
	}
	change := math.Abs(sorted[len(sorted)-1].Kg - sorted[0].Kg)
	if change < plateauThresholdKg {
		return PlateauDetected
	}
	return PlateauNone
}

// WeeklyVelocity estimates kilograms lost per week (positive = losing) from
// the full weigh-in history. It returns nil with fewer than three entries.
func WeeklyVelocity(weights []WeightEntry) *float64 {
	if len(weights) < velocityMinEntries {
		return nil
	}
	sorted := sortedWeights(weights)
	first, last := sorted[0], sorted[len(sorted)-1]
	span := max(1, daysBetween(first.Date, last.Date))
	kgPerDay := (first.Kg - last.Kg) / float64(span)
	velocity := kgPerDay * 7
	return &velocity
}

// ProjectionStatus classifies the goal-date projection.
type ProjectionStatus int

const (
	// ProjectionUnknown means there is not enough pace data to project.
	ProjectionUnknown ProjectionStatus = iota
	// ProjectionReached means the target weight has already been met.
	ProjectionReached
	// ProjectionOnDate carries a projected completion date.
	ProjectionOnDate
)

// Projection is the outcome of projecting the goal date from current pace.
type Projection struct {
	Status ProjectionStatus
	// Date is set only when Status is ProjectionOnDate.
	Date time.Time
}

// GoalProjection projects when the target weight will be reached at the
// current weekly velocity.
func GoalProjection(today time.Time, weights []WeightEntry, goalKg float64) Projection {
	if len(weights) == 0 {
		return Projection{Status: ProjectionUnknown, Date: time.Time{}}
	}
	sorted := sortedWeights(weights)
	startingWeight := sorted[0].Kg
	latestWeight := sorted[len(sorted)-1].Kg
	targetWeight := startingWeight - goalKg

	remaining := latestWeight - targetWeight
	if remaining <= 0 {
		return Projection{Status: ProjectionReached, Date: time.Time{}}
	}

	velocity := WeeklyVelocity(weights)
	if velocity == nil || *velocity <= 0 {
		return Projection{Status: ProjectionUnknown, Date: time.Time{}}
	}

	daysLeft := int(math.Ceil(remaining / *velocity * 7))
	return Projection{
		Status: ProjectionOnDate,
		Date:   normalizeDate(today).AddDate(0, 0, daysLeft),
	}
}

// WeeklyScore blends trailing-week logging consistency, protein adherence,
// and calorie closeness into a 0-100 execution score.
//
// The calorie term gets full credit near zero deviation and decays linearly
// to zero at the deviation ceiling; with no calorie data at all it falls back
// to neutral partial credit.
func WeeklyScore(logs map[time.Time]LogEntry, today time.Time, settings Settings) int {
	logged := DaysLogged(logs, today, weekDays)
	proteinHits := ProteinHitDays(logs, today, weekDays, settings.ProteinTarget)

	calorieTerm := scoreCalorieNeutral
	if delta := CalorieDelta(logs, today, weekDays, settings.DailyCalorieTarget); delta != nil {
		deviation := math.Abs(float64(*delta))
		calorieTerm = math.Max(0, 1-deviation/scoreCalorieCeiling)
	}

	score := scoreLoggingWeight*float64(logged)/weekDays +
		scoreProteinWeight*float64(proteinHits)/weekDays +
		scoreCalorieWeight*calorieTerm
	return int(math.Round(clampPercent(score)))
}

// CoachNote picks a single-sentence recommendation by priority: consistency
// first, then plateau, then missing data, then calorie drift, then praise.
func CoachNote(score int, plateau PlateauStatus, calorieDelta *int) string {
	switch {
	case score < coachLowScore:
		return "Consistency beats intensity: log every day this week, even a rough estimate counts."
	case plateau == PlateauDetected:
		return "Weight has stalled: trim roughly 100-150 kcal per day and add 1500-2000 steps to break the plateau."
	case calorieDelta == nil:
		return "Log your calories for a few days so the trend analysis has something to work with."
	case *calorieDelta > coachCalorieDrift:
		return fmt.Sprintf("Averaging %d kcal over target: tighten portions at your largest meal.", *calorieDelta)
	case *calorieDelta < -coachCalorieDrift:
		return fmt.Sprintf("Averaging %d kcal under target: eat a little more to protect muscle and energy.", -*calorieDelta)
	default:
		return "Right on track: keep the current pace going."
	}
}

// Summary bundles every derived indicator the dashboard renders. All fields
// degrade to sentinels or neutral values when data is missing; computing a
// summary never fails.
type Summary struct {
	CurrentWeight   *float64
	WeightDelta     *float64
	LossKg          *float64
	GoalProgress    float64
	ElapsedDays     int
	ElapsedPercent  float64
	Consistency     float64
	Streak          int
	DaysLoggedLast7 int
	AverageCalories *float64
	CalorieDelta    *int
	ProteinHitDays  int
	Plateau         PlateauStatus
	WeeklyVelocity  *float64
	Projection      Projection
	WeeklyScore     int
	CoachNote       string
}

// Summarize derives the full progress summary from the current date and state.
func Summarize(today time.Time, state ProgramState) Summary {
	settings := state.Settings

	var currentWeight *float64
	if len(state.Weights) > 0 {
		sorted := sortedWeights(state.Weights)
		kg := sorted[len(sorted)-1].Kg
		currentWeight = &kg
	}

	elapsed := ElapsedDays(today, settings, state.ProgramStarted)
	elapsedPercent := 0.0
	if state.ProgramStarted && settings.ProgramDays > 0 {
		elapsedPercent = clampPercent(float64(elapsed) / float64(settings.ProgramDays) * 100)
	}

	score := WeeklyScore(state.Logs, today, settings)
	plateau := Plateau(state.Weights)
	calorieDelta := CalorieDelta(state.Logs, today, calorieWindowDays, settings.DailyCalorieTarget)

	return Summary{
		CurrentWeight:   currentWeight,
		WeightDelta:     WeightDelta(state.Weights),
		LossKg:          LossKg(state.Weights),
		GoalProgress:    GoalProgress(state.Weights, settings.GoalKg),
		ElapsedDays:     elapsed,
		ElapsedPercent:  elapsedPercent,
		Consistency:     Consistency(len(state.Logs), elapsed),
		Streak:          CurrentStreak(state.Logs, today),
		DaysLoggedLast7: DaysLogged(state.Logs, today, weekDays),
		AverageCalories: AverageCalories(state.Logs, today, calorieWindowDays),
		CalorieDelta:    calorieDelta,
		ProteinHitDays:  ProteinHitDays(state.Logs, today, proteinWindowDays, settings.ProteinTarget),
		Plateau:         plateau,
		WeeklyVelocity:  WeeklyVelocity(state.Weights),
		Projection:      GoalProjection(today, state.Weights, settings.GoalKg),
		WeeklyScore:     score,
		CoachNote:       CoachNote(score, plateau, calorieDelta),
	}
}
