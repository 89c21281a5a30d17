package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/burinious/burinious-weight-coach/internal/coach"
)

type dashboardTemplateData struct {
	BaseTemplateData
	Started bool

	// Headline indicators, preformatted for display. Empty string means the
	// data does not exist yet.
	CurrentWeight string
	WeightDelta   string
	LossKg        string
	GoalKg        string
	GoalProgress  int

	ElapsedDays    int
	ProgramDays    int
	ElapsedPercent int
	Consistency    int
	Streak         int
	WeeklyScore    int

	AverageCalories string
	CalorieDelta    string
	ProteinHitDays  int

	Plateau       bool
	Velocity      string
	GoalReached   bool
	ProjectedDate string

	CoachNote string

	// TodayPlan is today's prescribed session, when the plan covers today.
	TodayPlan *coach.PlanEntry
	// TodayLogged indicates whether anything has been logged today.
	TodayLogged bool

	TodayMetrics []metricCard
	Upcoming     []upcomingSession
}

// metricCard is one of today's tracked metrics measured against its target.
type metricCard struct {
	Label  string
	Value  string
	Target string
	// Percent is the clamped progress towards the target, -1 when the metric
	// has no target to measure against.
	Percent int
}

type upcomingSession struct {
	Date    string
	Weekday string
	Focus   string
	Workout string
}

// targetPercent measures a recorded value against its target, clamped to 100.
func targetPercent(value *int, target int) int {
	if target <= 0 {
		return -1
	}
	if value == nil {
		return 0
	}
	return min(100, *value*100/target)
}

func todayMetricCards(entry coach.LogEntry, settings coach.Settings) []metricCard {
	value := func(v *int) string {
		if v == nil {
			return "--"
		}
		return fmt.Sprintf("%d", *v)
	}
	return []metricCard{
		{
			Label:   "Calories",
			Value:   value(entry.Calories),
			Target:  fmt.Sprintf("%d kcal", settings.DailyCalorieTarget),
			Percent: targetPercent(entry.Calories, settings.DailyCalorieTarget),
		},
		{
			Label:   "Protein",
			Value:   value(entry.Protein),
			Target:  fmt.Sprintf("%d g", settings.ProteinTarget),
			Percent: targetPercent(entry.Protein, settings.ProteinTarget),
		},
		{
			Label:   "Water",
			Value:   value(entry.Water),
			Target:  fmt.Sprintf("%d ml", settings.WaterTarget),
			Percent: targetPercent(entry.Water, settings.WaterTarget),
		},
		{
			Label:   "Steps",
			Value:   value(entry.Steps),
			Target:  fmt.Sprintf("%d", settings.StepTarget),
			Percent: targetPercent(entry.Steps, settings.StepTarget),
		},
		{
			Label:   "Workout",
			Value:   value(entry.WorkoutMins),
			Target:  "minutes",
			Percent: -1,
		},
	}
}

// upcomingSessions returns up to count plan days after today.
func upcomingSessions(plan []coach.PlanEntry, today time.Time, count int) []upcomingSession {
	var sessions []upcomingSession
	for _, entry := range plan {
		if !entry.Date.After(today) {
			continue
		}
		sessions = append(sessions, upcomingSession{
			Date:    entry.Date.Format(time.DateOnly),
			Weekday: entry.Date.Weekday().String(),
			Focus:   entry.Focus,
			Workout: entry.Workout,
		})
		if len(sessions) == count {
			break
		}
	}
	return sessions
}

// signedKg formats a kilogram delta with an explicit sign.
func signedKg(kg float64) string {
	return fmt.Sprintf("%+.1f kg", kg)
}

func (app *application) dashboardGET(w http.ResponseWriter, r *http.Request) {
	summary, state, err := app.coachService.Summary(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := dashboardTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Started:          state.ProgramStarted,
		GoalKg:           formatFloat(state.Settings.GoalKg),
		GoalProgress:     int(summary.GoalProgress),
		ElapsedDays:      summary.ElapsedDays,
		ProgramDays:      state.Settings.ProgramDays,
		ElapsedPercent:   int(summary.ElapsedPercent),
		Consistency:      int(summary.Consistency),
		Streak:           summary.Streak,
		WeeklyScore:      summary.WeeklyScore,
		ProteinHitDays:   summary.ProteinHitDays,
		Plateau:          summary.Plateau == coach.PlateauDetected,
		GoalReached:      summary.Projection.Status == coach.ProjectionReached,
		CoachNote:        summary.CoachNote,
	}

	if summary.CurrentWeight != nil {
		data.CurrentWeight = fmt.Sprintf("%.1f kg", *summary.CurrentWeight)
	}
	if summary.WeightDelta != nil {
		data.WeightDelta = signedKg(*summary.WeightDelta)
	}
	if summary.LossKg != nil {
		data.LossKg = fmt.Sprintf("%.1f kg", *summary.LossKg)
	}
	if summary.AverageCalories != nil {
		data.AverageCalories = fmt.Sprintf("%.0f kcal", *summary.AverageCalories)
	}
	if summary.CalorieDelta != nil {
		data.CalorieDelta = fmt.Sprintf("%+d kcal", *summary.CalorieDelta)
	}
	if summary.WeeklyVelocity != nil {
		data.Velocity = fmt.Sprintf("%.2f kg/week", *summary.WeeklyVelocity)
	}
	if summary.Projection.Status == coach.ProjectionOnDate {
		data.ProjectedDate = summary.Projection.Date.Format("2 Jan 2006")
	}

	today := coach.Today()
	for i := range state.Plan {
		if state.Plan[i].Date.Equal(today) {
			data.TodayPlan = &state.Plan[i]
			break
		}
	}
	_, data.TodayLogged = state.Logs[today]
	data.TodayMetrics = todayMetricCards(state.Logs[today], state.Settings)
	const upcomingCount = 3
	data.Upcoming = upcomingSessions(state.Plan, today, upcomingCount)

	app.render(w, r, http.StatusOK, "dashboard", data)
}
