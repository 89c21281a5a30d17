package main

import (
	"net/http"
	"slices"
	"time"

	"github.com/burinious/burinious-weight-coach/internal/coach"
)

const trendWindowDays = 7

// historyRow joins one calendar day's log with its weigh-in. Missing values
// render as "--".
type historyRow struct {
	Date        string
	Calories    string
	Protein     string
	Water       string
	Steps       string
	WorkoutMins string
	Weight      string
}

type weightRow struct {
	Date string
	Kg   string
	// Trend is the trailing seven-entry moving average.
	Trend string
	Delta string
}

type historyTemplateData struct {
	BaseTemplateData
	Rows       []historyRow
	Weights    []weightRow
	DaysLogged int
	WeighIns   int
}

func placeholder(v *int) string {
	if v == nil {
		return "--"
	}
	return optionalIntValue(v)
}

// historyRows joins logs and weigh-ins by date, newest first.
func historyRows(logs map[time.Time]coach.LogEntry, weights []coach.WeightEntry) []historyRow {
	weightByDate := make(map[time.Time]float64, len(weights))
	dateSet := make(map[time.Time]struct{}, len(logs)+len(weights))
	for date := range logs {
		dateSet[date] = struct{}{}
	}
	for _, w := range weights {
		weightByDate[w.Date] = w.Kg
		dateSet[w.Date] = struct{}{}
	}

	dates := make([]time.Time, 0, len(dateSet))
	for date := range dateSet {
		dates = append(dates, date)
	}
	slices.SortFunc(dates, func(a, b time.Time) int {
		return b.Compare(a)
	})

	rows := make([]historyRow, 0, len(dates))
	for _, date := range dates {
		entry := logs[date]
		row := historyRow{
			Date:        date.Format(time.DateOnly),
			Calories:    placeholder(entry.Calories),
			Protein:     placeholder(entry.Protein),
			Water:       placeholder(entry.Water),
			Steps:       placeholder(entry.Steps),
			WorkoutMins: placeholder(entry.WorkoutMins),
			Weight:      "--",
		}
		if kg, ok := weightByDate[date]; ok {
			row.Weight = formatFloat(kg)
		}
		rows = append(rows, row)
	}
	return rows
}

// weightRows formats weight entries newest first with a smoothed trend column.
func weightRows(weights []coach.WeightEntry) []weightRow {
	sorted := slices.Clone(weights)
	slices.SortFunc(sorted, func(a, b coach.WeightEntry) int {
		return a.Date.Compare(b.Date)
	})

	series := make([]float64, len(sorted))
	for i, w := range sorted {
		series[i] = w.Kg
	}
	trend := coach.MovingAverage(series, trendWindowDays)

	rows := make([]weightRow, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		row := weightRow{
			Date:  sorted[i].Date.Format(time.DateOnly),
			Kg:    formatFloat(sorted[i].Kg),
			Trend: formatFloat(trend[i]),
		}
		if i > 0 {
			row.Delta = signedKg(sorted[i].Kg - sorted[i-1].Kg)
		}
		rows = append(rows, row)
	}
	return rows
}

func (app *application) historyGET(w http.ResponseWriter, r *http.Request) {
	state, err := app.coachService.State(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := historyTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Rows:             historyRows(state.Logs, state.Weights),
		Weights:          weightRows(state.Weights),
		DaysLogged:       len(state.Logs),
		WeighIns:         len(state.Weights),
	}

	app.render(w, r, http.StatusOK, "history", data)
}
