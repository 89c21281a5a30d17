package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/burinious/burinious-weight-coach/internal/coach"
)

type planDay struct {
	Date    string
	Weekday string
	Focus   string
	Workout string
	Notes   string
	IsToday bool
	IsPast  bool
}

type planWeek struct {
	Number int
	Days   []planDay
}

type planTemplateData struct {
	BaseTemplateData
	Started bool
	Weeks   []planWeek
}

// planWeeks groups the plan into seven-day weeks for display.
func planWeeks(plan []coach.PlanEntry, today time.Time) []planWeek {
	const daysPerWeek = 7

	var weeks []planWeek
	for i, entry := range plan {
		if i%daysPerWeek == 0 {
			weeks = append(weeks, planWeek{Number: i/daysPerWeek + 1})
		}
		week := &weeks[len(weeks)-1]
		week.Days = append(week.Days, planDay{
			Date:    entry.Date.Format(time.DateOnly),
			Weekday: entry.Date.Weekday().String(),
			Focus:   entry.Focus,
			Workout: entry.Workout,
			Notes:   entry.Notes,
			IsToday: entry.Date.Equal(today),
			IsPast:  entry.Date.Before(today),
		})
	}
	return weeks
}

func (app *application) planGET(w http.ResponseWriter, r *http.Request) {
	state, err := app.coachService.State(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := planTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Started:          state.ProgramStarted,
		Weeks:            planWeeks(state.Plan, coach.Today()),
	}

	app.render(w, r, http.StatusOK, "plan", data)
}

func (app *application) planNotesPOST(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		app.serverError(w, r, fmt.Errorf("parse form: %w", err))
		return
	}
	notes := r.Form.Get("notes")

	if err := app.coachService.UpdatePlanNotes(r.Context(), date, notes); err != nil {
		if errors.Is(err, coach.ErrNotFound) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, fmt.Errorf("update plan notes: %w", err))
		return
	}

	app.flash(r, "Notes saved.")
	redirect(w, r, "/plan")
}
