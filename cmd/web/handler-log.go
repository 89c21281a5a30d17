package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/burinious/burinious-weight-coach/internal/coach"
)

type logTemplateData struct {
	BaseTemplateData
	Date        string
	IsToday     bool
	Started     bool
	Calories    string
	Protein     string
	Water       string
	Steps       string
	WorkoutMins string
	Weight      string
	// Error holds a validation message from a rejected submission.
	Error string
}

// optionalIntValue renders a pointer metric as a form value.
func optionalIntValue(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

func (app *application) logGET(w http.ResponseWriter, r *http.Request) {
	date := coach.Today()
	if r.PathValue("date") != "" {
		var ok bool
		if date, ok = app.parseDateParam(w, r); !ok {
			return
		}
	}

	state, err := app.coachService.State(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := logTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Date:             date.Format(time.DateOnly),
		IsToday:          date.Equal(coach.Today()),
		Started:          state.ProgramStarted,
	}

	if entry, ok := state.Logs[date]; ok {
		data.Calories = optionalIntValue(entry.Calories)
		data.Protein = optionalIntValue(entry.Protein)
		data.Water = optionalIntValue(entry.Water)
		data.Steps = optionalIntValue(entry.Steps)
		data.WorkoutMins = optionalIntValue(entry.WorkoutMins)
	}
	for _, weight := range state.Weights {
		if weight.Date.Equal(date) {
			data.Weight = formatFloat(weight.Kg)
			break
		}
	}

	app.render(w, r, http.StatusOK, "log", data)
}

func (app *application) logPOST(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.serverError(w, r, fmt.Errorf("parse form: %w", err))
		return
	}

	date := coach.Today()
	if rawDate := r.Form.Get("date"); rawDate != "" {
		parsed, err := time.Parse(time.DateOnly, rawDate)
		if err != nil {
			app.renderLogError(w, r, "The date is not valid.")
			return
		}
		date = parsed
	}

	var (
		entry coach.LogEntry
		ok    bool
	)
	if entry.Calories, ok = parseOptionalInt(r, "calories"); !ok {
		app.renderLogError(w, r, "Calories must be a whole number.")
		return
	}
	if entry.Protein, ok = parseOptionalInt(r, "protein"); !ok {
		app.renderLogError(w, r, "Protein must be a whole number.")
		return
	}
	if entry.Water, ok = parseOptionalInt(r, "water"); !ok {
		app.renderLogError(w, r, "Water must be a whole number.")
		return
	}
	if entry.Steps, ok = parseOptionalInt(r, "steps"); !ok {
		app.renderLogError(w, r, "Steps must be a whole number.")
		return
	}
	if entry.WorkoutMins, ok = parseOptionalInt(r, "workout_mins"); !ok {
		app.renderLogError(w, r, "Workout minutes must be a whole number.")
		return
	}
	weight, ok := parseOptionalFloat(r, "weight")
	if !ok {
		app.renderLogError(w, r, "Weight must be a number.")
		return
	}

	if entry.IsEmpty() && weight == nil {
		app.renderLogError(w, r, "Fill in at least one field.")
		return
	}

	if err := app.coachService.SubmitDay(r.Context(), date, entry, weight); err != nil {
		if errors.Is(err, coach.ErrValidation) {
			app.renderLogError(w, r, "Some values are outside the accepted range.")
			return
		}
		app.serverError(w, r, fmt.Errorf("submit day: %w", err))
		return
	}

	app.flash(r, "Saved.")
	redirect(w, r, "/")
}

// renderLogError re-renders the log form with a validation message and the
// submitted values intact.
func (app *application) renderLogError(w http.ResponseWriter, r *http.Request, message string) {
	_, started, err := app.coachService.Settings(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := logTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Started:          started,
		Date:             r.Form.Get("date"),
		Calories:         r.Form.Get("calories"),
		Protein:          r.Form.Get("protein"),
		Water:            r.Form.Get("water"),
		Steps:            r.Form.Get("steps"),
		WorkoutMins:      r.Form.Get("workout_mins"),
		Weight:           r.Form.Get("weight"),
		Error:            message,
	}
	app.render(w, r, http.StatusUnprocessableEntity, "log", data)
}
