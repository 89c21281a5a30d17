package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/burinious/burinious-weight-coach/internal/coach"
)

type durationOption struct {
	Value    int
	Label    string
	Selected bool
}

type settingsTemplateData struct {
	BaseTemplateData
	Started            bool
	StartDate          string
	ProgramDays        int
	DurationOptions    []durationOption
	DailyCalorieTarget int
	ProteinTarget      int
	StepTarget         int
	WaterTarget        int
	GoalKg             string
	// Error holds a validation message from a rejected submission.
	Error string
}

func programDurationOptions(selected int) []durationOption {
	options := []durationOption{
		{Value: 30, Label: "30 days"},
		{Value: 45, Label: "45 days"},
		{Value: 60, Label: "60 days"},
		{Value: 90, Label: "90 days"},
		{Value: 120, Label: "120 days"},
		{Value: 180, Label: "180 days"},
	}
	for i := range options {
		options[i].Selected = options[i].Value == selected
	}
	return options
}

func (app *application) settingsTemplateData(r *http.Request, settings coach.Settings, started bool) settingsTemplateData {
	data := settingsTemplateData{
		BaseTemplateData:   app.newBaseTemplateData(r),
		Started:            started,
		ProgramDays:        settings.ProgramDays,
		DurationOptions:    programDurationOptions(settings.ProgramDays),
		DailyCalorieTarget: settings.DailyCalorieTarget,
		ProteinTarget:      settings.ProteinTarget,
		StepTarget:         settings.StepTarget,
		WaterTarget:        settings.WaterTarget,
		GoalKg:             formatFloat(settings.GoalKg),
	}
	if !settings.StartDate.IsZero() {
		data.StartDate = settings.StartDate.Format(time.DateOnly)
	}
	return data
}

func (app *application) settingsGET(w http.ResponseWriter, r *http.Request) {
	settings, started, err := app.coachService.Settings(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.render(w, r, http.StatusOK, "settings", app.settingsTemplateData(r, settings, started))
}

// settingsPatchFromForm builds a partial settings update from submitted form
// fields. Empty fields are left out of the patch.
func settingsPatchFromForm(r *http.Request) (coach.SettingsPatch, error) {
	var (
		patch coach.SettingsPatch
		ok    bool
	)
	if rawDate := r.Form.Get("start_date"); rawDate != "" {
		date, err := time.Parse(time.DateOnly, rawDate)
		if err != nil {
			return patch, fmt.Errorf("the start date is not valid")
		}
		patch.StartDate = &date
	}
	if patch.ProgramDays, ok = parseOptionalInt(r, "program_days"); !ok {
		return patch, fmt.Errorf("program length must be a whole number")
	}
	if patch.DailyCalorieTarget, ok = parseOptionalInt(r, "calorie_target"); !ok {
		return patch, fmt.Errorf("calorie target must be a whole number")
	}
	if patch.ProteinTarget, ok = parseOptionalInt(r, "protein_target"); !ok {
		return patch, fmt.Errorf("protein target must be a whole number")
	}
	if patch.StepTarget, ok = parseOptionalInt(r, "step_target"); !ok {
		return patch, fmt.Errorf("step target must be a whole number")
	}
	if patch.WaterTarget, ok = parseOptionalInt(r, "water_target"); !ok {
		return patch, fmt.Errorf("water target must be a whole number")
	}
	if patch.GoalKg, ok = parseOptionalFloat(r, "goal_kg"); !ok {
		return patch, fmt.Errorf("goal weight loss must be a number")
	}
	return patch, nil
}

func (app *application) settingsPOST(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.serverError(w, r, fmt.Errorf("parse form: %w", err))
		return
	}

	patch, err := settingsPatchFromForm(r)
	if err != nil {
		app.renderSettingsError(w, r, err.Error())
		return
	}

	if _, err = app.coachService.SaveSettings(r.Context(), patch); err != nil {
		if errors.Is(err, coach.ErrValidation) {
			app.renderSettingsError(w, r, "Some values are outside the accepted range.")
			return
		}
		app.serverError(w, r, fmt.Errorf("save settings: %w", err))
		return
	}

	app.flash(r, "Settings saved.")
	redirect(w, r, "/settings")
}

// renderSettingsError re-renders the settings form with a validation message.
// Stored settings are shown again since a rejected patch was never applied.
func (app *application) renderSettingsError(w http.ResponseWriter, r *http.Request, message string) {
	settings, started, err := app.coachService.Settings(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := app.settingsTemplateData(r, settings, started)
	data.Error = message
	app.render(w, r, http.StatusUnprocessableEntity, "settings", data)
}

func (app *application) programStartPOST(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.serverError(w, r, fmt.Errorf("parse form: %w", err))
		return
	}

	var start *time.Time
	if rawDate := r.Form.Get("start_date"); rawDate != "" {
		date, err := time.Parse(time.DateOnly, rawDate)
		if err != nil {
			app.renderSettingsError(w, r, "The start date is not valid.")
			return
		}
		start = &date
	}

	if err := app.coachService.StartProgram(r.Context(), start); err != nil {
		app.serverError(w, r, fmt.Errorf("start program: %w", err))
		return
	}

	app.flash(r, "Program started.")
	redirect(w, r, "/")
}

func (app *application) programResetPOST(w http.ResponseWriter, r *http.Request) {
	if err := app.coachService.ResetAll(r.Context()); err != nil {
		app.serverError(w, r, fmt.Errorf("reset program: %w", err))
		return
	}

	app.flash(r, "Program reset.")
	redirect(w, r, "/settings")
}

func (app *application) exportDataGET(w http.ResponseWriter, r *http.Request) {
	snapshot, err := app.coachService.ExportSnapshot(r.Context())
	if err != nil {
		app.serverError(w, r, fmt.Errorf("export snapshot: %w", err))
		return
	}

	filename := fmt.Sprintf("weight-coach-%s.json", coach.Today().Format(time.DateOnly))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err = encoder.Encode(snapshot); err != nil {
		app.serverError(w, r, fmt.Errorf("encode snapshot: %w", err))
		return
	}
}

func (app *application) importDataPOST(w http.ResponseWriter, r *http.Request) {
	// Snapshots are small. The limit only guards against runaway uploads.
	const maxImportSize = 4 * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	if err := r.ParseForm(); err != nil {
		app.serverError(w, r, fmt.Errorf("parse form: %w", err))
		return
	}

	payload := r.Form.Get("snapshot")
	if payload == "" {
		app.renderSettingsError(w, r, "Paste an exported snapshot first.")
		return
	}

	var snapshot coach.Snapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		app.renderSettingsError(w, r, "The snapshot is not valid JSON.")
		return
	}

	if err := app.coachService.ImportSnapshot(r.Context(), snapshot); err != nil {
		app.serverError(w, r, fmt.Errorf("import snapshot: %w", err))
		return
	}

	app.flash(r, "Data imported.")
	redirect(w, r, "/")
}
