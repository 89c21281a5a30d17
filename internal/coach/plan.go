package coach

import "time"

// daysPerCycle is the length of the repeating focus/workout template.
const daysPerCycle = 7

// focusTemplate maps day-of-cycle to the session focus label.
var focusTemplate = [daysPerCycle]string{ //nolint:gochecknoglobals // fixed template table.
	"Upper Strength",
	"Cardio 30-45m",
	"Lower Strength",
	"HIIT 15-20m",
	"Full-Body Strength",
	"Cardio + Core",
	"Rest / Mobility",
}

// workoutTemplate maps day-of-cycle to the literal exercise prescription.
var workoutTemplate = [daysPerCycle]string{ //nolint:gochecknoglobals // fixed template table.
	"Push-ups 3x12 • Rows 3x12 • Shoulder press 3x12 • Plank 3x30s",
	"Brisk walk/jog 30-45m. Optional cycling/jump rope 10-15m.",
	"Squats 3x15 • Lunges 3x12/leg • Glute bridge 3x15 • Side planks 3x30s",
	"EMOM 10-15m: 30s burpees, 30s rest, alt with squat jumps/push-ups.",
	"Deadlifts (light) 3x12 • Push-ups 3x12 • Mountain climbers 3x20 • Plank 3x45s",
	"Cardio 40m + Core: crunches 3x20 • leg raises 3x12 • plank 3x45s",
	"Stretching 15-20m or a 20m easy walk.",
}

// GeneratePlan expands a start date and duration into consecutive daily plan
// entries following the repeating seven-day template.
//
// A zero start date falls back to today so that corrupt persisted state never
// produces an empty plan. The function is pure apart from that clock read.
func GeneratePlan(start time.Time, days int) []PlanEntry {
	if start.IsZero() {
		start = time.Now()
	}
	start = normalizeDate(start)

	plan := make([]PlanEntry, 0, max(days, 0))
	for i := range days {
		plan = append(plan, PlanEntry{
			Date:    start.AddDate(0, 0, i),
			Focus:   focusTemplate[i%daysPerCycle],
			Workout: workoutTemplate[i%daysPerCycle],
			Notes:   "",
		})
	}
	return plan
}
