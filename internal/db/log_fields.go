package db

import "github.com/terraincognita07/selene/internal/models"

// LogFields is a partial update: only non-nil fields are applied. The
// nested groups (bleeding, sleep, exercise) merge shallowly into the
// current record, they never replace the whole group.
type LogFields struct {
	Bleeding     *BleedingFields
	Moods        *[]string
	Symptoms     *[]string
	Cravings     *[]string
	Exercise     *ExerciseFields
	WorkLoad     *string
	Sleep        *SleepFields
	Weight       *float64
	BirthControl *bool
	Smoke        *bool
	Alcohol      *bool
}

type BleedingFields struct {
	Flow  *string
	Color *string
}

type SleepFields struct {
	Hours   *float64
	Quality *string
}

type ExerciseFields struct {
	Types     *[]string
	StepCount *int
}

// applyFields mutates entry in place and reports the wire columns that
// were written, in catalog order per group.
func applyFields(entry *models.DailyLog, fields LogFields) []string {
	changed := make([]string, 0, 4)

	if fields.Bleeding != nil {
		if fields.Bleeding.Flow != nil {
			entry.BleedingFlow = fields.Bleeding.Flow
			changed = append(changed, models.ColumnBleedingFlow)
		}
		if fields.Bleeding.Color != nil {
			entry.BleedingColor = fields.Bleeding.Color
			changed = append(changed, models.ColumnBleedingColor)
		}
	}
	if fields.Moods != nil {
		entry.Moods = *fields.Moods
		changed = append(changed, models.ColumnMoods)
	}
	if fields.Symptoms != nil {
		entry.Symptoms = *fields.Symptoms
		changed = append(changed, models.ColumnSymptoms)
	}
	if fields.Cravings != nil {
		entry.Cravings = *fields.Cravings
		changed = append(changed, models.ColumnCravings)
	}
	if fields.Exercise != nil {
		merged := models.Exercise{}
		if entry.Exercise != nil {
			merged = *entry.Exercise
		}
		if fields.Exercise.Types != nil {
			merged.Types = *fields.Exercise.Types
		}
		if fields.Exercise.StepCount != nil {
			merged.StepCount = fields.Exercise.StepCount
		}
		entry.Exercise = &merged
		changed = append(changed, models.ColumnExercise)
	}
	if fields.WorkLoad != nil {
		entry.WorkLoad = fields.WorkLoad
		changed = append(changed, models.ColumnWorkLoad)
	}
	if fields.Sleep != nil {
		if fields.Sleep.Hours != nil {
			entry.SleepHours = fields.Sleep.Hours
			changed = append(changed, models.ColumnSleepHours)
		}
		if fields.Sleep.Quality != nil {
			entry.SleepQuality = fields.Sleep.Quality
			changed = append(changed, models.ColumnSleepQuality)
		}
	}
	if fields.Weight != nil {
		entry.Weight = fields.Weight
		changed = append(changed, models.ColumnWeight)
	}
	if fields.BirthControl != nil {
		entry.BirthControl = *fields.BirthControl
		changed = append(changed, models.ColumnBirthControl)
	}
	if fields.Smoke != nil {
		entry.Smoke = *fields.Smoke
		changed = append(changed, models.ColumnSmoke)
	}
	if fields.Alcohol != nil {
		entry.Alcohol = *fields.Alcohol
		changed = append(changed, models.ColumnAlcohol)
	}

	return changed
}

// mergeChangedColumns unions added into existing, keeping first-seen order.
func mergeChangedColumns(existing []string, added []string) []string {
	merged := make([]string, 0, len(existing)+len(added))
	seen := make(map[string]struct{}, len(existing)+len(added))
	for _, column := range existing {
		if _, exists := seen[column]; exists {
			continue
		}
		seen[column] = struct{}{}
		merged = append(merged, column)
	}
	for _, column := range added {
		if _, exists := seen[column]; exists {
			continue
		}
		seen[column] = struct{}{}
		merged = append(merged, column)
	}
	return merged
}
