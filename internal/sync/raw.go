package sync

import (
	"fmt"

	"github.com/terraincognita07/selene/internal/models"
)

// RawRecord is the flat wire shape of one daily log: one key per column
// from the catalog in models, snake_case, numeric timestamps in
// milliseconds.
type RawRecord map[string]any

func ToRaw(entry models.DailyLog) RawRecord {
	raw := RawRecord{
		models.ColumnID:           entry.ID,
		models.ColumnDate:         entry.Date,
		models.ColumnBirthControl: entry.BirthControl,
		models.ColumnSmoke:        entry.Smoke,
		models.ColumnAlcohol:      entry.Alcohol,
		models.ColumnCreatedAt:    entry.CreatedAt,
		models.ColumnUpdatedAt:    entry.UpdatedAt,
	}
	if entry.BleedingFlow != nil {
		raw[models.ColumnBleedingFlow] = *entry.BleedingFlow
	}
	if entry.BleedingColor != nil {
		raw[models.ColumnBleedingColor] = *entry.BleedingColor
	}
	if entry.Moods != nil {
		raw[models.ColumnMoods] = entry.Moods
	}
	if entry.Symptoms != nil {
		raw[models.ColumnSymptoms] = entry.Symptoms
	}
	if entry.Cravings != nil {
		raw[models.ColumnCravings] = entry.Cravings
	}
	if entry.Exercise != nil {
		exercise := map[string]any{"types": entry.Exercise.Types}
		if entry.Exercise.StepCount != nil {
			exercise["stepCount"] = *entry.Exercise.StepCount
		}
		raw[models.ColumnExercise] = exercise
	}
	if entry.WorkLoad != nil {
		raw[models.ColumnWorkLoad] = *entry.WorkLoad
	}
	if entry.SleepHours != nil {
		raw[models.ColumnSleepHours] = *entry.SleepHours
	}
	if entry.SleepQuality != nil {
		raw[models.ColumnSleepQuality] = *entry.SleepQuality
	}
	if entry.Weight != nil {
		raw[models.ColumnWeight] = *entry.Weight
	}
	return raw
}

func FromRaw(raw RawRecord) (models.DailyLog, error) {
	id := stringValue(raw[models.ColumnID])
	if id == "" {
		return models.DailyLog{}, fmt.Errorf("raw record has no id: %v", raw)
	}
	date := stringValue(raw[models.ColumnDate])
	if date == "" {
		return models.DailyLog{}, fmt.Errorf("raw record %s has no date", id)
	}

	entry := models.DailyLog{
		ID:            id,
		Date:          date,
		BleedingFlow:  optionalString(raw[models.ColumnBleedingFlow]),
		BleedingColor: optionalString(raw[models.ColumnBleedingColor]),
		Moods:         stringSlice(raw[models.ColumnMoods]),
		Symptoms:      stringSlice(raw[models.ColumnSymptoms]),
		Cravings:      stringSlice(raw[models.ColumnCravings]),
		Exercise:      exerciseValue(raw[models.ColumnExercise]),
		WorkLoad:      optionalString(raw[models.ColumnWorkLoad]),
		SleepHours:    optionalNumber(raw[models.ColumnSleepHours]),
		SleepQuality:  optionalString(raw[models.ColumnSleepQuality]),
		Weight:        optionalNumber(raw[models.ColumnWeight]),
		BirthControl:  boolValue(raw[models.ColumnBirthControl]),
		Smoke:         boolValue(raw[models.ColumnSmoke]),
		Alcohol:       boolValue(raw[models.ColumnAlcohol]),
		CreatedAt:     timestampValue(raw[models.ColumnCreatedAt]),
		UpdatedAt:     timestampValue(raw[models.ColumnUpdatedAt]),
	}
	return entry, nil
}

func stringValue(value any) string {
	text, _ := value.(string)
	return text
}

func optionalString(value any) *string {
	text, ok := value.(string)
	if !ok {
		return nil
	}
	return &text
}

func optionalNumber(value any) *float64 {
	switch number := value.(type) {
	case float64:
		return &number
	case int64:
		converted := float64(number)
		return &converted
	case int:
		converted := float64(number)
		return &converted
	default:
		return nil
	}
}

func boolValue(value any) bool {
	flag, _ := value.(bool)
	return flag
}

func timestampValue(value any) int64 {
	switch number := value.(type) {
	case int64:
		return number
	case float64:
		return int64(number)
	case int:
		return int64(number)
	default:
		return 0
	}
}

func stringSlice(value any) []string {
	switch items := value.(type) {
	case []string:
		return items
	case []any:
		texts := make([]string, 0, len(items))
		for _, item := range items {
			if text, ok := item.(string); ok {
				texts = append(texts, text)
			}
		}
		return texts
	default:
		return nil
	}
}

func exerciseValue(value any) *models.Exercise {
	switch blob := value.(type) {
	case map[string]any:
		exercise := models.Exercise{Types: stringSlice(blob["types"])}
		if steps := optionalNumber(blob["stepCount"]); steps != nil {
			count := int(*steps)
			exercise.StepCount = &count
		}
		return &exercise
	default:
		return nil
	}
}
