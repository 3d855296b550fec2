package models

// Wire column names for daily_logs, shared by the change tracker and the
// raw-record codec. This is the explicit schema mapping: one constant per
// column, no struct-tag reflection on the sync path.
const (
	ColumnID            = "id"
	ColumnDate          = "date"
	ColumnBleedingFlow  = "bleeding_flow"
	ColumnBleedingColor = "bleeding_color"
	ColumnMoods         = "moods_json"
	ColumnSymptoms      = "symptoms_json"
	ColumnCravings      = "cravings_json"
	ColumnExercise      = "exercise_json"
	ColumnWorkLoad      = "work_load"
	ColumnSleepHours    = "sleep_hours"
	ColumnSleepQuality  = "sleep_quality"
	ColumnWeight        = "weight"
	ColumnBirthControl  = "birth_control"
	ColumnSmoke         = "smoke"
	ColumnAlcohol       = "alcohol"
	ColumnCreatedAt     = "created_at"
	ColumnUpdatedAt     = "updated_at"
)

// TrackedColumns lists every column recorded in a change set, in wire order.
var TrackedColumns = []string{
	ColumnDate,
	ColumnBleedingFlow,
	ColumnBleedingColor,
	ColumnMoods,
	ColumnSymptoms,
	ColumnCravings,
	ColumnExercise,
	ColumnWorkLoad,
	ColumnSleepHours,
	ColumnSleepQuality,
	ColumnWeight,
	ColumnBirthControl,
	ColumnSmoke,
	ColumnAlcohol,
}
