package domain

import "time"

// Setting data types
const (
	SettingTypeString  = "string"
	SettingTypeNumber  = "number"
	SettingTypeBoolean = "boolean"
	SettingTypeJSON    = "json"
)

// SystemSetting is an admin override row; absence of a key means "use the default".
type SystemSetting struct {
	Key         string    `json:"key" db:"key"`
	Value       string    `json:"value" db:"value"`
	Description *string   `json:"description,omitempty" db:"description"`
	DataType    string    `json:"data_type" db:"data_type"`
	Category    string    `json:"category" db:"category"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	UpdatedBy   *string   `json:"updated_by,omitempty" db:"updated_by"`
}

// EffectiveSetting is what the admin panel lists: the resolved value and whether it is overridden.
type EffectiveSetting struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Default     string `json:"default"`
	Overridden  bool   `json:"overridden"`
	DataType    string `json:"data_type"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type UpdateSettingRequest struct {
	Key   string `json:"key" validate:"required,max=100"`
	Value string `json:"value" validate:"max=1000"`
}
