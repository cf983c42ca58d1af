package models

// Setting value types. Values are stored as text and coerced on read.
const (
	SettingString  = "string"
	SettingNumber  = "number"
	SettingBoolean = "boolean"
	SettingJSON    = "json"
)

// Setting is one settings row, keyed by (category, key).
type Setting struct {
	Category    string      `json:"category"`
	Key         string      `json:"key"`
	Value       interface{} `json:"value"`
	ValueType   string      `json:"value_type"`
	Description *string     `json:"description"`
}

// SettingValue is the per-key body inside SettingsTree.
type SettingValue struct {
	Value       interface{} `json:"value"`
	ValueType   string      `json:"value_type"`
	Description *string     `json:"description"`
}

// SettingsTree is the GET /admin-api/settings payload:
// category -> key -> setting value.
type SettingsTree map[string]map[string]SettingValue
