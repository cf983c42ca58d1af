// Package settings defines the typed configuration schema behind the
// admin settings editor. Values are stored as text rows and coerced to
// their declared type on the way out.
package settings

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/toozhub/toozhub/internal/models"
)

// Field declares one known setting: its type, default and description.
type Field struct {
	Category    string
	Key         string
	Type        string
	Default     string
	Description string
}

// Schema lists every known setting. Each key's type is declared here rather
// than guessed from the key name, so adding a setting means adding a row.
var Schema = []Field{
	{"general", "app_name", models.SettingString, "TooZ Hub", "Application display name"},
	{"general", "default_language", models.SettingString, "en", "Default UI language code"},
	{"general", "timezone", models.SettingString, "Europe/Prague", "Display timezone"},

	{"security", "session_hours", models.SettingNumber, "24", "Login session lifetime in hours"},
	{"security", "min_password_length", models.SettingNumber, "8", "Minimum password length"},
	{"security", "login_rate_per_minute", models.SettingNumber, "10", "Allowed login attempts per IP per minute"},
	{"security", "require_strong_passwords", models.SettingBoolean, "false", "Require mixed-case and digit passwords"},

	{"database", "backup_enabled", models.SettingBoolean, "true", "Run scheduled database backups"},
	{"database", "backup_cron", models.SettingString, "0 3 * * *", "Backup schedule (cron expression)"},
	{"database", "retention_days", models.SettingNumber, "30", "Days to keep audit entries"},

	{"server", "maintenance_mode", models.SettingBoolean, "false", "Reject non-admin traffic"},
	{"server", "request_body_limit_kb", models.SettingNumber, "1024", "Maximum request body size in KiB"},

	{"email", "smtp_host", models.SettingString, "", "SMTP relay host"},
	{"email", "smtp_port", models.SettingNumber, "587", "SMTP relay port"},
	{"email", "from_address", models.SettingString, "noreply@toozhub.example", "Sender address for notifications"},
	{"email", "notifications_enabled", models.SettingBoolean, "false", "Send reminder emails"},

	{"logging", "level", models.SettingString, "info", "Log level (debug, info, warn, error)"},
	{"logging", "format", models.SettingString, "json", "Log output format (json or text)"},

	{"ui", "items_per_page", models.SettingNumber, "20", "Default page size in list views"},
	{"ui", "theme", models.SettingString, "light", "Dashboard color theme"},
	{"ui", "show_vehicle_photos", models.SettingBoolean, "true", "Show vehicle photos in lists"},

	{"api", "cors_allowed_origins", models.SettingJSON, `[]`, "Extra CORS origins as a JSON array"},
	{"api", "rate_limit_per_minute", models.SettingNumber, "120", "API requests per IP per minute"},

	{"system", "reminder_sweep_cron", models.SettingString, "@every 1h", "Due-reminder sweep schedule"},
	{"system", "audit_source_project", models.SettingString, "TOOZ_HUB_2", "Tag written to audit entries"},
}

// Lookup returns the schema field for (category, key), or false.
func Lookup(category, key string) (Field, bool) {
	for _, f := range Schema {
		if f.Category == category && f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Coerce converts a stored text value to its typed form.
func Coerce(valueType, raw string) (interface{}, error) {
	switch valueType {
	case models.SettingNumber:
		if raw == "" {
			return 0, nil
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", raw)
		}
		return n, nil
	case models.SettingBoolean:
		if raw == "" {
			return false, nil
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("not a boolean: %q", raw)
		}
		return b, nil
	case models.SettingJSON:
		if raw == "" {
			return nil, nil
		}
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
		return v, nil
	default:
		return raw, nil
	}
}

// Encode converts a client-supplied value to its stored text form,
// validating it against the declared type.
func Encode(valueType string, value interface{}) (string, error) {
	switch valueType {
	case models.SettingNumber:
		switch n := value.(type) {
		case float64:
			return strconv.FormatFloat(n, 'f', -1, 64), nil
		case string:
			if _, err := strconv.ParseFloat(n, 64); err != nil {
				return "", fmt.Errorf("not a number: %q", n)
			}
			return n, nil
		default:
			return "", fmt.Errorf("not a number: %v", value)
		}
	case models.SettingBoolean:
		switch b := value.(type) {
		case bool:
			return strconv.FormatBool(b), nil
		case string:
			parsed, err := strconv.ParseBool(b)
			if err != nil {
				return "", fmt.Errorf("not a boolean: %q", b)
			}
			return strconv.FormatBool(parsed), nil
		default:
			return "", fmt.Errorf("not a boolean: %v", value)
		}
	case models.SettingJSON:
		// Web form and CLI send the raw JSON text. Marshalling that string
		// would double-encode it, so validate and store it untouched.
		if s, ok := value.(string); ok {
			if !json.Valid([]byte(s)) {
				return "", fmt.Errorf("invalid json: %q", s)
			}
			return s, nil
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("invalid json value: %w", err)
		}
		return string(raw), nil
	default:
		s, ok := value.(string)
		if !ok {
			return "", fmt.Errorf("not a string: %v", value)
		}
		return s, nil
	}
}
