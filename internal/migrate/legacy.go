package migrate

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
)

// legacySettings converts the flat v1 settings file
//
//	auto_start = true
//	show_console = false
//	custom_status_template = "..."
//
// into the sectioned v2 layout. Keys it does not know are kept as they are.
var legacySettings = Migration{
	Version:     2,
	Description: "move flat legacy settings into sections",
	Upgrade:     upgradeLegacySettings,
}

func upgradeLegacySettings(data []byte) ([]byte, error) {
	doc := map[string]any{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse v1 settings: %w", err)
	}

	behavior := section(doc, "behavior")
	for _, key := range []string{"auto_start", "show_console"} {
		if v, ok := doc[key]; ok {
			behavior[key] = v
			delete(doc, key)
		}
	}

	if v, ok := doc["custom_status_template"]; ok {
		if tmpl, isString := v.(string); isString && tmpl != "" {
			player := section(section(doc, "display"), "player")
			player["state"] = tmpl
		}
		delete(doc, "custom_status_template")
	}

	if len(behavior) == 0 {
		delete(doc, "behavior")
	}
	doc["version"] = 2

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("encode v2 settings: %w", err)
	}
	return buf.Bytes(), nil
}

// section returns doc[name] as a table, creating it if absent.
func section(doc map[string]any, name string) map[string]any {
	if t, ok := doc[name].(map[string]any); ok {
		return t
	}
	t := map[string]any{}
	doc[name] = t
	return t
}
