package components

import (
	"bytes"
	"encoding/json"
	"strings"
)

// propertiesInlineScript flags properties editors holding invalid JSON while
// the user types.
const propertiesInlineScript = `document.addEventListener("input",function(e){var t=e.target;if(!t||!t.matches||!t.matches("textarea[data-og-properties]"))return;var ok=true;try{var v=JSON.parse(t.value||"{}");ok=v!==null&&typeof v==="object"&&!Array.isArray(v)}catch(_){ok=false}t.toggleAttribute("aria-invalid",!ok);t.dataset.ogValid=ok?"true":"false"});`

func propertiesDescriptor() Descriptor {
	return Descriptor{
		Renderer: propertiesRenderer,
		Scripts:  []Script{{Inline: propertiesInlineScript, Defer: true}},
	}
}

func propertiesRenderer(buf *bytes.Buffer, field Field, data ComponentData) error {
	value, valid := PropertiesValue(field.Value)
	return renderPartial(buf, "fields.properties", templatePrefix+"properties", data, map[string]any{
		"field": field,
		"value": value,
		"valid": valid,
		"rows":  strings.Count(value, "\n") + 1,
	})
}

// PropertiesValue pretty prints a JSON object for editing. Blank input
// becomes "{}"; input that is not a JSON object is returned unchanged and
// reported invalid.
func PropertiesValue(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return "{}", true
	}
	var probe map[string]any
	if err := json.Unmarshal([]byte(trimmed), &probe); err != nil {
		return raw, false
	}
	var out bytes.Buffer
	if err := json.Indent(&out, []byte(trimmed), "", "  "); err != nil {
		return raw, false
	}
	return out.String(), true
}
