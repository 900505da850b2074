package components

import (
	"bytes"
	"fmt"
	"strings"
)

const templatePrefix = "templates/components/"

// NewDefaultRegistry constructs a registry holding one component per editor
// field kind.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(NameText, Descriptor{
		Renderer: templateComponentRenderer("fields.text", templatePrefix+"text"),
	})
	registry.MustRegister(NameNumber, Descriptor{
		Renderer: templateComponentRenderer("fields.number", templatePrefix+"number"),
	})
	registry.MustRegister(NameSelect, Descriptor{
		Renderer: templateComponentRenderer("fields.select", templatePrefix+"select"),
	})
	registry.MustRegister(NameLookup, Descriptor{
		Renderer: lookupRenderer(),
	})
	registry.MustRegister(NameProperties, propertiesDescriptor())

	return registry
}

func templateComponentRenderer(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, field Field, data ComponentData) error {
		return renderPartial(buf, partialKey, templateName, data, map[string]any{
			"field": field,
		})
	}
}

// lookupRenderer keeps the current value selectable even when the lookup
// source does not list it, so an unknown stored value survives a save.
func lookupRenderer() Renderer {
	return func(buf *bytes.Buffer, field Field, data ComponentData) error {
		found := field.Value == ""
		choices := make([]Choice, 0, len(field.Choices)+1)
		for _, choice := range field.Choices {
			choice.Selected = choice.Value == field.Value
			found = found || choice.Selected
			choices = append(choices, choice)
		}
		if !found {
			choices = append([]Choice{{Value: field.Value, Label: field.Value, Selected: true}}, choices...)
		}
		field.Choices = choices
		return renderPartial(buf, "fields.lookup", templatePrefix+"lookup", data, map[string]any{
			"field":  field,
			"remote": len(field.Choices) == 0 || (!found && len(field.Choices) == 1),
		})
	}
}

func renderPartial(buf *bytes.Buffer, partialKey, templateName string, data ComponentData, payload map[string]any) error {
	if data.Template == nil {
		return fmt.Errorf("components: template renderer not configured for %q", templateName)
	}
	resolved := templateName
	if data.ThemePartials != nil {
		if candidate := strings.TrimSpace(data.ThemePartials[partialKey]); candidate != "" {
			resolved = candidate
		}
	}
	rendered, err := data.Template.RenderTemplate(resolved, payload)
	if err != nil {
		return fmt.Errorf("components: render template %q: %w", resolved, err)
	}
	buf.WriteString(rendered)
	return nil
}
