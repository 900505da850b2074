package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-viewdef/pkg/editor"
)

// Translator resolves message keys for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler returns the text used when key cannot be
// translated. params carries a {"default": fallback} map as its first entry.
type MissingTranslationHandler func(locale, key string, params []any, err error) string

// ErrMissingTranslator is passed to the missing handler when no Translator is
// configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Localizer translates the static texts of an editor form: block titles,
// field labels and placeholders. Tab labels are document data and are never
// translated.
type Localizer struct {
	locale     string
	translator Translator
	onMissing  MissingTranslationHandler
}

// NewLocalizer reads the locale settings of options.
func NewLocalizer(options RenderOptions) Localizer {
	return Localizer{
		locale:     options.Locale,
		translator: options.Translator,
		onMissing:  options.OnMissing,
	}
}

// Title returns the title of b. Keys take the form
// "viewdef.block.<kind>.title".
func (l Localizer) Title(b *editor.Block) string {
	if b == nil || b.Title == "" {
		return ""
	}
	return l.translate("viewdef.block."+string(b.Kind)+".title", b.Title)
}

// Label returns the label of f. Keys take the form "viewdef.field.<key>.label"
// where key is the submission name without list indices, so every
// requirement shares one key.
func (l Localizer) Label(f editor.Field) string {
	return l.translate("viewdef.field."+FieldKey(f.Name)+".label", f.Label)
}

// Placeholder returns the placeholder of f.
func (l Localizer) Placeholder(f editor.Field) string {
	if f.Placeholder == "" {
		return ""
	}
	return l.translate("viewdef.field."+FieldKey(f.Name)+".placeholder", f.Placeholder)
}

// Text translates key, falling back to fallback.
func (l Localizer) Text(key, fallback string) string {
	return l.translate(key, fallback)
}

func (l Localizer) translate(key, fallback string) string {
	if l.translator == nil {
		if l.onMissing != nil {
			return l.onMissing(l.locale, key, []any{map[string]any{"default": fallback}}, ErrMissingTranslator)
		}
		return fallback
	}

	result, err := l.translator.Translate(l.locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	if l.onMissing != nil {
		return l.onMissing(l.locale, key, []any{map[string]any{"default": fallback}}, err)
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

// FieldKey strips numeric segments from a dotted submission name.
func FieldKey(name string) string {
	parts := strings.Split(name, ".")
	out := parts[:0]
	for _, part := range parts {
		if part != "" && strings.Trim(part, "0123456789") == "" {
			continue
		}
		out = append(out, part)
	}
	return strings.Join(out, ".")
}
