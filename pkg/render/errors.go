package render

import (
	"errors"
	"strconv"
	"strings"

	"github.com/goliatone/go-viewdef/pkg/document"
	"github.com/goliatone/go-viewdef/pkg/document/schema"
	"github.com/goliatone/go-viewdef/pkg/editor"
)

// ErrorMapping splits an error payload into field-level messages keyed by
// submission name and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload attaches messages to the fields of form. Keys may be dotted
// paths or JSON pointers, optionally wrapped in a response envelope
// ("data", "body"). Indices are read against the compacted document, the
// one the service validated, and translated back to the slots of the
// still-sparse form. Keys that match no field become form-level messages.
func MapErrorPayload(form *editor.Form, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 {
		return mapping
	}

	var doc *document.Document
	names := make(map[string]struct{})
	if form != nil {
		doc = form.Document()
		for name := range form.Values() {
			names[name] = struct{}{}
		}
	}

	for raw, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		name, ok := mapErrorPath(raw, doc, names)
		if !ok {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[name] = append(mapping.Fields[name], normalized...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, doc *document.Document, names map[string]struct{}) (string, bool) {
	if isFormLevelKey(raw) {
		return "", false
	}
	segments := dropWrapperSegments(parsePathSegments(raw))
	if len(segments) == 0 {
		return "", false
	}
	segments = sparseSegments(doc, segments)
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := names[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimLeft(clean, "#$./")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	for len(segments) > 0 {
		switch strings.ToLower(segments[0]) {
		case "body", "request", "payload", "data":
			segments = segments[1:]
		default:
			return segments
		}
	}
	return segments
}

// sparseSegments rewrites compacted list indices into slot indices of doc.
func sparseSegments(doc *document.Document, segments []string) []string {
	if doc == nil || len(segments) < 2 || segments[0] != document.FieldCalculationSets {
		return segments
	}
	out := append([]string(nil), segments...)

	setIdx, set, ok := nthPresent(doc.CalculationSets, out[1])
	if !ok {
		return out
	}
	out[1] = strconv.Itoa(setIdx)
	if len(out) < 4 || out[2] != document.FieldColumns {
		return out
	}

	colIdx, col, ok := nthPresent(set.Columns, out[3])
	if !ok {
		return out
	}
	out[3] = strconv.Itoa(colIdx)
	if len(out) < 6 || out[4] != document.FieldRequirements {
		return out
	}

	if reqIdx, _, ok := nthPresent(col.Requirements, out[5]); ok {
		out[5] = strconv.Itoa(reqIdx)
	}
	return out
}

func nthPresent[T any](list document.List[T], raw string) (int, *T, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, nil, false
	}
	seen := 0
	for idx, item := range list.All() {
		if seen == n {
			return idx, item, true
		}
		seen++
	}
	return 0, nil, false
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors":
		return true
	default:
		return false
	}
}

// IssuePayload groups the schema issues carried by err by field path, with
// issues that name no field under "form". It returns nil for other errors.
func IssuePayload(err error) map[string][]string {
	var verr *schema.ValidationError
	if !errors.As(err, &verr) || len(verr.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string, len(verr.Issues))
	for _, issue := range verr.Issues {
		key := issue.Field
		if key == "" {
			key = "form"
		}
		out[key] = append(out[key], issue.Message)
	}
	return out
}
