package render

import (
	"fmt"
	"strconv"
	"strings"
)

// Names of the chrome fields posted with every editor form. The editor
// ignores submitted keys starting with "_".
const (
	FieldConfigID   = "_id"
	FieldConfigName = "_name"
	FieldVersion    = "_version"
)

// HiddenField represents a hidden form input emitted alongside the visible
// controls.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// VersionField constructs the hidden field used to detect concurrent edits of
// a stored configuration.
func VersionField(version any) HiddenField {
	return Hidden(FieldVersion, version)
}

// ChromeFields returns the hidden fields identifying the edited
// configuration. A zero version is omitted.
func ChromeFields(id, name string, version int64) []HiddenField {
	fields := []HiddenField{Hidden(FieldConfigID, id), Hidden(FieldConfigName, name)}
	if version > 0 {
		fields = append(fields, VersionField(version))
	}
	return fields
}

// Chrome is the decoded form of ChromeFields.
type Chrome struct {
	ID      string
	Name    string
	Version int64
}

// ReadChrome extracts chrome values from a submission. A malformed version
// reads as zero.
func ReadChrome(values map[string]string) Chrome {
	c := Chrome{
		ID:   strings.TrimSpace(values[FieldConfigID]),
		Name: strings.TrimSpace(values[FieldConfigName]),
	}
	if raw := strings.TrimSpace(values[FieldVersion]); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			c.Version = v
		}
	}
	return c
}
