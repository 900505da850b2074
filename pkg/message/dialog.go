package message

import "errors"

// DialogType selects the dialog flavour.
type DialogType string

const (
	DialogError   DialogType = "error"
	DialogConfirm DialogType = "confirm"
	DialogInput   DialogType = "input"
)

// ErrNoDialog is returned when a dialog field is read with no dialog open.
var ErrNoDialog = errors.New("message: no dialog open")

// DialogField is an input of an input dialog.
type DialogField struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	ID    string `json:"id"`
	Value string `json:"value,omitempty"`
}

// Dialog is a modal shown over the page. Buttons name the actions offered,
// each posted back as Action.
type Dialog struct {
	Type    DialogType    `json:"type"`
	Title   string        `json:"title,omitempty"`
	Message string        `json:"message,omitempty"`
	HTML    string        `json:"html,omitempty"`
	Fields  []DialogField `json:"fields,omitempty"`
	Buttons []string      `json:"buttons,omitempty"`
	// Action is the form action the dialog buttons submit to.
	Action string `json:"action,omitempty"`
}

// Open replaces the current dialog.
func (c *Center) Open(d Dialog) {
	d.HTML = Sanitize(d.HTML)
	d.Fields = append([]DialogField(nil), d.Fields...)
	d.Buttons = append([]string(nil), d.Buttons...)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialog = &d
}

// Error opens an error dialog carrying msg.
func (c *Center) Error(msg string) {
	c.Open(Dialog{Type: DialogError, Title: "Error", Message: msg, Buttons: []string{"Ok"}})
}

// Dialog returns the open dialog.
func (c *Center) Dialog() (Dialog, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.dialog == nil {
		return Dialog{}, false
	}
	return *c.dialog, true
}

// CloseDialog dismisses the open dialog.
func (c *Center) CloseDialog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialog = nil
}

// FieldValue reads a field of the open input dialog.
func (c *Center) FieldValue(id string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.dialog == nil {
		return "", ErrNoDialog
	}
	for _, field := range c.dialog.Fields {
		if field.ID == id {
			return field.Value, nil
		}
	}
	return "", nil
}
