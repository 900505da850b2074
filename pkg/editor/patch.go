package editor

// Op is a DOM patch operation.
type Op string

const (
	OpAppend     Op = "append"
	OpRemove     Op = "remove"
	OpShow       Op = "show"
	OpHide       Op = "hide"
	OpText       Op = "text"
	OpActivate   Op = "activate"
	OpDeactivate Op = "deactivate"
)

// Patch is one incremental DOM change. For OpAppend, Target is the container
// and Block the new child to render; every other op addresses Target itself.
type Patch struct {
	Op     Op     `json:"op"`
	Target string `json:"target"`
	Text   string `json:"text,omitempty"`
	Block  *Block `json:"-"`
}

// Event is a user interaction forwarded from the page.
type Event struct {
	Block  string `json:"block"`
	Action Action `json:"action"`
	Value  string `json:"value,omitempty"`
}
