package render

// DialogMode tells the host why a row dialog is open.
type DialogMode string

const (
	DialogAddRow  DialogMode = "add"
	DialogEditRow DialogMode = "edit"
)

// Dialog is an open row editor. Node is the row being drafted; its values
// are the draft, not the committed state.
type Dialog struct {
	Mode       DialogMode `json:"mode"`
	Collection string     `json:"collection"`
	Index      int        `json:"index"`
	Title      string     `json:"title,omitempty"`
	Node       Node       `json:"node"`
}

// View is what a host redraws after each accepted action.
type View struct {
	Root   Node    `json:"root"`
	Dialog *Dialog `json:"dialog,omitempty"`
}
