package editor

import "fmt"

// Action is a toolbar button: markup placed before and after the selection.
type Action struct {
	Name   string
	Before string
	After  string
}

// Toolbar actions.
var (
	Bold   = Action{Name: "bold", Before: "'''", After: "'''"}
	Italic = Action{Name: "italic", Before: "''", After: "''"}
	H2     = Action{Name: "h2", Before: "<h2 class='wiki-h2'>", After: "</h2>"}
	H3     = Action{Name: "h3", Before: "<h3 class='wiki-h3'>", After: "</h3>"}
	List   = Action{Name: "list", Before: "<ul class='list-disc ml-6'>\n  <li>", After: "</li>\n</ul>"}
)

// Actions lists the toolbar in display order.
var Actions = []Action{Bold, Italic, H2, H3, List}

// ActionByName looks up a toolbar action.
func ActionByName(name string) (Action, error) {
	for _, a := range Actions {
		if a.Name == name {
			return a, nil
		}
	}
	return Action{}, fmt.Errorf("unknown toolbar action %q", name)
}

// Apply runs the action against b.
func (a Action) Apply(b *Buffer) {
	b.Insert(a.Before, a.After)
}
