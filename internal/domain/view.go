package domain

// ViewMode selects which presentation component is active.
type ViewMode string

const (
	ViewHome    ViewMode = "main"
	ViewArticle ViewMode = "doc"
	ViewSearch  ViewMode = "search"
)

// IsValid returns true if the view mode is known.
func (v ViewMode) IsValid() bool {
	switch v {
	case ViewHome, ViewArticle, ViewSearch:
		return true
	}
	return false
}

// String returns the string representation of the ViewMode.
func (v ViewMode) String() string { return string(v) }
