package domain

import "github.com/google/uuid"

// Labels written into revision and discussion entries.
const (
	AnonymousLabel = "익명 사용자"
	SystemLabel    = "System"
)

// Identity is an opaque session identity supplied by the identity provider.
type Identity struct {
	Subject     uuid.UUID
	IsAnonymous bool
}

// DisplayName chooses the label stored with a write. Authenticated
// sessions share one fixed label.
func (i Identity) DisplayName(authenticatedLabel string) string {
	if i.IsAnonymous {
		return AnonymousLabel
	}
	return authenticatedLabel
}
