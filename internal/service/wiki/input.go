package wiki

import (
	"strings"

	"github.com/binia1/hyobinwiki/internal/domain"
)

// SaveInput is a content save of one article.
type SaveInput struct {
	Title   string
	Content string
	Summary string
}

// Validate checks the save before any store call.
func (i SaveInput) Validate() error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.Title) == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "required"})
	}
	if strings.TrimSpace(i.Content) == "" {
		errs = append(errs, domain.FieldError{Field: "content", Message: EmptyContentMessage})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// PostInput is a new discussion message on one article.
type PostInput struct {
	Title   string
	Topic   string
	Message string
}

// Validate checks the post before any store call.
func (i PostInput) Validate() error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.Title) == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "required"})
	}
	if strings.TrimSpace(i.Topic) == "" {
		errs = append(errs, domain.FieldError{Field: "topic", Message: EmptyDiscussionMessage})
	}
	if strings.TrimSpace(i.Message) == "" {
		errs = append(errs, domain.FieldError{Field: "message", Message: EmptyDiscussionMessage})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
