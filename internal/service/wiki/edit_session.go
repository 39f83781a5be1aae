package wiki

import (
	"context"
	"errors"
	"fmt"

	"github.com/binia1/hyobinwiki/internal/domain"
	"github.com/binia1/hyobinwiki/internal/editor"
)

// Tab is the active pane of an article page.
type Tab string

const (
	TabRead    Tab = "read"
	TabEdit    Tab = "edit"
	TabHistory Tab = "history"
	TabDiscuss Tab = "discuss"
)

// articleSaver defines the save operation needed by an edit session.
type articleSaver interface {
	SaveArticle(ctx context.Context, input SaveInput) (domain.Article, error)
}

// EditSession is the per-page state of one article view: the active tab,
// the editor buffer and the pending revision summary.
type EditSession struct {
	saver   articleSaver
	title   string
	exists  bool
	tab     Tab
	buf     *editor.Buffer
	summary string
	notice  string
}

// NewEditSession opens title in the read tab. current is the cached record,
// if any; the buffer starts with its content.
func NewEditSession(saver articleSaver, title string, current *domain.Article) *EditSession {
	e := &EditSession{saver: saver, buf: editor.NewBuffer("")}
	e.Open(title, current)
	return e
}

// Open resets the session for another article.
func (e *EditSession) Open(title string, current *domain.Article) {
	e.title = title
	e.tab = TabRead
	e.summary = ""
	e.notice = ""
	e.exists = current != nil
	if current != nil {
		e.buf.SetText(current.Content)
	} else {
		e.buf.SetText("")
	}
}

// Title returns the article title.
func (e *EditSession) Title() string { return e.title }

// Exists reports whether the article existed when it was opened.
func (e *EditSession) Exists() bool { return e.exists }

// Tab returns the active tab.
func (e *EditSession) Tab() Tab { return e.tab }

// SwitchTab changes the active tab. The buffer survives tab changes.
func (e *EditSession) SwitchTab(t Tab) { e.tab = t }

// Buffer returns the editor buffer.
func (e *EditSession) Buffer() *editor.Buffer { return e.buf }

// Summary returns the pending revision summary.
func (e *EditSession) Summary() string { return e.summary }

// SetSummary sets the revision summary of the next save.
func (e *EditSession) SetSummary(s string) { e.summary = s }

// Notice returns the last user-facing message.
func (e *EditSession) Notice() string { return e.notice }

// Save submits the buffer. On success the session returns to the read tab
// with the summary cleared; on failure it stays in the edit tab with the
// buffer intact and Notice set.
func (e *EditSession) Save(ctx context.Context) (domain.Article, error) {
	saved, err := e.saver.SaveArticle(ctx, SaveInput{
		Title:   e.title,
		Content: e.buf.Text(),
		Summary: e.summary,
	})
	if err != nil {
		e.tab = TabEdit
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			e.notice = verr.Errors[len(verr.Errors)-1].Message
		} else {
			e.notice = SaveFailedMessage
		}
		return domain.Article{}, err
	}

	e.tab = TabRead
	e.summary = ""
	e.exists = true
	e.notice = fmt.Sprintf("문서 '%s'이 성공적으로 저장되었습니다.", e.title)
	return saved, nil
}
