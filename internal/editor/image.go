package editor

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultCaption is used when the caption prompt is left empty.
const DefaultCaption = "이미지 설명"

// ImageStep is the state of an image insertion.
type ImageStep int

const (
	AwaitingURL ImageStep = iota
	AwaitingCaption
	Done
	Cancelled
)

func (s ImageStep) String() string {
	switch s {
	case AwaitingURL:
		return "awaiting_url"
	case AwaitingCaption:
		return "awaiting_caption"
	case Done:
		return "done"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("ImageStep(%d)", int(s))
}

// ErrTaskFinished is returned when a finished task receives more input.
var ErrTaskFinished = errors.New("image task already finished")

// ImageTask asks for an image URL and then a caption, and inserts a figure
// at the caret of its buffer.
type ImageTask struct {
	buf  *Buffer
	step ImageStep
	url  string
}

// NewImageTask starts an image insertion against b.
func NewImageTask(b *Buffer) *ImageTask {
	return &ImageTask{buf: b, step: AwaitingURL}
}

// Step returns the current state.
func (t *ImageTask) Step() ImageStep { return t.step }

// SubmitURL answers the first prompt. An empty URL aborts the task.
func (t *ImageTask) SubmitURL(url string) error {
	if t.step != AwaitingURL {
		return fmt.Errorf("submit url in state %s: %w", t.step, ErrTaskFinished)
	}
	url = strings.TrimSpace(url)
	if url == "" {
		t.step = Cancelled
		return nil
	}
	t.url = url
	t.step = AwaitingCaption
	return nil
}

// SubmitCaption answers the second prompt and inserts the figure.
func (t *ImageTask) SubmitCaption(caption string) error {
	if t.step != AwaitingCaption {
		return fmt.Errorf("submit caption in state %s: %w", t.step, ErrTaskFinished)
	}
	if caption == "" {
		caption = DefaultCaption
	}
	t.buf.Insert(Figure(t.url, caption), "")
	t.step = Done
	return nil
}

// Cancel aborts the task. It is a no-op once the task has finished.
func (t *ImageTask) Cancel() {
	if t.step == AwaitingURL || t.step == AwaitingCaption {
		t.step = Cancelled
	}
}

// Figure renders the markup inserted for an image.
func Figure(url, caption string) string {
	return fmt.Sprintf(`
<figure class="wiki-figure" style="text-align:center; margin: 20px 0; border:1px solid #ddd; padding:5px; background:#f9f9f9; display:inline-block; max-width:100%%;">
  <img src="%s" alt="%s" style="max-width:100%%; height:auto; display:block;" />
  <figcaption style="text-align:center; color:#555; font-size:0.9em; padding-top:5px;">%s</figcaption>
</figure>`, url, caption, caption)
}
