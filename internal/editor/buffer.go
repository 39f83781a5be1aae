// Package editor models the article edit box: a text buffer with a
// selection, the formatting toolbar, and the two-step image insertion task.
package editor

// Buffer is an editable text with a selection. Offsets count runes.
type Buffer struct {
	text     []rune
	selStart int
	selEnd   int
}

// NewBuffer creates a buffer holding text with the caret at the end.
func NewBuffer(text string) *Buffer {
	r := []rune(text)
	return &Buffer{text: r, selStart: len(r), selEnd: len(r)}
}

// Text returns the buffer contents.
func (b *Buffer) Text() string { return string(b.text) }

// SetText replaces the contents and moves the caret to the end.
func (b *Buffer) SetText(text string) {
	b.text = []rune(text)
	b.selStart, b.selEnd = len(b.text), len(b.text)
}

// Selection returns the selected range [start, end).
func (b *Buffer) Selection() (start, end int) { return b.selStart, b.selEnd }

// Selected returns the selected text.
func (b *Buffer) Selected() string { return string(b.text[b.selStart:b.selEnd]) }

// Select sets the selection, clamping both ends into the buffer and
// ordering them.
func (b *Buffer) Select(start, end int) {
	start, end = b.clamp(start), b.clamp(end)
	if start > end {
		start, end = end, start
	}
	b.selStart, b.selEnd = start, end
}

// MoveCaret collapses the selection at pos.
func (b *Buffer) MoveCaret(pos int) { b.Select(pos, pos) }

// Insert wraps the selection in before and after, or inserts both at the
// caret when nothing is selected. The selection afterwards covers the
// originally selected text at its new position.
func (b *Buffer) Insert(before, after string) {
	br, ar := []rune(before), []rune(after)
	sel := b.text[b.selStart:b.selEnd]

	out := make([]rune, 0, len(b.text)+len(br)+len(ar))
	out = append(out, b.text[:b.selStart]...)
	out = append(out, br...)
	out = append(out, sel...)
	out = append(out, ar...)
	out = append(out, b.text[b.selEnd:]...)

	b.text = out
	b.selStart += len(br)
	b.selEnd += len(br)
}

func (b *Buffer) clamp(pos int) int {
	return max(0, min(pos, len(b.text)))
}
