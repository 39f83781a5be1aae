package wiki

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binia1/hyobinwiki/internal/domain"
)

func TestService_Search_TitleSubstring(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, okWriter(), domain.Snapshot{
		"효빈광역시": {Content: "<p>광역시</p>"},
		"효빈역":   {Content: "<p>역</p>"},
		"남구":    {Content: "<p>구</p>"},
	})

	got := svc.Search("효빈")
	require.Len(t, got, 2)
	assert.Equal(t, "효빈광역시", got[0].Title)
	assert.Equal(t, "효빈역", got[1].Title)
}

func TestService_Search_ContentMatchHighlightsAnyCase(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, okWriter(), domain.Snapshot{
		"남구": {Content: "<p>HYOBIN port and hyobin bay</p>", LastUpdated: ts(0)},
	})

	got := svc.Search("hyobin")
	require.Len(t, got, 1)
	assert.Equal(t, "남구", got[0].Title)
	assert.Equal(t,
		HighlightOpen+"HYOBIN"+HighlightClose+" port and "+HighlightOpen+"hyobin"+HighlightClose+" bay",
		got[0].Snippet)
	assert.Equal(t, ts(0), got[0].LastUpdated)
}

func TestService_Search_CaseSensitiveMatch(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, okWriter(), domain.Snapshot{
		"남구": {Content: "<p>Hyobin</p>"},
	})

	assert.Empty(t, svc.Search("hyobin"))
	assert.Len(t, svc.Search("Hyobin"), 1)
}

func TestService_Search_EmptyTerm(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, okWriter(), domain.Snapshot{"남구": {Content: "x"}})

	got := svc.Search("")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestService_Search_MatchesMarkup(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, okWriter(), domain.Snapshot{
		"중구": {Content: `<div class="wiki-table">원도심</div>`},
	})

	got := svc.Search("wiki-table")
	require.Len(t, got, 1)
	assert.Equal(t, "원도심...", got[0].Snippet)
}

func TestSnippet(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("가", 100) + "X" + strings.Repeat("나", 200)

	tests := []struct {
		name    string
		content string
		term    string
		want    string
	}{
		{
			name: "empty content", content: "", term: "x",
			want: NoContentSnippet,
		},
		{
			name: "no match falls back to leading text", content: "<p>abc</p>", term: "zzz",
			want: "abc...",
		},
		{
			name: "fallback truncates", content: strings.Repeat("다", 250), term: "zzz",
			want: strings.Repeat("다", 200) + "...",
		},
		{
			name: "short text without clipping", content: "<p>효빈광역시는 Hyobin City</p>", term: "city",
			want: "효빈광역시는 Hyobin " + HighlightOpen + "City" + HighlightClose,
		},
		{
			name: "window clipped on both sides", content: long, term: "x",
			want: "..." + strings.Repeat("가", 50) + HighlightOpen + "X" + HighlightClose + strings.Repeat("나", 150) + "...",
		},
		{
			name: "match near start", content: "ab" + strings.Repeat("c", 300), term: "B",
			want: "a" + HighlightOpen + "b" + HighlightClose + strings.Repeat("c", 150) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Snippet(tt.content, tt.term))
		})
	}
}

func TestHighlight_TermIsLiteral(t *testing.T) {
	t.Parallel()

	got := Highlight("a.b axb A.B", "a.b")
	assert.Equal(t, HighlightOpen+"a.b"+HighlightClose+" axb "+HighlightOpen+"A.B"+HighlightClose, got)
	assert.Equal(t, "text", Highlight("text", ""))
}
