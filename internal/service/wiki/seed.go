package wiki

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/binia1/hyobinwiki/internal/domain"
)

// SeedMarker is the version marker the canonical article must contain.
// Bumping it makes every server reseed the article on its next load.
const SeedMarker = "<!-- FINAL_LAYOUT_V29_TRAFFIC_TABLE -->"

const (
	seedRev     = 53
	seedSummary = "6.1.1 문단 위에 관내 국가 철도망 표 추가 (KTX, SRT, ITX 배지 적용)"
)

//go:embed seed_page.html.tmpl
var seedPage string

// ImageMap resolves a place name to its logo image URL.
type ImageMap map[string]string

// DefaultImageMap returns the logos of the city and its districts.
func DefaultImageMap() ImageMap {
	return ImageMap{
		"효빈광역시": "https://i.imgur.com/iYcyOlz.png",
		"남구":    "https://i.imgur.com/GKWRItK.png",
		"북구":    "https://i.imgur.com/kdSkuVp.png",
		"동구":    "https://i.imgur.com/WfloDcp.png",
		"서구":    "https://i.imgur.com/LzHidYM.png",
		"중구":    "https://i.imgur.com/GOBJzcQ.png",
		"안천구":   "https://i.imgur.com/7X32Jx0.png",
		"창전구":   "https://i.imgur.com/D9RghdZ.png",
		"청엽구":   "https://i.imgur.com/ocwoL8p.png",
		"탄성군":   "https://i.imgur.com/G7LbZmw.png",
	}
}

// Logo returns the image for name, or a generated placeholder tile in
// color carrying the first two characters of the name.
func (m ImageMap) Logo(name, color string) string {
	if url, ok := m[name]; ok {
		return url
	}
	r := []rune(name)
	return fmt.Sprintf("https://placehold.co/60x60/%s/ffffff?text=%s", color, string(r[:min(2, len(r))]))
}

// Party badge colors.
var partyColor = map[string]string{
	"민주당":   "#004EA2",
	"국민의힘":  "#E61E2B",
	"진보당":   "#D6001C",
	"조국혁신당": "#0073CF",
	"무소속":   "#808080",
	"진보":    "#79D2CC",
}

type seatRow struct {
	Party string
	Color string
	Seats string
	Note  string
}

type foldingSection struct {
	ID    string
	Title string
	Rows  []seatRow
}

type districtCard struct {
	Name  string
	Image string
}

type seedView struct {
	Marker    string
	CityLogo  string
	Folds     []foldingSection
	Districts []districtCard
	Counties  []districtCard
}

// seedWriter defines the store write needed by the seeder.
type seedWriter interface {
	Upsert(ctx context.Context, title string, patch domain.ArticlePatch) error
}

// Seeder writes the canonical city article.
type Seeder struct {
	log    *slog.Logger
	store  seedWriter
	images ImageMap
	title  string
	marker string
	tmpl   *template.Template
	now    func() time.Time
}

// NewSeeder creates a seeder for the article title, stamping marker into
// the rendered page.
func NewSeeder(logger *slog.Logger, store seedWriter, images ImageMap, title, marker string) *Seeder {
	tmpl := template.Must(template.New("seed").Funcs(template.FuncMap{
		"badge": partyBadge,
	}).Parse(seedPage))

	return &Seeder{
		log:    logger.With("service", "seeder"),
		store:  store,
		images: images,
		title:  title,
		marker: marker,
		tmpl:   tmpl,
		now:    time.Now,
	}
}

// Title returns the canonical article title.
func (s *Seeder) Title() string { return s.title }

// Marker returns the version marker.
func (s *Seeder) Marker() string { return s.marker }

// Render builds the canonical article content.
func (s *Seeder) Render() (string, error) {
	view := seedView{
		Marker:   s.marker,
		CityLogo: s.images.Logo(s.title, "7777AA"),
		Folds: []foldingSection{
			{ID: "folding-council", Title: "시의회", Rows: []seatRow{
				{Party: "더불어민주당", Color: partyColor["민주당"], Seats: "34석", Note: "지역구 30석, 비례대표 4석"},
				{Party: "국민의힘", Color: partyColor["국민의힘"], Seats: "1석", Note: "지역구 1석"},
				{Party: "진보당", Color: partyColor["진보당"], Seats: "2석"},
				{Party: "조국혁신당", Color: partyColor["조국혁신당"], Seats: "1석"},
			}},
			{ID: "folding-assembly", Title: "국회의원", Rows: []seatRow{
				{Party: "더불어민주당", Color: partyColor["민주당"], Seats: "13석"},
				{Party: "진보당", Color: partyColor["진보당"], Seats: "1석"},
			}},
			{ID: "folding-district-chief", Title: "구청장", Rows: []seatRow{
				{Party: "더불어민주당", Color: partyColor["민주당"], Seats: "8석"},
				{Party: "조국혁신당", Color: partyColor["조국혁신당"], Seats: "1석"},
			}},
		},
	}

	for _, d := range []string{"중구", "동구", "서구", "남구", "북구", "청엽구", "안천구", "창전구"} {
		view.Districts = append(view.Districts, districtCard{Name: d, Image: s.images.Logo(d, "555588")})
	}
	view.Counties = append(view.Counties, districtCard{Name: "탄성군", Image: s.images.Logo("탄성군", "448844")})

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render seed page: %w", err)
	}
	return buf.String(), nil
}

// NeedsSeed reports whether snap lacks a current canonical article: the
// collection is empty, or the canonical article exists without the marker.
func (s *Seeder) NeedsSeed(snap domain.Snapshot) bool {
	if len(snap) == 0 {
		return true
	}
	a, ok := snap[s.title]
	return ok && !strings.Contains(a.Content, s.marker)
}

// Seed merge-upserts the canonical article. Concurrent seeds write the
// same record and are harmless.
func (s *Seeder) Seed(ctx context.Context) error {
	content, err := s.Render()
	if err != nil {
		return err
	}

	now := s.now().UTC()
	patch := domain.ArticlePatch{
		Content: &content,
		History: []domain.Revision{{
			Rev:     seedRev,
			User:    domain.SystemLabel,
			Time:    now,
			Summary: seedSummary,
		}},
		SetHistory:  true,
		Discuss:     []domain.Discussion{},
		SetDiscuss:  true,
		LastUpdated: &now,
	}

	if err := s.store.Upsert(ctx, s.title, patch); err != nil {
		return fmt.Errorf("seed %q: %w", s.title, err)
	}

	s.log.InfoContext(ctx, "canonical article seeded",
		slog.String("title", s.title),
		slog.String("marker", s.marker))
	return nil
}

func partyBadge(color, text string) string {
	return fmt.Sprintf(`<span style="background-color:%s; color:white; padding:1px 4px; border-radius:3px; font-size:10px; font-weight:bold; white-space:nowrap; display:inline-block;">%s</span>`, color, text)
}
