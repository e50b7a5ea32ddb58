package compose

import (
	"fmt"
	"image"
	"math"
	"testing"

	apperr "github.com/matzehuels/cardsheet/pkg/errors"
)

const eps = 1e-9

func cards(n int) []CardVisual {
	out := make([]CardVisual, n)
	for i := range out {
		out[i] = CardVisual{ID: fmt.Sprintf("card-%02d", i), Image: image.NewNRGBA(image.Rect(0, 0, 204, 318))}
	}
	return out
}

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestComposeEmptyInput(t *testing.T) {
	for _, in := range [][]CardVisual{nil, {}} {
		pages, err := Compose(in, Options{})
		if !apperr.Is(err, apperr.ErrCodeEmptyInput) {
			t.Errorf("Compose(%v) error = %v, want EMPTY_INPUT", in, err)
		}
		if pages != nil {
			t.Errorf("Compose(%v) returned %d pages, want none", in, len(pages))
		}
	}
}

func TestComposePageCount(t *testing.T) {
	for _, key := range []string{"2x4", "2x3", "3x4", "1x1"} {
		k := ResolveLayout(key).CardsPerPage
		for n := 1; n <= 30; n++ {
			pages, err := Compose(cards(n), Options{Layout: key})
			if err != nil {
				t.Fatalf("Compose(%d, %s): %v", n, key, err)
			}
			want := int(math.Ceil(float64(n) / float64(k)))
			if len(pages) != want {
				t.Errorf("Compose(%d, %s) pages = %d, want %d", n, key, len(pages), want)
			}
		}
	}
}

func TestComposePreservesOrder(t *testing.T) {
	in := cards(23)
	pages, err := Compose(in, Options{Layout: "2x3"})
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, p := range pages {
		for i, img := range p.Images {
			got = append(got, img.Source.ID)
			// row-major within a page
			if img.Row != i/2 || img.Col != i%2 {
				t.Errorf("page %d image %d at row %d col %d", p.Number, i, img.Row, img.Col)
			}
		}
	}
	if len(got) != len(in) {
		t.Fatalf("placed %d cards, want %d", len(got), len(in))
	}
	for i := range in {
		if got[i] != in[i].ID {
			t.Errorf("placement %d = %s, want %s", i, got[i], in[i].ID)
		}
	}
}

func TestGridCentering(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"a4 3x3", Options{Layout: "2x4", PageSize: "a4"}},
		{"a4 3x3 bleed", Options{Layout: "2x4", PageSize: "a4", IncludeBleed: true}},
		{"a3 4x3", Options{Layout: "3x4", PageSize: "a3"}},
		{"letter 2x3", Options{Layout: "2x3", PageSize: "letter", IncludeBleed: true}},
		{"a4 1x1", Options{Layout: "1x1", PageSize: "a4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(tt.opts)
			if !near(g.MarginX+g.TotalW+g.MarginX, g.Page.Width) {
				t.Errorf("horizontal: %v + %v + %v != %v", g.MarginX, g.TotalW, g.MarginX, g.Page.Width)
			}
			if !near(g.MarginY+g.TotalH+g.MarginY, g.Page.Height) {
				t.Errorf("vertical: %v + %v + %v != %v", g.MarginY, g.TotalH, g.MarginY, g.Page.Height)
			}

			// The rightmost card of a full page ends at pageWidth - marginX - bleed.
			pages, err := Compose(cards(g.Sequence), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			last := pages[0].Images[len(pages[0].Images)-1]
			if !near(last.X+last.Width+g.Bleed+g.MarginX, g.Page.Width) {
				t.Errorf("last card right edge %v does not leave margin %v", last.X+last.Width, g.MarginX)
			}
		})
	}
}

func TestPartialPageKeepsMargins(t *testing.T) {
	pages, err := Compose(cards(10), Options{Layout: "2x4"})
	if err != nil {
		t.Fatal(err)
	}
	first := pages[0].Images[0]
	lone := pages[1].Images[0]
	if first.X != lone.X || first.Y != lone.Y {
		t.Errorf("partial page origin (%v,%v) differs from full page (%v,%v)", lone.X, lone.Y, first.X, first.Y)
	}
}

func TestUnknownKeysFallBack(t *testing.T) {
	in := cards(11)

	want, err := Compose(in, Options{Layout: "2x4", PageSize: "a4"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []Options{
		{Layout: "9x9", PageSize: "a4"},
		{Layout: "", PageSize: "a4"},
		{Layout: "2x4", PageSize: "tabloid"},
		{Layout: "bogus", PageSize: ""},
	}
	for _, opts := range tests {
		got, err := Compose(in, opts)
		if err != nil {
			t.Fatalf("Compose(%+v): %v", opts, err)
		}
		if len(got) != len(want) {
			t.Fatalf("Compose(%+v) pages = %d, want %d", opts, len(got), len(want))
		}
		for p := range want {
			if got[p].Width != want[p].Width || got[p].Height != want[p].Height {
				t.Errorf("Compose(%+v) page %d size %vx%v", opts, p, got[p].Width, got[p].Height)
			}
			for i := range want[p].Images {
				g, w := got[p].Images[i], want[p].Images[i]
				if g.X != w.X || g.Y != w.Y || g.Source.ID != w.Source.ID {
					t.Errorf("Compose(%+v) page %d image %d = %+v, want %+v", opts, p, i, g, w)
				}
			}
		}
	}

	if l := ResolveLayout("9x9"); l.Rows != 3 || l.Cols != 3 || l.CardsPerPage != 9 {
		t.Errorf("ResolveLayout(9x9) = %+v, want 3x3/9", l)
	}
	if p := ResolvePageSize("nope"); p.Width != 210 || p.Height != 297 {
		t.Errorf("ResolvePageSize(nope) = %+v, want A4", p)
	}
}

func TestCropMarks(t *testing.T) {
	for _, n := range []int{1, 9, 14} {
		off, err := Compose(cards(n), Options{})
		if err != nil {
			t.Fatal(err)
		}
		on, err := Compose(cards(n), Options{IncludeCropMarks: true})
		if err != nil {
			t.Fatal(err)
		}
		for p := range off {
			if len(off[p].CropMarks) != 0 {
				t.Errorf("n=%d page %d has %d crop marks with marks disabled", n, p, len(off[p].CropMarks))
			}
			if want := 8 * len(on[p].Images); len(on[p].CropMarks) != want {
				t.Errorf("n=%d page %d crop marks = %d, want %d", n, p, len(on[p].CropMarks), want)
			}
		}
	}
}

func TestCropMarksDoNotTouchCard(t *testing.T) {
	const x, y = 16.0, 12.5
	marks := CropMarks(x, y, CardWidth, CardHeight)
	if len(marks) != 8 {
		t.Fatalf("len = %d, want 8", len(marks))
	}

	inside := func(px, py float64) bool {
		return px >= x && px <= x+CardWidth && py >= y && py <= y+CardHeight
	}
	for i, m := range marks {
		length := math.Hypot(m.X2-m.X1, m.Y2-m.Y1)
		if !near(length, CropMarkLength) {
			t.Errorf("mark %d length = %v, want %v", i, length, CropMarkLength)
		}
		if m.X1 != m.X2 && m.Y1 != m.Y2 {
			t.Errorf("mark %d is not axis aligned: %+v", i, m)
		}
		if inside(m.X1, m.Y1) || inside(m.X2, m.Y2) {
			t.Errorf("mark %d touches the card: %+v", i, m)
		}
	}
}

func TestBleedFootprint(t *testing.T) {
	plain := NewGrid(Options{})
	bled := NewGrid(Options{IncludeBleed: true})

	if !near(bled.CellW-plain.CellW, 6) || !near(bled.CellH-plain.CellH, 6) {
		t.Errorf("bleed footprint delta = %vx%v, want 6x6", bled.CellW-plain.CellW, bled.CellH-plain.CellH)
	}

	for _, opts := range []Options{{}, {IncludeBleed: true}} {
		pages, err := Compose(cards(9), opts)
		if err != nil {
			t.Fatal(err)
		}
		for _, img := range pages[0].Images {
			if img.Width != 54 || img.Height != 84 {
				t.Errorf("bleed=%v placed size = %vx%v, want 54x84", opts.IncludeBleed, img.Width, img.Height)
			}
		}
	}

	// With bleed, artwork sits bleed mm inside its footprint.
	pages, _ := Compose(cards(1), Options{IncludeBleed: true})
	if img := pages[0].Images[0]; !near(img.X, bled.MarginX+3) || !near(img.Y, bled.MarginY+3) {
		t.Errorf("bleed origin = (%v,%v), want (%v,%v)", img.X, img.Y, bled.MarginX+3, bled.MarginY+3)
	}
}

func TestScenarioTenCardsA4(t *testing.T) {
	pages, err := Compose(cards(10), Options{Layout: "2x4", PageSize: "a4"})
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	if len(pages[0].Images) != 9 {
		t.Fatalf("page 1 placements = %d, want 9", len(pages[0].Images))
	}

	seen := map[[2]int]bool{}
	for _, img := range pages[0].Images {
		seen[[2]int{img.Row, img.Col}] = true
	}
	for r := range 3 {
		for c := range 3 {
			if !seen[[2]int{r, c}] {
				t.Errorf("page 1 missing row %d col %d", r, c)
			}
		}
	}

	if len(pages[1].Images) != 1 {
		t.Fatalf("page 2 placements = %d, want 1", len(pages[1].Images))
	}
	img := pages[1].Images[0]
	if img.Row != 0 || img.Col != 0 {
		t.Errorf("page 2 card at row %d col %d, want 0/0", img.Row, img.Col)
	}
	// A4: (210 - (3*54 + 2*8)) / 2 = 16; (297 - (3*84 + 2*10)) / 2 = 12.5
	if !near(img.X, 16) || !near(img.Y, 12.5) {
		t.Errorf("page 2 origin = (%v,%v), want (16,12.5)", img.X, img.Y)
	}
	if pages[1].Number != 2 {
		t.Errorf("page number = %d, want 2", pages[1].Number)
	}
}

func TestScenarioSingleCard(t *testing.T) {
	pages, err := Compose(cards(1), Options{Layout: "1x1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 || len(pages[0].Images) != 1 {
		t.Fatalf("got %d pages", len(pages))
	}
	img := pages[0].Images[0]
	if !near(img.X+img.Width/2, 105) || !near(img.Y+img.Height/2, 148.5) {
		t.Errorf("single card center = (%v,%v), want page center (105,148.5)", img.X+img.Width/2, img.Y+img.Height/2)
	}
}

func TestQualityScale(t *testing.T) {
	tests := []struct {
		q    Quality
		want float64
	}{
		{QualityStandard, 2},
		{QualityHigh, 3},
		{QualityPrint, 4},
		{"", 2},
		{"ultra", 2},
	}
	for _, tt := range tests {
		if got := tt.q.Scale(); got != tt.want {
			t.Errorf("Quality(%q).Scale() = %v, want %v", tt.q, got, tt.want)
		}
	}
}

func TestOptionTablesOrdered(t *testing.T) {
	ls := Layouts()
	if len(ls) != 4 || ls[0].Key != "1x1" || ls[3].Key != "3x4" {
		t.Errorf("Layouts() = %+v", ls)
	}
	ps := PageSizes()
	if len(ps) != 3 || ps[0].Key != "letter" || ps[1].Key != "a4" || ps[2].Key != "a3" {
		t.Errorf("PageSizes() = %+v", ps)
	}
}

func TestCardVisualDimensions(t *testing.T) {
	c := CardVisual{ID: "x", Image: image.NewNRGBA(image.Rect(0, 0, 612, 952))}
	if c.Width() != 612 || c.Height() != 952 {
		t.Errorf("dims = %dx%d", c.Width(), c.Height())
	}
	if (CardVisual{}).Width() != 0 {
		t.Error("nil image should have zero width")
	}
}
