package card

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/matzehuels/cardsheet/pkg/cache"
	"github.com/matzehuels/cardsheet/pkg/forms"
)

type stubImages struct {
	images map[string]image.Image
	calls  int
}

func (s *stubImages) Fetch(ctx context.Context, url string) (image.Image, error) {
	s.calls++
	if img, ok := s.images[url]; ok {
		return img, nil
	}
	return nil, errors.New("not found")
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func sampleCard() Card {
	c := Card{
		ID:            "65f1c0ffee0000000000abcd",
		SchoolName:    "Green Valley School",
		SchoolAddress: "Bengaluru",
	}
	c.Data = forms.Values{
		"name":         "Asha Rao",
		"class":        "X",
		"section":      "A",
		"roleNumber":   "17",
		"fatherName":   "Ravi Rao",
		"address":      "12 Lake Road, Near Old Temple, Green Valley Colony, Bengaluru 560001",
		"dateOfBirth":  "2010-04-30",
		"bloodGroup":   "O+",
		"mobileNumber": "9876543210",
		"stream":       "Science",
		"photo":        map[string]any{"url": "https://img/photo.jpg"},
	}
	c.Fields = []forms.FieldKey{
		forms.FieldName, forms.FieldClass, forms.FieldRollNumber, forms.FieldFatherName,
		forms.FieldAddress, forms.FieldDateOfBirth, forms.FieldBloodGroup,
		forms.FieldMobileNumber, forms.FieldStream, forms.FieldPhoto,
	}
	return c
}

func TestSize(t *testing.T) {
	tests := []struct {
		scale float64
		w, h  int
	}{
		{1, 204, 317},
		{2, 408, 635},
		{3, 612, 952},
		{4, 816, 1270},
	}
	for _, tt := range tests {
		w, h := Size(tt.scale)
		if w != tt.w || h != tt.h {
			t.Errorf("Size(%v) = %dx%d, want %dx%d", tt.scale, w, h, tt.w, tt.h)
		}
	}
}

func TestRasterize(t *testing.T) {
	src := &stubImages{images: map[string]image.Image{
		"https://img/photo.jpg": solid(60, 80, color.NRGBA{G: 200, A: 255}),
	}}
	r := NewRenderer(src)

	for _, scale := range []float64{2, 3} {
		img, err := r.Rasterize(context.Background(), sampleCard(), scale)
		if err != nil {
			t.Fatalf("Rasterize(%v): %v", scale, err)
		}
		w, h := Size(scale)
		if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
			t.Errorf("scale %v: bounds %v, want %dx%d", scale, b, w, h)
		}
	}
}

func TestRasterizeDeterministic(t *testing.T) {
	src := &stubImages{images: map[string]image.Image{
		"https://img/photo.jpg": solid(60, 80, color.NRGBA{G: 200, A: 255}),
	}}
	r := NewRenderer(src)
	a, err := r.Rasterize(context.Background(), sampleCard(), 2)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := r.Rasterize(context.Background(), sampleCard(), 2)

	pa, pb := a.(*image.RGBA).Pix, b.(*image.RGBA).Pix
	if len(pa) != len(pb) {
		t.Fatal("sizes differ")
	}
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("pixel byte %d differs", i)
		}
	}
}

func TestRasterizeMissingPhotoStillRenders(t *testing.T) {
	r := NewRenderer(&stubImages{})
	if _, err := r.Rasterize(context.Background(), sampleCard(), 2); err != nil {
		t.Errorf("missing photo should not fail the card: %v", err)
	}
}

func TestRasterizeBackground(t *testing.T) {
	bg := solid(300, 470, color.NRGBA{R: 250, G: 240, B: 200, A: 255})
	src := &stubImages{images: map[string]image.Image{"https://img/bg.png": bg}}
	r := NewRenderer(src, WithoutQR())

	c := sampleCard()
	c.Fields = []forms.FieldKey{forms.FieldName}
	c.BackgroundURL = "https://img/bg.png"
	img, err := r.Rasterize(context.Background(), c, 1)
	if err != nil {
		t.Fatal(err)
	}
	// The corner shows the background since there is no header band.
	got := color.NRGBAModel.Convert(img.At(1, 1)).(color.NRGBA)
	if got.R < 240 || got.B > 210 {
		t.Errorf("corner pixel = %v, want background colour", got)
	}

	c.BackgroundURL = "https://img/missing.png"
	if _, err := r.Rasterize(context.Background(), c, 1); err == nil {
		t.Error("unreachable background should fail the card")
	}
}

func TestRasterizeRejectsBadScale(t *testing.T) {
	if _, err := NewRenderer(nil).Rasterize(context.Background(), sampleCard(), 0); err == nil {
		t.Error("scale 0 should fail")
	}
}

func TestRasterizeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRenderer(nil).Rasterize(ctx, sampleCard(), 1); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCardHasAndValue(t *testing.T) {
	c := sampleCard()
	if c.Has(forms.FieldEmail) {
		t.Error("email is not selected")
	}
	if got := c.Value(forms.FieldDateOfBirth); got != "30/04/2010" {
		t.Errorf("Value(dob) = %q", got)
	}
	if got := c.Value(forms.FieldRollNumber); got != "17" {
		t.Errorf("Value(roll) = %q", got)
	}

	c.Fields = nil
	if !c.Has(forms.FieldSection) || c.Has(forms.FieldEmail) {
		t.Error("without a field list, keys present in data are printed")
	}
}

func TestFingerprint(t *testing.T) {
	a := sampleCard()
	b := sampleCard()
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("equal cards should share a fingerprint")
	}
	b.Data["name"] = "Asha R."
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("edited card should change fingerprint")
	}
}

func TestFromEntry(t *testing.T) {
	e := forms.Entry{Submission: forms.Submission{ID: "s1", Data: forms.Values{"name": "A"}}, SchoolName: "GV"}
	form := &forms.FormConfig{SchoolName: "GV", SchoolAddress: "Main Road"}
	c := FromEntry(e, []forms.FieldKey{forms.FieldName}, form, "bg")
	if c.ID != "s1" || c.SchoolAddress != "Main Road" || c.BackgroundURL != "bg" || c.SchoolName != "GV" {
		t.Errorf("FromEntry = %+v", c)
	}
}

type countingRasterizer struct{ calls int }

func (r *countingRasterizer) Rasterize(ctx context.Context, c Card, scale float64) (image.Image, error) {
	r.calls++
	w, h := Size(scale)
	return solid(w, h, color.NRGBA{B: 255, A: 255}), nil
}

func TestCachedRasterizer(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	inner := &countingRasterizer{}
	r := NewCached(inner, fc, nil)
	var hits int
	r.OnLookup = func(_ context.Context, _ string, hit bool) {
		if hit {
			hits++
		}
	}
	ctx := context.Background()

	c := sampleCard()
	for i := 0; i < 3; i++ {
		img, err := r.Rasterize(ctx, c, 1)
		if err != nil {
			t.Fatal(err)
		}
		if img.Bounds().Dx() != 204 {
			t.Errorf("bounds = %v", img.Bounds())
		}
	}
	if inner.calls != 1 || hits != 2 {
		t.Errorf("inner calls = %d, hits = %d; want 1 and 2", inner.calls, hits)
	}

	r.Rasterize(ctx, c, 2)
	c.Data["name"] = "Changed"
	r.Rasterize(ctx, c, 1)
	if inner.calls != 3 {
		t.Errorf("scale or content change should miss, inner calls = %d", inner.calls)
	}
}
