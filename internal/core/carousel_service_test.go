package core

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"carouselcraft.io/carousel-studio/internal/store"
)

func TestGenerateValidation(t *testing.T) {
	ts := newTestServices(t)
	u := ts.user(t, "alice")

	tests := []struct {
		name  string
		req   CreateCarouselRequest
		field string
	}{
		{"short subject", CreateCarouselRequest{Subject: " ab "}, "subject"},
		{"long sources", CreateCarouselRequest{Subject: "Stripe", Sources: strings.Repeat("x", 5001)}, "sources"},
		{"negative count", CreateCarouselRequest{Subject: "Stripe", SlideCount: -1}, "slide_count"},
		{"bad language", CreateCarouselRequest{Subject: "Stripe", Language: "de"}, "language"},
		{"bad format", CreateCarouselRequest{Subject: "Stripe", ContentFormat: "table"}, "content_format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.carousels.Generate(context.Background(), u.ID, tt.req)
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field || !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want validation error on %s", err, tt.field)
			}
		})
	}
}

func TestGeneratePersistsFallback(t *testing.T) {
	ts := newTestServices(t)
	u := ts.user(t, "alice")
	ts.llm.err = errors.New("model offline")

	c, err := ts.carousels.Generate(context.Background(), u.ID, CreateCarouselRequest{Subject: "Duolingo", SlideCount: 5})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if c.Language != store.LanguageFrench || c.ContentFormat != store.FormatBullets || c.ContentLength != store.LengthAuto {
		t.Errorf("defaults not applied: %+v", c)
	}
	// Default settings split content slides: cover, 2×(title+content), cta, subscribe.
	if c.SlideCount != 7 || len(c.Slides) != 7 {
		t.Fatalf("slide count = %d (%d slides)", c.SlideCount, len(c.Slides))
	}

	got, err := ts.carousels.Get(u.ID, c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != store.StatusDraft || len(got.Slides) != 7 {
		t.Errorf("stored carousel = %+v", got)
	}
	for i, s := range got.Slides {
		if s.SlideNumber != i+1 {
			t.Errorf("slide %d has number %d", i, s.SlideNumber)
		}
	}
}

func TestCarouselOwnershipAndDelete(t *testing.T) {
	ts := newTestServices(t)
	alice := ts.user(t, "alice")
	bob := ts.user(t, "bob")

	c, err := ts.carousels.Generate(context.Background(), alice.ID, CreateCarouselRequest{Subject: "Slack"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := ts.carousels.Get(bob.ID, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("bob Get err = %v, want ErrNotFound", err)
	}
	if err := ts.carousels.Delete(bob.ID, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("bob Delete err = %v, want ErrNotFound", err)
	}

	list, err := ts.carousels.List(alice.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %v, %v", list, err)
	}

	if err := ts.carousels.Delete(alice.ID, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := ts.carousels.Get(alice.ID, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
	slides, err := ts.db.GetSlidesByCarouselID(c.ID)
	if err != nil || len(slides) != 0 {
		t.Errorf("slides after delete = %d, %v", len(slides), err)
	}
}

func TestEditSlide(t *testing.T) {
	ts := newTestServices(t)
	u := ts.user(t, "alice")
	c, err := ts.carousels.Generate(context.Background(), u.ID, CreateCarouselRequest{Subject: "Figma", SlideCount: 5})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	target := c.Slides[1]

	invalidEdits := []struct {
		name string
		edit SlideEdit
	}{
		{"missing title", SlideEdit{Title: "  "}},
		{"long title", SlideEdit{Title: strings.Repeat("t", 101)}},
		{"too many bullets", SlideEdit{Title: "T", Bullets: []string{"1", "2", "3", "4", "5", "6"}}},
		{"long bullet", SlideEdit{Title: "T", Bullets: []string{strings.Repeat("b", 81)}}},
		{"long content", SlideEdit{Title: "T", Content: strPtr(strings.Repeat("c", 501))}},
		{"both bodies", SlideEdit{Title: "T", Content: strPtr("c"), Bullets: []string{"b"}}},
		{"long stats", SlideEdit{Title: "T", Stats: strPtr(strings.Repeat("s", 101))}},
	}
	for _, tt := range invalidEdits {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ts.carousels.EditSlide(u.ID, c.ID, target.ID, tt.edit); !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
			stored, _ := ts.db.GetSlideByID(target.ID, c.ID)
			if stored.Title != target.Title || stored.IsEdited {
				t.Errorf("slide changed after rejected edit: %+v", stored)
			}
		})
	}

	edited, err := ts.carousels.EditSlide(u.ID, c.ID, target.ID, SlideEdit{Title: "Design in public", Bullets: []string{" Ship drafts ", "Ask early"}})
	if err != nil {
		t.Fatalf("EditSlide: %v", err)
	}
	stored, _ := ts.db.GetSlideByID(target.ID, c.ID)
	if !stored.IsEdited || stored.Title != "Design in public" || !edited.IsEdited {
		t.Errorf("stored = %+v", stored)
	}
	if b, ok := stored.Body.(store.Bullets); !ok || b.Items[0] != "Ship drafts" {
		t.Errorf("body = %#v", stored.Body)
	}

	if _, err := ts.carousels.EditSlide(u.ID, c.ID, "missing", SlideEdit{Title: "T"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown slide err = %v", err)
	}
}

func TestRegenerateSlideService(t *testing.T) {
	ts := newTestServices(t)
	u := ts.user(t, "alice")
	ts.llm.err = errors.New("offline")
	c, err := ts.carousels.Generate(context.Background(), u.ID, CreateCarouselRequest{Subject: "Figma", SlideCount: 5})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	target := c.Slides[2]
	if _, err := ts.carousels.EditSlide(u.ID, c.ID, target.ID, SlideEdit{Title: "Mine"}); err != nil {
		t.Fatalf("EditSlide: %v", err)
	}

	if _, err := ts.carousels.RegenerateSlide(context.Background(), u.ID, c.ID, target.ID, "shorter"); err == nil {
		t.Fatal("expected regeneration error while the model is offline")
	}
	stored, _ := ts.db.GetSlideByID(target.ID, c.ID)
	if stored.Title != "Mine" || !stored.IsEdited {
		t.Errorf("slide changed after failed regeneration: %+v", stored)
	}

	if _, err := ts.carousels.RegenerateSlide(context.Background(), u.ID, c.ID, target.ID, strings.Repeat("g", 301)); !errors.Is(err, ErrValidation) {
		t.Errorf("long guidance err = %v", err)
	}

	ts.llm.err = nil
	ts.llm.replies = []string{`{"title":"Fresh","content":"New words"}`}
	sl, err := ts.carousels.RegenerateSlide(context.Background(), u.ID, c.ID, target.ID, "")
	if err != nil {
		t.Fatalf("RegenerateSlide: %v", err)
	}
	stored, _ = ts.db.GetSlideByID(target.ID, c.ID)
	if sl.IsEdited || stored.IsEdited || stored.Title != "Fresh" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestPreviewSlide(t *testing.T) {
	ts := newTestServices(t)
	u := ts.user(t, "alice")
	c, err := ts.carousels.Generate(context.Background(), u.ID, CreateCarouselRequest{Subject: "Figma", SlideCount: 5})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, err := ts.carousels.PreviewSlide(context.Background(), u.ID, c.ID, 1)
	if err != nil {
		t.Fatalf("PreviewSlide: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if img.Bounds().Dx() != 1080 {
		t.Errorf("preview width = %d", img.Bounds().Dx())
	}

	if _, err := ts.carousels.PreviewSlide(context.Background(), u.ID, c.ID, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown number err = %v", err)
	}
}

func TestExport(t *testing.T) {
	ts := newTestServices(t)
	u := ts.user(t, "alice")
	settings := store.ContentCombined
	if _, err := ts.settings.Update(u.ID, SettingsUpdate{ContentStyle: &settings}); err != nil {
		t.Fatalf("Update settings: %v", err)
	}
	c, err := ts.carousels.Generate(context.Background(), u.ID, CreateCarouselRequest{Subject: "Growth Loops", SlideCount: 4})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := ts.carousels.Export(context.Background(), u.ID, c.ID); !errors.Is(err, ErrSubscriptionRequired) {
		t.Fatalf("err = %v, want ErrSubscriptionRequired", err)
	}

	if err := ts.db.UpsertSubscription(&store.Subscription{UserID: u.ID, Status: store.SubscriptionActive, SubscriptionType: "lifetime"}); err != nil {
		t.Fatalf("UpsertSubscription: %v", err)
	}

	var wg sync.WaitGroup
	docs := make([]*ExportedDocument, 2)
	errs := make([]error, 2)
	for i := range docs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			docs[i], errs[i] = ts.carousels.Export(context.Background(), u.ID, c.ID)
		}(i)
	}
	wg.Wait()

	for i := range docs {
		if errs[i] != nil {
			t.Fatalf("Export %d: %v", i, errs[i])
		}
		if docs[i].Pages != 4 || len(docs[i].Skipped) != 0 {
			t.Errorf("export %d pages = %d skipped = %v", i, docs[i].Pages, docs[i].Skipped)
		}
		if !strings.HasPrefix(docs[i].FileName, "carousel-growth-loops-") || !bytes.HasPrefix(docs[i].Document, []byte("%PDF")) {
			t.Errorf("export %d file %q", i, docs[i].FileName)
		}
	}

	if _, err := os.Stat(filepath.Join(ts.outputDir, filepath.FromSlash(docs[0].URL))); err != nil {
		t.Errorf("stored document not found at %q: %v", docs[0].URL, err)
	}

	got, err := ts.carousels.Get(u.ID, c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != store.StatusExported || got.PDFURL == nil || *got.PDFURL != docs[0].URL {
		t.Errorf("carousel after export = %+v", got)
	}
}
