package core

import (
	"errors"
	"testing"

	"carouselcraft.io/carousel-studio/internal/store"
)

func TestSettingsGetCreatesDefaults(t *testing.T) {
	ts := newTestServices(t)
	u := ts.user(t, "alice")

	got, err := ts.settings.Get(u.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.PrimaryColor != store.DefaultPrimaryColor || got.ContentStyle != store.ContentSplit || got.ID == "" {
		t.Errorf("defaults = %+v", got)
	}
	stored, err := ts.db.GetSettingsByUserID(u.ID)
	if err != nil || stored == nil {
		t.Fatalf("defaults were not persisted: %v", err)
	}
}

func TestSettingsUpdate(t *testing.T) {
	ts := newTestServices(t)
	u := ts.user(t, "alice")

	color := "#FF5500"
	name := "Alice Martin"
	start := store.AlignStart
	got, err := ts.settings.Update(u.ID, SettingsUpdate{PrimaryColor: &color, SignatureName: &name, CoverAlignment: &start})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.PrimaryColor != color || got.SignatureName != name || got.CoverAlignment != start {
		t.Errorf("updated = %+v", got)
	}
	if got.ContentAlignment != store.AlignCentered || got.EndPageTitle != "Your Name" {
		t.Errorf("untouched fields changed: %+v", got)
	}

	stored, _ := ts.db.GetSettingsByUserID(u.ID)
	if stored.PrimaryColor != color {
		t.Errorf("stored colour = %q", stored.PrimaryColor)
	}
}

func TestSettingsUpdateValidation(t *testing.T) {
	ts := newTestServices(t)
	u := ts.user(t, "alice")

	badColor := "0A66C2"
	badAlign := store.Alignment("justify")
	badPos := store.SignaturePosition("top-left")
	badImage := "ftp://example.com/me.png"
	metadataImage := "http://169.254.169.254/latest/meta-data/avatar.png"
	loopbackImage := "https://localhost:8080/me.png"
	privateImage := "http://10.0.0.7/me.png"
	tests := []struct {
		name  string
		upd   SettingsUpdate
		field string
	}{
		{"colour without hash", SettingsUpdate{PrimaryColor: &badColor}, "primary_color"},
		{"alignment", SettingsUpdate{ContentAlignment: &badAlign}, "content_alignment"},
		{"signature position", SettingsUpdate{SignaturePosition: &badPos}, "signature_position"},
		{"image scheme", SettingsUpdate{EndPageImage: &badImage}, "end_page_image"},
		{"image on metadata address", SettingsUpdate{EndPageImage: &metadataImage}, "end_page_image"},
		{"image on localhost", SettingsUpdate{EndPageImage: &loopbackImage}, "end_page_image"},
		{"image on private network", SettingsUpdate{EndPageImage: &privateImage}, "end_page_image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.settings.Update(u.ID, tt.upd)
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("err = %v, want validation error on %s", err, tt.field)
			}
		})
	}

	got, _ := ts.settings.Get(u.ID)
	if got.PrimaryColor != store.DefaultPrimaryColor {
		t.Errorf("rejected update was applied: %+v", got)
	}
}
