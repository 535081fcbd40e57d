package store

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSlideJSONBody(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantBody Body
	}{
		{"bullets only", `{"type":"content","bullets":["a","b"]}`, Bullets{Items: []string{"a", "b"}}},
		{"content only", `{"type":"content","content":"hello"}`, Prose{Text: "hello"}},
		{"both present keeps bullets", `{"type":"content","content":"hello","bullets":["x"]}`, Bullets{Items: []string{"x"}}},
		{"neither", `{"type":"cover","title":"T"}`, nil},
		{"empty content", `{"type":"content","content":""}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sl Slide
			if err := json.Unmarshal([]byte(tt.input), &sl); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			switch want := tt.wantBody.(type) {
			case nil:
				if sl.Body != nil {
					t.Errorf("Body = %#v, want nil", sl.Body)
				}
			case Prose:
				if got, ok := sl.Body.(Prose); !ok || got.Text != want.Text {
					t.Errorf("Body = %#v, want %#v", sl.Body, want)
				}
			case Bullets:
				got, ok := sl.Body.(Bullets)
				if !ok || strings.Join(got.Items, "|") != strings.Join(want.Items, "|") {
					t.Errorf("Body = %#v, want %#v", sl.Body, want)
				}
			}
		})
	}
}

func TestSlideJSONNeverEmitsBoth(t *testing.T) {
	sl := Slide{Type: SlideContent, Title: "T", Body: Bullets{Items: []string{"one"}}}
	raw, err := json.Marshal(sl)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(raw), `"content"`) {
		t.Errorf("bullets slide emitted content field: %s", raw)
	}

	sl.Body = Prose{Text: "prose"}
	raw, _ = json.Marshal(sl)
	if strings.Contains(string(raw), `"bullets"`) {
		t.Errorf("prose slide emitted bullets field: %s", raw)
	}
}

func TestSlideTypeValid(t *testing.T) {
	for _, st := range SlideTypes {
		if !st.Valid() {
			t.Errorf("%q should be valid", st)
		}
	}
	if SlideType("hero").Valid() {
		t.Error("unknown type reported valid")
	}
}
