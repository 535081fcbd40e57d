// Package render turns a slide and the user's style settings into a Layout.
// Rendering is pure: the same inputs always give the same Layout and nothing
// here performs I/O or returns an error.
package render

import (
	"fmt"
	"image/color"
	"strings"
	"unicode"

	"carouselcraft.io/carousel-studio/internal/store"
)

const bulletMarker = "→"

// Render builds the layout of slide within a deck of totalSlides slides.
// Missing fields leave their region empty. Boolean toggles are taken as
// given, so callers building settings by hand should start from
// store.DefaultSettings() rather than a zero UserSettings.
func Render(slide store.Slide, settings store.UserSettings, totalSlides int) Layout {
	settings = withDefaults(settings)
	if totalSlides < 1 {
		totalSlides = 1
	}
	primary := primaryColor(settings)

	var l Layout
	switch slide.Type {
	case store.SlideCover:
		l = renderCover(slide, settings)
	case store.SlideTitle:
		l = renderTitle(slide, settings, totalSlides)
	case store.SlideContent:
		l = renderContent(slide, settings, totalSlides)
	case store.SlideCTA:
		l = renderCTA(slide, settings)
	case store.SlideSubscribe:
		l = renderSubscribe(slide, settings)
	default:
		l = renderContent(slide, settings, totalSlides)
	}

	l.Continuation = slide.SlideNumber < totalSlides
	if l.Background.Solid() {
		l.ContinuationColor = primary
	} else {
		l.ContinuationColor = white
	}
	return l
}

// withDefaults fills zero-valued enum and text fields so partially populated
// settings still render like the stored defaults. ShowSignature and
// ShowSlideNumbers are left alone because false is a valid choice.
func withDefaults(s store.UserSettings) store.UserSettings {
	d := store.DefaultSettings()
	if s.PrimaryColor == "" {
		s.PrimaryColor = d.PrimaryColor
	}
	if s.CoverAlignment == "" {
		s.CoverAlignment = d.CoverAlignment
	}
	if s.ContentAlignment == "" {
		s.ContentAlignment = d.ContentAlignment
	}
	if s.SignaturePosition == "" {
		s.SignaturePosition = d.SignaturePosition
	}
	if s.ContentStyle == "" {
		s.ContentStyle = d.ContentStyle
	}
	return s
}

func alignFor(a store.Alignment) Align {
	if a == store.AlignStart {
		return AlignStart
	}
	return AlignCenter
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func renderCover(slide store.Slide, settings store.UserSettings) Layout {
	l := Layout{
		Type:       store.SlideCover,
		Background: Background{From: white, To: white},
		Align:      alignFor(settings.CoverAlignment),
	}
	if title := strings.TrimSpace(slide.Title); title != "" {
		l.Blocks = append(l.Blocks, Text{Style: StyleDisplay, Color: gray900, Paragraphs: plainParagraph(title)})
	}
	if sub := deref(slide.Subtitle); sub != "" {
		l.Blocks = append(l.Blocks, Text{Style: StyleSubheading, Color: gray600, Paragraphs: plainParagraph(sub)})
	}

	if settings.ShowSignature && strings.TrimSpace(settings.SignatureName) != "" {
		corner := CornerBottomRight
		if settings.SignaturePosition == store.SignatureBottomLeft {
			corner = CornerBottomLeft
		}
		l.Signature = &Signature{Text: strings.TrimSpace(settings.SignatureName), Corner: corner, Color: gray700}
	}
	return l
}

func renderTitle(slide store.Slide, settings store.UserSettings, total int) Layout {
	l := Layout{
		Type:       store.SlideTitle,
		Background: Gradient(primaryColor(settings)),
		Align:      AlignCenter,
	}
	if title := strings.TrimSpace(slide.Title); title != "" {
		l.Blocks = append(l.Blocks, Text{Style: StyleDisplay, Color: white, Paragraphs: plainParagraph(title)})
	}
	if stats := deref(slide.Stats); stats != "" {
		l.Blocks = append(l.Blocks, Text{Style: StyleHighlight, Color: white, Paragraphs: plainParagraph(stats)})
	}
	if settings.ShowSlideNumbers {
		l.Counter = &Counter{Text: fmt.Sprintf("%d / %d", slide.SlideNumber, total), Color: white}
	}
	return l
}

func renderContent(slide store.Slide, settings store.UserSettings, total int) Layout {
	primary := primaryColor(settings)
	l := Layout{
		Type:       store.SlideContent,
		Background: Background{From: white, To: white},
		Align:      alignFor(settings.ContentAlignment),
	}
	if title := strings.TrimSpace(slide.Title); title != "" {
		l.Blocks = append(l.Blocks, Text{Style: StyleHeading, Color: gray900, Paragraphs: plainParagraph(title)})
	}
	if stats := deref(slide.Stats); stats != "" {
		l.Blocks = append(l.Blocks, Text{Style: StyleHighlight, Color: primary, Paragraphs: plainParagraph(stats)})
	}
	if sub := deref(slide.Subtitle); sub != "" {
		l.Blocks = append(l.Blocks, Text{Style: StyleSubheading, Color: gray900, Paragraphs: ParseMarkup(sub)})
	}
	if body := bodyBlock(slide.Body, gray700, primary); body != nil {
		l.Blocks = append(l.Blocks, body)
	}
	if settings.ShowSlideNumbers {
		l.Counter = &Counter{Text: fmt.Sprintf("%d/%d", slide.SlideNumber, total), Color: gray400}
	}
	return l
}

func renderCTA(slide store.Slide, settings store.UserSettings) Layout {
	l := Layout{
		Type:       store.SlideCTA,
		Background: Gradient(primaryColor(settings)),
		Align:      AlignCenter,
	}
	if title := strings.TrimSpace(slide.Title); title != "" {
		l.Blocks = append(l.Blocks, Text{Style: StyleHeading, Color: white, Paragraphs: plainParagraph(title)})
	}
	if sub := deref(slide.Subtitle); sub != "" {
		l.Blocks = append(l.Blocks, Text{Style: StyleSubheading, Color: white, Paragraphs: ParseMarkup(sub)})
	}
	if body := bodyBlock(slide.Body, white, white); body != nil {
		l.Blocks = append(l.Blocks, body)
	}
	return l
}

func renderSubscribe(slide store.Slide, settings store.UserSettings) Layout {
	primary := primaryColor(settings)
	l := Layout{
		Type:       store.SlideSubscribe,
		Background: Background{From: white, To: white},
		Align:      AlignCenter,
	}
	if heading := strings.TrimSpace(slide.Title); heading != "" {
		l.Blocks = append(l.Blocks, Text{Style: StyleCaption, Color: primary, Paragraphs: plainParagraph(heading)})
	}
	l.Blocks = append(l.Blocks, Avatar{
		ImageURL: strings.TrimSpace(settings.EndPageImage),
		Initials: initials(settings.EndPageTitle),
		Ring:     primary,
		Fill:     gray100,
	})
	if t := strings.TrimSpace(settings.EndPageTitle); t != "" {
		l.Blocks = append(l.Blocks, Text{Style: StyleDisplay, Color: gray900, Paragraphs: plainParagraph(t)})
	}
	if st := strings.TrimSpace(settings.EndPageSubtitle); st != "" {
		l.Blocks = append(l.Blocks, Text{Style: StyleSubheading, Color: gray600, Paragraphs: plainParagraph(st)})
	}
	if cta := strings.TrimSpace(settings.EndPageCTA); cta != "" {
		l.Blocks = append(l.Blocks, Text{Style: StyleHighlight, Color: primary, Paragraphs: plainParagraph(cta)})
	}
	if contact := strings.TrimSpace(settings.EndPageContact); contact != "" {
		l.Blocks = append(l.Blocks, Text{Style: StyleCaption, Color: gray600, Paragraphs: plainParagraph(contact)})
	}
	return l
}

// bodyBlock returns nil when the slide has no usable body.
func bodyBlock(body store.Body, textColor, markerColor color.RGBA) Block {
	switch b := body.(type) {
	case store.Prose:
		paragraphs := ParseMarkup(b.Text)
		if len(paragraphs) == 0 {
			return nil
		}
		return Text{Style: StyleBody, Color: textColor, Paragraphs: paragraphs}
	case store.Bullets:
		var items []Paragraph
		for _, item := range b.Items {
			if strings.TrimSpace(item) == "" {
				continue
			}
			items = append(items, Paragraph{Runs: parseRuns(item)})
		}
		if len(items) == 0 {
			return nil
		}
		return BulletList{Marker: bulletMarker, MarkerColor: markerColor, Color: textColor, Items: items}
	}
	return nil
}

func initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				out = append(out, unicode.ToUpper(r))
				break
			}
		}
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}
