package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"carouselcraft.io/carousel-studio/internal/store"
)

const (
	autoSlideCount   = 7
	minimumSlides    = 5
	subscribeHeading = "Found this useful?"
)

type GenerateRequest struct {
	Subject       string
	SlideCount    int // 0 lets the model choose
	Language      store.Language
	ContentFormat store.ContentFormat
	ContentLength store.ContentLength
	ContentStyle  store.ContentStyle
	Sources       string
}

// targetSlides is the slide count the prompt and the fallback work with.
func (r GenerateRequest) targetSlides() int {
	switch {
	case r.SlideCount == 0:
		return autoSlideCount
	case r.SlideCount < 3:
		return minimumSlides
	}
	return r.SlideCount
}

type GeneratedCarousel struct {
	Title    string
	Slides   []store.Slide
	Hashtags []string
	Fallback bool
}

// SlideRewrite is the replacement content for one slide.
type SlideRewrite struct {
	Title    string
	Subtitle *string
	Body     store.Body
	Stats    *string
}

// Generator turns a subject into slides using a TextGenerator.
type Generator struct {
	llm TextGenerator
}

func NewGenerator(llm TextGenerator) *Generator {
	return &Generator{llm: llm}
}

type modelSlide struct {
	SlideNumber int      `json:"slide_number"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Subtitle    *string  `json:"subtitle"`
	Bullets     []string `json:"bullets"`
	Content     *string  `json:"content"`
	Stats       *string  `json:"stats"`
}

type modelCarousel struct {
	Title    string       `json:"title"`
	Slides   []modelSlide `json:"slides"`
	Hashtags []string     `json:"hashtags"`
}

// Generate never fails: any model or parse error yields the fallback
// carousel for the request.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) *GeneratedCarousel {
	target := req.targetSlides()
	out, err := g.generate(ctx, req, target)
	if err != nil {
		if errors.Is(err, ErrLLMUnavailable) {
			log.Printf("Generator: no model configured, using fallback for %q", req.Subject)
		} else {
			log.Printf("Generator: falling back for %q: %v", req.Subject, err)
		}
		out = Fallback(req.Subject, target)
	}
	if req.ContentStyle != store.ContentCombined {
		out.Slides = splitContentSlides(out.Slides)
	}
	return out
}

func (g *Generator) generate(ctx context.Context, req GenerateRequest, target int) (*GeneratedCarousel, error) {
	if g.llm == nil {
		return nil, ErrLLMUnavailable
	}
	text, err := g.llm.GenerateText(ctx, carouselSystemPrompt, buildCarouselPrompt(req, target))
	if err != nil {
		return nil, err
	}

	var mc modelCarousel
	if err := decodeModelJSON(text, &mc); err != nil {
		return nil, err
	}
	if strings.TrimSpace(mc.Title) == "" || len(mc.Slides) == 0 || mc.Hashtags == nil {
		return nil, errors.New("model response is missing title, slides or hashtags")
	}
	if req.SlideCount != 0 && len(mc.Slides) != target-1 {
		log.Printf("Generator: expected %d slides before the subscribe slide, got %d", target-1, len(mc.Slides))
	}

	slides := make([]store.Slide, 0, len(mc.Slides)+1)
	for i, ms := range mc.Slides {
		typ := store.SlideType(strings.ToLower(strings.TrimSpace(ms.Type)))
		switch {
		case i == 0 && typ != store.SlideCover:
			log.Printf("Generator: first slide came back as %q, using it as the cover", ms.Type)
			typ = store.SlideCover
		case i > 0 && typ == store.SlideCover:
			log.Printf("Generator: extra cover at position %d demoted to content", i+1)
			typ = store.SlideContent
		case !typ.Valid(), typ == store.SlideSubscribe:
			typ = store.SlideContent
		}
		slides = append(slides, store.Slide{
			Type:     typ,
			Title:    strings.TrimSpace(ms.Title),
			Subtitle: nonEmpty(ms.Subtitle),
			Body:     bodyForFormat(ms.Content, ms.Bullets, req.ContentFormat),
			Stats:    nonEmpty(ms.Stats),
		})
	}
	slides = append(slides, store.Slide{Type: store.SlideSubscribe, Title: subscribeHeading})
	renumber(slides)

	return &GeneratedCarousel{
		Title:    strings.TrimSpace(mc.Title),
		Slides:   slides,
		Hashtags: mc.Hashtags,
	}, nil
}

// RegenerateSlide asks the model for new content for one slide. Failures are
// returned as is; there is no fallback.
func (g *Generator) RegenerateSlide(ctx context.Context, c *store.Carousel, slide *store.Slide, guidance string) (*SlideRewrite, error) {
	if g.llm == nil {
		return nil, ErrLLMUnavailable
	}
	text, err := g.llm.GenerateText(ctx, regenerateSystemPrompt, buildRegeneratePrompt(c, slide, guidance))
	if err != nil {
		return nil, fmt.Errorf("failed to regenerate slide %d: %w", slide.SlideNumber, err)
	}

	var ms modelSlide
	if err := decodeModelJSON(text, &ms); err != nil {
		return nil, fmt.Errorf("failed to regenerate slide %d: %w", slide.SlideNumber, err)
	}
	title := strings.TrimSpace(ms.Title)
	if title == "" {
		return nil, fmt.Errorf("failed to regenerate slide %d: model returned no title", slide.SlideNumber)
	}
	return &SlideRewrite{
		Title:    title,
		Subtitle: nonEmpty(ms.Subtitle),
		Body:     bodyForFormat(ms.Content, ms.Bullets, c.ContentFormat),
		Stats:    nonEmpty(ms.Stats),
	}, nil
}

var (
	fencedJSON = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")
	bareObject = regexp.MustCompile(`\{[\s\S]*\}`)
)

// extractJSON finds the JSON object in a model reply: a fenced block first,
// then the outermost braces.
func extractJSON(text string) (string, error) {
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		if inner := strings.TrimSpace(m[1]); strings.HasPrefix(inner, "{") {
			return inner, nil
		}
	}
	if m := bareObject.FindString(text); m != "" {
		return m, nil
	}
	return "", errors.New("no JSON object found in model response")
}

func decodeModelJSON(text string, v any) error {
	raw, err := extractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("failed to parse model JSON: %w", err)
	}
	return nil
}

// bodyForFormat picks the field matching the requested format when the model
// filled both, and whichever is present otherwise.
func bodyForFormat(content *string, bullets []string, format store.ContentFormat) store.Body {
	content = nonEmpty(content)
	var items []string
	for _, b := range bullets {
		if b = strings.TrimSpace(b); b != "" {
			items = append(items, b)
		}
	}
	if content != nil && len(items) > 0 {
		if format == store.FormatParagraph {
			return store.Prose{Text: *content}
		}
		return store.Bullets{Items: items}
	}
	return store.BodyFromFields(content, items)
}

// splitContentSlides turns each content slide into a title slide carrying the
// heading and stats, followed by a content slide carrying the body as prose.
func splitContentSlides(slides []store.Slide) []store.Slide {
	out := make([]store.Slide, 0, len(slides)*2)
	for _, s := range slides {
		if s.Type != store.SlideContent {
			out = append(out, s)
			continue
		}
		out = append(out, store.Slide{Type: store.SlideTitle, Title: s.Title, Stats: s.Stats})

		var text string
		switch b := s.Body.(type) {
		case store.Prose:
			text = b.Text
		case store.Bullets:
			text = strings.Join(b.Items, "\n\n")
		}
		body := store.Body(nil)
		if text != "" {
			body = store.Prose{Text: text}
		}
		out = append(out, store.Slide{Type: store.SlideContent, Body: body})
	}
	renumber(out)
	return out
}

func renumber(slides []store.Slide) {
	for i := range slides {
		slides[i].SlideNumber = i + 1
	}
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
