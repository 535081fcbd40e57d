package core

import (
	"fmt"
	"strings"

	"carouselcraft.io/carousel-studio/internal/store"
)

const carouselSystemPrompt = `You write LinkedIn carousels and reply with JSON only.

The JSON object has this shape:
{
  "title": "carousel title",
  "slides": [
    {
      "slide_number": 1,
      "type": "cover" | "content" | "cta",
      "title": "slide title",
      "subtitle": "optional subtitle",
      "bullets": ["point one", "point two"],
      "content": "paragraph text",
      "stats": "optional figure or data point"
    }
  ],
  "hashtags": ["#Tag1", "#Tag2", "#Tag3"]
}

Each slide carries EITHER "bullets" OR "content", never both. Use **double asterisks** to highlight key words.
Return ONLY valid JSON, with no commentary before or after it.`

const carouselPromptTemplate = `%s

You are a marketing and growth expert who turns a subject into an engaging LinkedIn carousel.
Cover strategy, key decisions, figures and lessons learned.

STRUCTURE:
- Slide 1: cover with a hook title and a subtitle
- Slides 2 to %d: content slides, one idea each
- Slide %d: call to action that sums up the takeaway
- Slide %d: a follow/subscribe slide is added automatically, do not write it

CONTENT SLIDES:
- Title of 6 words maximum
- Highlight figures in "stats" when they exist
- Separate paragraphs with a blank line ("\n\n")

CONTENT LENGTH: %s

%s
%s%s`

var languageInstructions = map[store.Language]string{
	store.LanguageFrench:  "LANGUAGE: Write every title, bullet, paragraph and hashtag in French.",
	store.LanguageEnglish: "LANGUAGE: Write every title, bullet, paragraph and hashtag in English.",
}

// languageInstruction defaults to French.
func languageInstruction(l store.Language) string {
	if text, ok := languageInstructions[l]; ok {
		return text
	}
	return languageInstructions[store.LanguageFrench]
}

var lengthInstructions = map[store.ContentLength]string{
	store.LengthShort:  "Keep content concise and punchy. Paragraphs: 2-3 lines max. Bullets: 2-3 items, very brief.",
	store.LengthMedium: "Balanced content length. Paragraphs: 3-4 lines. Bullets: 3-4 items with moderate detail.",
	store.LengthLong:   "Detailed and comprehensive content. Paragraphs: 4-6 lines. Bullets: 4-5 items with full explanations.",
	store.LengthAuto:   "Choose the optimal content length based on the complexity of each point.",
}

const paragraphFormat = `FORMAT: PARAGRAPHS
Write every content slide as short prose in "content" and leave "bullets" out. At most 2 sentences per paragraph.
Example: {"slide_number": 2, "type": "content", "title": "Start with one channel", "content": "They ignored every network but one.\n\n**Focus** beat reach."}`

const bulletFormat = `FORMAT: BULLETS
Write every content slide as 3 to 5 items in "bullets" and leave "content" out. Each item is 80 characters at most.
Example: {"slide_number": 2, "type": "content", "title": "Start with one channel", "bullets": ["Ignored every network but one", "**Focus** beat reach"]}`

const autoModeInstruction = "\nSLIDE COUNT: choose between 5 and 12 slides in total, whatever the subject needs.\n"

func buildCarouselPrompt(req GenerateRequest, slideCount int) string {
	lang := languageInstruction(req.Language)
	length := lengthInstructions[req.ContentLength]
	if length == "" {
		length = lengthInstructions[store.LengthAuto]
	}
	format := bulletFormat
	if req.ContentFormat == store.FormatParagraph {
		format = paragraphFormat
	}
	auto := ""
	if req.SlideCount == 0 {
		auto = autoModeInstruction
	}
	sources := ""
	if s := strings.TrimSpace(req.Sources); s != "" {
		sources = fmt.Sprintf("\nIMPORTANT DATA & SOURCES:\n%s\n\nUse these data points and cite figures from them where relevant.\n", s)
	}

	body := fmt.Sprintf(carouselPromptTemplate, lang, slideCount-2, slideCount-1, slideCount, length, format, auto, sources)
	return fmt.Sprintf("%s\n\nSubject: %s\nSlide count: %d", body, req.Subject, slideCount)
}

const regenerateSystemPrompt = `You rewrite a single slide of a LinkedIn carousel and reply with JSON only.

The JSON object has this shape:
{
  "title": "slide title",
  "subtitle": "optional subtitle",
  "bullets": ["point one", "point two"],
  "content": "paragraph text",
  "stats": "optional figure or data point"
}

Use EITHER "bullets" OR "content", never both. Use **double asterisks** to highlight key words.
Return ONLY valid JSON.`

func buildRegeneratePrompt(c *store.Carousel, slide *store.Slide, guidance string) string {
	var b strings.Builder
	b.WriteString(languageInstruction(c.Language))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "You are regenerating slide %d of a %d-slide LinkedIn carousel about: %s\n", slide.SlideNumber, c.SlideCount, c.Subject)
	fmt.Fprintf(&b, "Slide type: %s\nCurrent title: %s\n", slide.Type, slide.Title)
	if g := strings.TrimSpace(guidance); g != "" {
		fmt.Fprintf(&b, "\nUSER GUIDANCE: %s\n", g)
	}
	if length, ok := lengthInstructions[c.ContentLength]; ok {
		fmt.Fprintf(&b, "CONTENT LENGTH: %s\n", length)
	}
	b.WriteString("\n")
	if c.ContentFormat == store.FormatParagraph {
		b.WriteString(paragraphFormat)
	} else {
		b.WriteString(bulletFormat)
	}
	if s := strings.TrimSpace(c.Sources); s != "" {
		fmt.Fprintf(&b, "\n\nIMPORTANT DATA & SOURCES:\n%s\n", s)
	}
	return b.String()
}
