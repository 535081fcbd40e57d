package raster

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"carouselcraft.io/carousel-studio/internal/render"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var styleSizes = map[render.TextStyle]float64{
	render.StyleDisplay:    72,
	render.StyleHeading:    60,
	render.StyleSubheading: 40,
	render.StyleBody:       34,
	render.StyleHighlight:  44,
	render.StyleCaption:    28,
}

const lineSpacing = 1.35

type faceKey struct {
	bold bool
	size int
}

// fontSet owns the parsed Go fonts and a cache of sized faces. Parsed fonts
// may be shared; faces keep scratch buffers and belong to one goroutine, so
// each Draw works on its own set from forDraw.
type fontSet struct {
	regular *opentype.Font
	bold    *opentype.Font
	faces   map[faceKey]font.Face
}

func newFontSet() (*fontSet, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	return &fontSet{regular: regular, bold: bold, faces: make(map[faceKey]font.Face)}, nil
}

// forDraw returns a set sharing the parsed fonts with an empty face cache.
func (fs *fontSet) forDraw() *fontSet {
	return &fontSet{regular: fs.regular, bold: fs.bold, faces: make(map[faceKey]font.Face)}
}

func (fs *fontSet) face(bold bool, size int) (font.Face, error) {
	if size < 8 {
		size = 8
	}
	key := faceKey{bold: bold, size: size}
	if f, ok := fs.faces[key]; ok {
		return f, nil
	}

	src := fs.regular
	if bold {
		src = fs.bold
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("failed to create %dpx face: %w", size, err)
	}
	fs.faces[key] = f
	return f, nil
}

type token struct {
	text        string
	bold        bool
	spaceBefore bool
	hardBreak   bool
}

type segment struct {
	text  string
	bold  bool
	x     fixed.Int26_6
	width fixed.Int26_6
}

type textLine struct {
	segments []segment
	width    fixed.Int26_6
}

// tokenize splits runs into words, remembering where whitespace separated
// them so bold and regular words glue back together correctly.
func tokenize(p render.Paragraph) []token {
	var tokens []token
	pendingSpace := false
	for _, run := range p.Runs {
		lines := strings.Split(run.Text, "\n")
		for li, part := range lines {
			if li > 0 {
				tokens = append(tokens, token{hardBreak: true})
				pendingSpace = false
			}
			if part == "" {
				continue
			}
			first, _ := utf8.DecodeRuneInString(part)
			last, _ := utf8.DecodeLastRuneInString(part)
			words := strings.Fields(part)
			for wi, w := range words {
				space := true
				if wi == 0 {
					space = pendingSpace || unicode.IsSpace(first)
				}
				tokens = append(tokens, token{text: w, bold: run.Bold, spaceBefore: space})
			}
			pendingSpace = unicode.IsSpace(last) || len(words) == 0 && pendingSpace
		}
	}
	return tokens
}

// wrap lays a paragraph out into lines no wider than maxWidth. A single word
// wider than maxWidth gets a line of its own.
func (fs *fontSet) wrap(p render.Paragraph, size int, forceBold bool, maxWidth fixed.Int26_6) ([]textLine, error) {
	regular, err := fs.face(forceBold, size)
	if err != nil {
		return nil, err
	}
	boldFace, err := fs.face(true, size)
	if err != nil {
		return nil, err
	}
	spaceWidth := font.MeasureString(regular, " ")

	var lines []textLine
	var cur textLine
	flush := func() {
		lines = append(lines, cur)
		cur = textLine{}
	}

	for _, tok := range tokenize(p) {
		if tok.hardBreak {
			flush()
			continue
		}
		face := regular
		bold := forceBold || tok.bold
		if bold {
			face = boldFace
		}
		w := font.MeasureString(face, tok.text)

		gap := fixed.Int26_6(0)
		if len(cur.segments) > 0 && tok.spaceBefore {
			gap = spaceWidth
		}
		if len(cur.segments) > 0 && cur.width+gap+w > maxWidth {
			flush()
			gap = 0
		}
		cur.segments = append(cur.segments, segment{text: tok.text, bold: bold, x: cur.width + gap, width: w})
		cur.width += gap + w
	}
	if len(cur.segments) > 0 || len(lines) == 0 {
		flush()
	}
	return lines, nil
}

func lineHeight(size int) int {
	return int(float64(size)*lineSpacing + 0.5)
}
