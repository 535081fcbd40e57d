package render

import (
	"image/color"

	"carouselcraft.io/carousel-studio/internal/store"
)

type Align int

const (
	AlignCenter Align = iota
	AlignStart
)

// TextStyle selects a type scale. Pixel sizes belong to the rasterizer.
type TextStyle int

const (
	StyleDisplay TextStyle = iota
	StyleHeading
	StyleSubheading
	StyleBody
	StyleHighlight
	StyleCaption
)

type Run struct {
	Text string
	Bold bool
}

type Paragraph struct {
	Runs []Run
}

// PlainText concatenates the run texts.
func (p Paragraph) PlainText() string {
	var n int
	for _, r := range p.Runs {
		n += len(r.Text)
	}
	buf := make([]byte, 0, n)
	for _, r := range p.Runs {
		buf = append(buf, r.Text...)
	}
	return string(buf)
}

// Block is one vertically stacked element of a slide.
type Block interface {
	block()
}

type Text struct {
	Style      TextStyle
	Color      color.RGBA
	Paragraphs []Paragraph
}

type BulletList struct {
	Marker      string
	MarkerColor color.RGBA
	Color       color.RGBA
	Items       []Paragraph
}

type Avatar struct {
	ImageURL string
	Initials string
	Ring     color.RGBA
	Fill     color.RGBA
}

func (Text) block()       {}
func (BulletList) block() {}
func (Avatar) block()     {}

type Background struct {
	From color.RGBA
	To   color.RGBA
}

func (b Background) Solid() bool { return b.From == b.To }

type Corner int

const (
	CornerBottomRight Corner = iota
	CornerBottomLeft
)

type Signature struct {
	Text   string
	Corner Corner
	Color  color.RGBA
}

type Counter struct {
	Text  string
	Color color.RGBA
}

// Layout is the deterministic description of one square slide.
type Layout struct {
	Type       store.SlideType
	Background Background
	Align      Align
	Blocks     []Block
	Signature  *Signature
	Counter    *Counter

	Continuation      bool
	ContinuationColor color.RGBA
}
