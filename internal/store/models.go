package store

import (
	"encoding/json"
	"time"
)

type User struct {
	ID             int64     `json:"id"`
	ExternalUserID string    `json:"external_user_id"`
	PasswordHash   string    `json:"-"` // Do not expose this in JSON responses
	CreatedAt      time.Time `json:"created_at"`
}

type SlideType string

const (
	SlideCover     SlideType = "cover"
	SlideTitle     SlideType = "title"
	SlideContent   SlideType = "content"
	SlideCTA       SlideType = "cta"
	SlideSubscribe SlideType = "subscribe"
)

// SlideTypes lists every archetype the renderer knows about.
var SlideTypes = []SlideType{SlideCover, SlideTitle, SlideContent, SlideCTA, SlideSubscribe}

func (t SlideType) Valid() bool {
	for _, known := range SlideTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Body is the main text of a slide: either Prose or Bullets, never both.
// A nil Body means the slide has no body region.
type Body interface {
	isBody()
}

type Prose struct {
	Text string
}

type Bullets struct {
	Items []string
}

func (Prose) isBody()   {}
func (Bullets) isBody() {}

// BodyFromFields builds a Body from the two optional wire fields. Bullets win
// when a record carries both.
func BodyFromFields(content *string, bullets []string) Body {
	if len(bullets) > 0 {
		items := make([]string, len(bullets))
		copy(items, bullets)
		return Bullets{Items: items}
	}
	if content != nil && *content != "" {
		return Prose{Text: *content}
	}
	return nil
}

// BodyFields is the inverse of BodyFromFields.
func BodyFields(b Body) (content *string, bullets []string) {
	switch v := b.(type) {
	case Prose:
		text := v.Text
		return &text, nil
	case Bullets:
		return nil, v.Items
	}
	return nil, nil
}

type Slide struct {
	ID          string    `json:"id"`
	CarouselID  string    `json:"carousel_id"`
	SlideNumber int       `json:"slide_number"`
	Type        SlideType `json:"type"`
	Title       string    `json:"title"`
	Subtitle    *string   `json:"subtitle"`
	Body        Body      `json:"-"`
	Stats       *string   `json:"stats"`
	IsEdited    bool      `json:"is_edited"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type slideJSON struct {
	ID          string    `json:"id"`
	CarouselID  string    `json:"carousel_id"`
	SlideNumber int       `json:"slide_number"`
	Type        SlideType `json:"type"`
	Title       string    `json:"title"`
	Subtitle    *string   `json:"subtitle"`
	Content     *string   `json:"content,omitempty"`
	Bullets     []string  `json:"bullets,omitempty"`
	Stats       *string   `json:"stats"`
	IsEdited    bool      `json:"is_edited"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s Slide) MarshalJSON() ([]byte, error) {
	content, bullets := BodyFields(s.Body)
	return json.Marshal(slideJSON{
		ID:          s.ID,
		CarouselID:  s.CarouselID,
		SlideNumber: s.SlideNumber,
		Type:        s.Type,
		Title:       s.Title,
		Subtitle:    s.Subtitle,
		Content:     content,
		Bullets:     bullets,
		Stats:       s.Stats,
		IsEdited:    s.IsEdited,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	})
}

func (s *Slide) UnmarshalJSON(data []byte) error {
	var raw slideJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Slide{
		ID:          raw.ID,
		CarouselID:  raw.CarouselID,
		SlideNumber: raw.SlideNumber,
		Type:        raw.Type,
		Title:       raw.Title,
		Subtitle:    raw.Subtitle,
		Body:        BodyFromFields(raw.Content, raw.Bullets),
		Stats:       raw.Stats,
		IsEdited:    raw.IsEdited,
		CreatedAt:   raw.CreatedAt,
		UpdatedAt:   raw.UpdatedAt,
	}
	return nil
}

type CarouselStatus string

const (
	StatusDraft    CarouselStatus = "draft"
	StatusExported CarouselStatus = "exported"
)

type Language string

const (
	LanguageFrench  Language = "fr"
	LanguageEnglish Language = "en"
)

type ContentFormat string

const (
	FormatBullets   ContentFormat = "bullets"
	FormatParagraph ContentFormat = "paragraph"
)

type ContentLength string

const (
	LengthShort  ContentLength = "short"
	LengthMedium ContentLength = "medium"
	LengthLong   ContentLength = "long"
	LengthAuto   ContentLength = "auto"
)

type Carousel struct {
	ID            string         `json:"id"` // UUID
	UserID        int64          `json:"user_id"`
	Title         string         `json:"title"`
	Subject       string         `json:"subject"`
	Status        CarouselStatus `json:"status"`
	SlideCount    int            `json:"slide_count"`
	Language      Language       `json:"language"`
	ContentFormat ContentFormat  `json:"content_format"`
	ContentLength ContentLength  `json:"content_length"`
	Sources       string         `json:"sources,omitempty"`
	Hashtags      []string       `json:"hashtags"`
	PDFURL        *string        `json:"pdf_url"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Slides        []Slide        `json:"slides,omitempty"`
}

type Alignment string

const (
	AlignCentered Alignment = "centered"
	AlignStart    Alignment = "start"
)

type SignaturePosition string

const (
	SignatureBottomRight SignaturePosition = "bottom-right"
	SignatureBottomLeft  SignaturePosition = "bottom-left"
)

type ContentStyle string

const (
	ContentSplit    ContentStyle = "split"
	ContentCombined ContentStyle = "combined"
)

const DefaultPrimaryColor = "#0A66C2"

// UserSettings holds the per-user visual style applied to every rendered slide.
type UserSettings struct {
	ID                string            `json:"id"`
	UserID            int64             `json:"user_id"`
	PrimaryColor      string            `json:"primary_color"`
	ShowSignature     bool              `json:"show_signature"`
	SignatureName     string            `json:"signature_name"`
	CoverAlignment    Alignment         `json:"cover_alignment"`
	SignaturePosition SignaturePosition `json:"signature_position"`
	ContentStyle      ContentStyle      `json:"content_style"`
	ShowSlideNumbers  bool              `json:"show_slide_numbers"`
	ContentAlignment  Alignment         `json:"content_alignment"`
	EndPageTitle      string            `json:"end_page_title"`
	EndPageSubtitle   string            `json:"end_page_subtitle"`
	EndPageCTA        string            `json:"end_page_cta"`
	EndPageContact    string            `json:"end_page_contact"`
	EndPageImage      string            `json:"end_page_image"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func DefaultSettings() UserSettings {
	return UserSettings{
		PrimaryColor:      DefaultPrimaryColor,
		ShowSignature:     false,
		CoverAlignment:    AlignCentered,
		SignaturePosition: SignatureBottomRight,
		ContentStyle:      ContentSplit,
		ShowSlideNumbers:  true,
		ContentAlignment:  AlignCentered,
		EndPageTitle:      "Your Name",
		EndPageSubtitle:   "Follow me for more content",
		EndPageCTA:        "Follow for more content",
	}
}

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
)

type Subscription struct {
	ID                    string             `json:"id"`
	UserID                int64              `json:"user_id"`
	Status                SubscriptionStatus `json:"status"`
	SubscriptionType      string             `json:"subscription_type"`
	AmountPaid            int64              `json:"amount_paid"`
	StripeCustomerID      string             `json:"stripe_customer_id,omitempty"`
	StripePaymentIntentID string             `json:"stripe_payment_intent_id,omitempty"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
}

// SubscriptionConfig is the single global pricing row. Amounts are in cents.
type SubscriptionConfig struct {
	LifetimePrice int64     `json:"lifetime_price"`
	UpdatedAt     time.Time `json:"updated_at"`
}
