package core

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"carouselcraft.io/carousel-studio/internal/export"
	"carouselcraft.io/carousel-studio/internal/raster"
	"carouselcraft.io/carousel-studio/internal/render"
	"carouselcraft.io/carousel-studio/internal/storage"
	"carouselcraft.io/carousel-studio/internal/store"
	"golang.org/x/sync/singleflight"
)

const (
	minSubjectLength = 3
	maxSourcesLength = 5000
	maxSlideCount    = 15
	maxTitleLength   = 100
	maxLineLength    = 100 // subtitle and stats
	maxBullets       = 5
	maxBulletLength  = 80
	maxContentLength = 500
	maxGuidance      = 300
)

type CreateCarouselRequest struct {
	Subject       string              `json:"subject"`
	Sources       string              `json:"sources,omitempty"`
	SlideCount    int                 `json:"slide_count"`
	Language      store.Language      `json:"language"`
	ContentFormat store.ContentFormat `json:"content_format"`
	ContentLength store.ContentLength `json:"content_length"`
}

// SlideEdit is a manual edit of one slide. Content and Bullets are exclusive.
type SlideEdit struct {
	Title    string   `json:"title"`
	Subtitle *string  `json:"subtitle"`
	Content  *string  `json:"content"`
	Bullets  []string `json:"bullets"`
	Stats    *string  `json:"stats"`
}

type ExportedDocument struct {
	FileName string
	Document []byte
	URL      string
	Pages    int
	Skipped  []int
}

type CarouselService struct {
	dbStore       *store.SQLiteStore
	generator     *Generator
	settings      *SettingsService
	subscriptions *SubscriptionService
	rasterizer    *raster.Rasterizer
	exporter      *export.Exporter
	storer        storage.ContentStorer
	exports       singleflight.Group
	now           func() time.Time
}

func NewCarouselService(
	db *store.SQLiteStore,
	generator *Generator,
	settings *SettingsService,
	subscriptions *SubscriptionService,
	rasterizer *raster.Rasterizer,
	exporter *export.Exporter,
	storer storage.ContentStorer,
) *CarouselService {
	return &CarouselService{
		dbStore:       db,
		generator:     generator,
		settings:      settings,
		subscriptions: subscriptions,
		rasterizer:    rasterizer,
		exporter:      exporter,
		storer:        storer,
		now:           time.Now,
	}
}

func (req *CreateCarouselRequest) normalize() error {
	req.Subject = strings.TrimSpace(req.Subject)
	if utf8.RuneCountInString(req.Subject) < minSubjectLength {
		return invalid("subject", "must be at least %d characters", minSubjectLength)
	}
	if utf8.RuneCountInString(req.Sources) > maxSourcesLength {
		return invalid("sources", "must be at most %d characters", maxSourcesLength)
	}
	if req.SlideCount < 0 || req.SlideCount > maxSlideCount {
		return invalid("slide_count", "must be between 0 (automatic) and %d", maxSlideCount)
	}

	switch req.Language {
	case "":
		req.Language = store.LanguageFrench
	case store.LanguageFrench, store.LanguageEnglish:
	default:
		return invalid("language", "must be %q or %q", store.LanguageFrench, store.LanguageEnglish)
	}
	switch req.ContentFormat {
	case "":
		req.ContentFormat = store.FormatBullets
	case store.FormatBullets, store.FormatParagraph:
	default:
		return invalid("content_format", "must be %q or %q", store.FormatBullets, store.FormatParagraph)
	}
	switch req.ContentLength {
	case "":
		req.ContentLength = store.LengthAuto
	case store.LengthShort, store.LengthMedium, store.LengthLong, store.LengthAuto:
	default:
		return invalid("content_length", "must be short, medium, long or auto")
	}
	return nil
}

// Generate creates and persists a carousel. Model failures fall back to the
// template carousel and never fail the request.
func (s *CarouselService) Generate(ctx context.Context, userID int64, req CreateCarouselRequest) (*store.Carousel, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(userID)
	if err != nil {
		return nil, err
	}

	generated := s.generator.Generate(ctx, GenerateRequest{
		Subject:       req.Subject,
		SlideCount:    req.SlideCount,
		Language:      req.Language,
		ContentFormat: req.ContentFormat,
		ContentLength: req.ContentLength,
		ContentStyle:  settings.ContentStyle,
		Sources:       req.Sources,
	})

	c := &store.Carousel{
		UserID:        userID,
		Title:         generated.Title,
		Subject:       req.Subject,
		SlideCount:    len(generated.Slides),
		Language:      req.Language,
		ContentFormat: req.ContentFormat,
		ContentLength: req.ContentLength,
		Sources:       req.Sources,
		Hashtags:      generated.Hashtags,
	}
	if err := s.dbStore.CreateCarousel(c); err != nil {
		return nil, fmt.Errorf("failed to create carousel: %w", err)
	}
	if err := s.dbStore.CreateSlides(c.ID, generated.Slides); err != nil {
		if delErr := s.dbStore.DeleteCarousel(c.ID, userID); delErr != nil {
			log.Printf("Failed to remove carousel %s after slide insert error: %v", c.ID, delErr)
		}
		return nil, fmt.Errorf("failed to create slides: %w", err)
	}
	c.Slides = generated.Slides
	return c, nil
}

func (s *CarouselService) List(userID int64) ([]store.Carousel, error) {
	return s.dbStore.GetCarouselsByUserID(userID)
}

// Get returns the carousel with its slides ordered by number.
func (s *CarouselService) Get(userID int64, carouselID string) (*store.Carousel, error) {
	c, err := s.dbStore.GetCarouselByID(carouselID, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("carousel %s: %w", carouselID, ErrNotFound)
	}
	slides, err := s.dbStore.GetSlidesByCarouselID(c.ID)
	if err != nil {
		return nil, err
	}
	c.Slides = slides
	return c, nil
}

func (s *CarouselService) Delete(userID int64, carouselID string) error {
	c, err := s.dbStore.GetCarouselByID(carouselID, userID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("carousel %s: %w", carouselID, ErrNotFound)
	}
	if err := s.dbStore.DeleteSlidesByCarouselID(c.ID); err != nil {
		return err
	}
	return s.dbStore.DeleteCarousel(c.ID, userID)
}

func (s *CarouselService) slide(userID int64, carouselID, slideID string) (*store.Carousel, *store.Slide, error) {
	c, err := s.dbStore.GetCarouselByID(carouselID, userID)
	if err != nil {
		return nil, nil, err
	}
	if c == nil {
		return nil, nil, fmt.Errorf("carousel %s: %w", carouselID, ErrNotFound)
	}
	sl, err := s.dbStore.GetSlideByID(slideID, c.ID)
	if err != nil {
		return nil, nil, err
	}
	if sl == nil {
		return nil, nil, fmt.Errorf("slide %s: %w", slideID, ErrNotFound)
	}
	return c, sl, nil
}

func (e *SlideEdit) validate() error {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return invalid("title", "is required")
	}
	if utf8.RuneCountInString(e.Title) > maxTitleLength {
		return invalid("title", "must be at most %d characters", maxTitleLength)
	}
	if e.Subtitle != nil && utf8.RuneCountInString(*e.Subtitle) > maxLineLength {
		return invalid("subtitle", "must be at most %d characters", maxLineLength)
	}
	if e.Stats != nil && utf8.RuneCountInString(*e.Stats) > maxLineLength {
		return invalid("stats", "must be at most %d characters", maxLineLength)
	}

	content := nonEmpty(e.Content)
	if content != nil && len(e.Bullets) > 0 {
		return invalid("content", "set either content or bullets, not both")
	}
	if content != nil && utf8.RuneCountInString(*content) > maxContentLength {
		return invalid("content", "must be at most %d characters", maxContentLength)
	}
	if len(e.Bullets) > maxBullets {
		return invalid("bullets", "at most %d bullets are allowed", maxBullets)
	}
	for i, b := range e.Bullets {
		b = strings.TrimSpace(b)
		if b == "" {
			return invalid("bullets", "bullet %d is empty", i+1)
		}
		if utf8.RuneCountInString(b) > maxBulletLength {
			return invalid("bullets", "bullet %d must be at most %d characters", i+1, maxBulletLength)
		}
		e.Bullets[i] = b
	}
	e.Content = content
	return nil
}

// EditSlide applies a manual edit. Nothing is written when validation fails.
func (s *CarouselService) EditSlide(userID int64, carouselID, slideID string, edit SlideEdit) (*store.Slide, error) {
	if err := edit.validate(); err != nil {
		return nil, err
	}
	_, sl, err := s.slide(userID, carouselID, slideID)
	if err != nil {
		return nil, err
	}

	sl.Title = edit.Title
	sl.Subtitle = nonEmpty(edit.Subtitle)
	sl.Body = store.BodyFromFields(edit.Content, edit.Bullets)
	sl.Stats = nonEmpty(edit.Stats)
	sl.IsEdited = true
	if err := s.dbStore.UpdateSlideContent(sl); err != nil {
		return nil, err
	}
	if err := s.dbStore.TouchCarousel(carouselID); err != nil {
		log.Printf("Failed to touch carousel %s after slide edit: %v", carouselID, err)
	}
	return sl, nil
}

// RegenerateSlide replaces a slide's content with a fresh model answer. On
// failure the slide is left as it was.
func (s *CarouselService) RegenerateSlide(ctx context.Context, userID int64, carouselID, slideID, guidance string) (*store.Slide, error) {
	if utf8.RuneCountInString(guidance) > maxGuidance {
		return nil, invalid("guidance", "must be at most %d characters", maxGuidance)
	}
	c, sl, err := s.slide(userID, carouselID, slideID)
	if err != nil {
		return nil, err
	}

	rewrite, err := s.generator.RegenerateSlide(ctx, c, sl, guidance)
	if err != nil {
		return nil, err
	}
	sl.Title = rewrite.Title
	sl.Subtitle = rewrite.Subtitle
	sl.Body = rewrite.Body
	sl.Stats = rewrite.Stats
	sl.IsEdited = false
	if err := s.dbStore.UpdateSlideContent(sl); err != nil {
		return nil, err
	}
	if err := s.dbStore.TouchCarousel(carouselID); err != nil {
		log.Printf("Failed to touch carousel %s after regeneration: %v", carouselID, err)
	}
	return sl, nil
}

// PreviewSlide rasterizes one slide, identified by its number, to PNG.
func (s *CarouselService) PreviewSlide(ctx context.Context, userID int64, carouselID string, number int) ([]byte, error) {
	c, err := s.Get(userID, carouselID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(userID)
	if err != nil {
		return nil, err
	}
	for _, sl := range c.Slides {
		if sl.SlideNumber != number {
			continue
		}
		img, err := s.rasterizer.Draw(ctx, render.Render(sl, settings, len(c.Slides)))
		if err != nil {
			return nil, fmt.Errorf("failed to draw slide %d: %w", number, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode slide %d: %w", number, err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("slide %d: %w", number, ErrNotFound)
}

// Export renders, captures and stores the carousel as a PDF. Concurrent
// exports of the same carousel share one run.
func (s *CarouselService) Export(ctx context.Context, userID int64, carouselID string) (*ExportedDocument, error) {
	active, err := s.subscriptions.IsActive(userID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrSubscriptionRequired
	}

	key := fmt.Sprintf("%d/%s", userID, carouselID)
	v, err, shared := s.exports.Do(key, func() (any, error) {
		return s.export(context.WithoutCancel(ctx), userID, carouselID)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Printf("Export of carousel %s shared with a concurrent request", carouselID)
	}
	return v.(*ExportedDocument), nil
}

func (s *CarouselService) export(ctx context.Context, userID int64, carouselID string) (*ExportedDocument, error) {
	c, err := s.Get(userID, carouselID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(userID)
	if err != nil {
		return nil, err
	}

	surfaces := make([]export.Surface, len(c.Slides))
	for i, sl := range c.Slides {
		surfaces[i] = s.rasterizer.Surface(render.Render(sl, settings, len(c.Slides)))
	}
	result, err := s.exporter.Export(ctx, c.Slides, surfaces)
	if err != nil {
		return nil, fmt.Errorf("failed to export carousel %s: %w", c.ID, err)
	}
	if skipped := result.Skipped(); len(skipped) > 0 {
		log.Printf("Carousel %s exported without slides %v", c.ID, skipped)
	}

	fileName := export.FileName(c.Subject, s.now())
	ref, err := s.storer.Store(ctx, fmt.Sprint(userID), c.ID, fileName, result.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to store export for carousel %s: %w", c.ID, err)
	}
	if err := s.dbStore.MarkCarouselExported(c.ID, userID, ref); err != nil {
		return nil, err
	}

	return &ExportedDocument{
		FileName: fileName,
		Document: result.Document,
		URL:      ref,
		Pages:    result.Pages,
		Skipped:  result.Skipped(),
	}, nil
}
