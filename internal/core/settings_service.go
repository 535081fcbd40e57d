package core

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"carouselcraft.io/carousel-studio/internal/raster"
	"carouselcraft.io/carousel-studio/internal/render"
	"carouselcraft.io/carousel-studio/internal/store"
	"github.com/patrickmn/go-cache"
)

const (
	settingsCacheTTL   = 5 * time.Minute
	maxSettingsText    = 200
	maxEndPageImageLen = 2 << 20
)

// SettingsUpdate is a partial update; nil fields are left unchanged.
type SettingsUpdate struct {
	PrimaryColor      *string                  `json:"primary_color"`
	ShowSignature     *bool                    `json:"show_signature"`
	SignatureName     *string                  `json:"signature_name"`
	CoverAlignment    *store.Alignment         `json:"cover_alignment"`
	SignaturePosition *store.SignaturePosition `json:"signature_position"`
	ContentStyle      *store.ContentStyle      `json:"content_style"`
	ShowSlideNumbers  *bool                    `json:"show_slide_numbers"`
	ContentAlignment  *store.Alignment         `json:"content_alignment"`
	EndPageTitle      *string                  `json:"end_page_title"`
	EndPageSubtitle   *string                  `json:"end_page_subtitle"`
	EndPageCTA        *string                  `json:"end_page_cta"`
	EndPageContact    *string                  `json:"end_page_contact"`
	EndPageImage      *string                  `json:"end_page_image"`
}

type SettingsService struct {
	dbStore *store.SQLiteStore
	cache   *cache.Cache
}

func NewSettingsService(db *store.SQLiteStore) *SettingsService {
	return &SettingsService{
		dbStore: db,
		cache:   cache.New(settingsCacheTTL, 2*settingsCacheTTL),
	}
}

func settingsKey(userID int64) string {
	return fmt.Sprintf("settings:%d", userID)
}

// Get returns the user's settings, creating the defaults on first access.
func (s *SettingsService) Get(userID int64) (store.UserSettings, error) {
	if cached, ok := s.cache.Get(settingsKey(userID)); ok {
		return cached.(store.UserSettings), nil
	}
	us, err := s.dbStore.GetOrCreateSettings(userID)
	if err != nil {
		return store.UserSettings{}, fmt.Errorf("failed to load settings for user %d: %w", userID, err)
	}
	s.cache.SetDefault(settingsKey(userID), *us)
	return *us, nil
}

// Update validates the whole update before writing anything.
func (s *SettingsService) Update(userID int64, upd SettingsUpdate) (store.UserSettings, error) {
	if err := upd.validate(); err != nil {
		return store.UserSettings{}, err
	}
	current, err := s.Get(userID)
	if err != nil {
		return store.UserSettings{}, err
	}

	next := upd.apply(current)
	next.UserID = userID
	if err := s.dbStore.UpsertSettings(&next); err != nil {
		s.cache.Delete(settingsKey(userID))
		return store.UserSettings{}, fmt.Errorf("failed to save settings for user %d: %w", userID, err)
	}
	s.cache.SetDefault(settingsKey(userID), next)
	return next, nil
}

func (u SettingsUpdate) validate() error {
	if u.PrimaryColor != nil && !render.ValidHex(*u.PrimaryColor) {
		return invalid("primary_color", "must be a hex colour such as #0A66C2")
	}
	for field, a := range map[string]*store.Alignment{"cover_alignment": u.CoverAlignment, "content_alignment": u.ContentAlignment} {
		if a != nil && *a != store.AlignCentered && *a != store.AlignStart {
			return invalid(field, "must be %q or %q", store.AlignCentered, store.AlignStart)
		}
	}
	if p := u.SignaturePosition; p != nil && *p != store.SignatureBottomLeft && *p != store.SignatureBottomRight {
		return invalid("signature_position", "must be %q or %q", store.SignatureBottomLeft, store.SignatureBottomRight)
	}
	if c := u.ContentStyle; c != nil && *c != store.ContentSplit && *c != store.ContentCombined {
		return invalid("content_style", "must be %q or %q", store.ContentSplit, store.ContentCombined)
	}
	texts := map[string]*string{
		"signature_name":    u.SignatureName,
		"end_page_title":    u.EndPageTitle,
		"end_page_subtitle": u.EndPageSubtitle,
		"end_page_cta":      u.EndPageCTA,
		"end_page_contact":  u.EndPageContact,
	}
	for field, v := range texts {
		if v != nil && len([]rune(*v)) > maxSettingsText {
			return invalid(field, "must be at most %d characters", maxSettingsText)
		}
	}
	if img := u.EndPageImage; img != nil && *img != "" {
		switch {
		case len(*img) > maxEndPageImageLen:
			return invalid("end_page_image", "is too large")
		case strings.HasPrefix(*img, "data:image/"):
		case strings.HasPrefix(*img, "https://"), strings.HasPrefix(*img, "http://"):
			if !publicImageURL(*img) {
				return invalid("end_page_image", "must point at a public host")
			}
		default:
			return invalid("end_page_image", "must be an image data URL or an http(s) URL")
		}
	}
	return nil
}

// publicImageURL rejects hosts that name this machine or a private network.
// Hostnames are checked again at dial time by the raster loader.
func publicImageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" || u.User != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".internal") {
		return false
	}
	if ip := net.ParseIP(host); ip != nil {
		return raster.PublicIP(ip)
	}
	return true
}

func (u SettingsUpdate) apply(us store.UserSettings) store.UserSettings {
	if u.PrimaryColor != nil {
		us.PrimaryColor = *u.PrimaryColor
	}
	if u.ShowSignature != nil {
		us.ShowSignature = *u.ShowSignature
	}
	if u.SignatureName != nil {
		us.SignatureName = strings.TrimSpace(*u.SignatureName)
	}
	if u.CoverAlignment != nil {
		us.CoverAlignment = *u.CoverAlignment
	}
	if u.SignaturePosition != nil {
		us.SignaturePosition = *u.SignaturePosition
	}
	if u.ContentStyle != nil {
		us.ContentStyle = *u.ContentStyle
	}
	if u.ShowSlideNumbers != nil {
		us.ShowSlideNumbers = *u.ShowSlideNumbers
	}
	if u.ContentAlignment != nil {
		us.ContentAlignment = *u.ContentAlignment
	}
	if u.EndPageTitle != nil {
		us.EndPageTitle = *u.EndPageTitle
	}
	if u.EndPageSubtitle != nil {
		us.EndPageSubtitle = *u.EndPageSubtitle
	}
	if u.EndPageCTA != nil {
		us.EndPageCTA = *u.EndPageCTA
	}
	if u.EndPageContact != nil {
		us.EndPageContact = *u.EndPageContact
	}
	if u.EndPageImage != nil {
		us.EndPageImage = *u.EndPageImage
	}
	return us
}
