package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const settingsColumns = "id, user_id, primary_color, show_signature, signature_name, cover_alignment, signature_position, content_style, show_slide_numbers, content_alignment, end_page_title, end_page_subtitle, end_page_cta, end_page_contact, end_page_image, created_at, updated_at"

func (s *SQLiteStore) GetSettingsByUserID(userID int64) (*UserSettings, error) {
	var us UserSettings
	err := s.db.QueryRow("SELECT "+settingsColumns+" FROM user_settings WHERE user_id = ?", userID).Scan(
		&us.ID, &us.UserID, &us.PrimaryColor, &us.ShowSignature, &us.SignatureName, &us.CoverAlignment,
		&us.SignaturePosition, &us.ContentStyle, &us.ShowSlideNumbers, &us.ContentAlignment,
		&us.EndPageTitle, &us.EndPageSubtitle, &us.EndPageCTA, &us.EndPageContact, &us.EndPageImage,
		&us.CreatedAt, &us.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No settings row yet
		}
		return nil, fmt.Errorf("failed to get user settings: %w", err)
	}
	return &us, nil
}

// UpsertSettings writes the full settings row for us.UserID, creating it on
// first save.
func (s *SQLiteStore) UpsertSettings(us *UserSettings) error {
	now := time.Now()
	if us.ID == "" {
		us.ID = uuid.NewString()
	}
	if us.CreatedAt.IsZero() {
		us.CreatedAt = now
	}
	us.UpdatedAt = now

	_, err := s.db.Exec(`
        INSERT INTO user_settings (`+settingsColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (user_id) DO UPDATE SET
            primary_color = excluded.primary_color,
            show_signature = excluded.show_signature,
            signature_name = excluded.signature_name,
            cover_alignment = excluded.cover_alignment,
            signature_position = excluded.signature_position,
            content_style = excluded.content_style,
            show_slide_numbers = excluded.show_slide_numbers,
            content_alignment = excluded.content_alignment,
            end_page_title = excluded.end_page_title,
            end_page_subtitle = excluded.end_page_subtitle,
            end_page_cta = excluded.end_page_cta,
            end_page_contact = excluded.end_page_contact,
            end_page_image = excluded.end_page_image,
            updated_at = excluded.updated_at`,
		us.ID, us.UserID, us.PrimaryColor, us.ShowSignature, us.SignatureName, us.CoverAlignment,
		us.SignaturePosition, us.ContentStyle, us.ShowSlideNumbers, us.ContentAlignment,
		us.EndPageTitle, us.EndPageSubtitle, us.EndPageCTA, us.EndPageContact, us.EndPageImage,
		us.CreatedAt, us.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user settings: %w", err)
	}
	return nil
}

// GetOrCreateSettings returns the stored settings, inserting the defaults for
// users that have never saved any.
func (s *SQLiteStore) GetOrCreateSettings(userID int64) (*UserSettings, error) {
	existing, err := s.GetSettingsByUserID(userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	defaults := DefaultSettings()
	defaults.UserID = userID
	if err := s.insertSettingsIfAbsent(&defaults); err != nil {
		return nil, err
	}
	return s.GetSettingsByUserID(userID)
}

// insertSettingsIfAbsent never overwrites a row saved between our read and
// this insert.
func (s *SQLiteStore) insertSettingsIfAbsent(us *UserSettings) error {
	now := time.Now()
	if us.ID == "" {
		us.ID = uuid.NewString()
	}
	us.CreatedAt, us.UpdatedAt = now, now

	_, err := s.db.Exec(`
        INSERT INTO user_settings (`+settingsColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (user_id) DO NOTHING`,
		us.ID, us.UserID, us.PrimaryColor, us.ShowSignature, us.SignatureName, us.CoverAlignment,
		us.SignaturePosition, us.ContentStyle, us.ShowSlideNumbers, us.ContentAlignment,
		us.EndPageTitle, us.EndPageSubtitle, us.EndPageCTA, us.EndPageContact, us.EndPageImage,
		us.CreatedAt, us.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert default user settings: %w", err)
	}
	return nil
}
