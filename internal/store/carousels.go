package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const carouselColumns = "id, user_id, title, subject, status, slide_count, language, content_format, content_length, sources, hashtags_json, pdf_url, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCarousel(row rowScanner) (*Carousel, error) {
	var c Carousel
	var hashtagsJSON string
	var pdfURL sql.NullString
	err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.Subject, &c.Status, &c.SlideCount, &c.Language,
		&c.ContentFormat, &c.ContentLength, &c.Sources, &hashtagsJSON, &pdfURL, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(hashtagsJSON), &c.Hashtags); err != nil {
		return nil, fmt.Errorf("failed to decode hashtags for carousel %s: %w", c.ID, err)
	}
	if pdfURL.Valid {
		c.PDFURL = &pdfURL.String
	}
	return &c, nil
}

// CreateCarousel inserts the carousel row only. Slides are written separately.
func (s *SQLiteStore) CreateCarousel(c *Carousel) error {
	c.ID = uuid.NewString()
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	if c.Status == "" {
		c.Status = StatusDraft
	}
	if c.Hashtags == nil {
		c.Hashtags = []string{}
	}

	hashtagsJSON, err := json.Marshal(c.Hashtags)
	if err != nil {
		return fmt.Errorf("failed to marshal hashtags: %w", err)
	}

	stmt, err := s.db.Prepare("INSERT INTO carousels (" + carouselColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare carousel insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(c.ID, c.UserID, c.Title, c.Subject, c.Status, c.SlideCount, c.Language,
		c.ContentFormat, c.ContentLength, c.Sources, string(hashtagsJSON), c.PDFURL, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute carousel insert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetCarouselByID(carouselID string, userID int64) (*Carousel, error) {
	row := s.db.QueryRow("SELECT "+carouselColumns+" FROM carousels WHERE id = ? AND user_id = ?", carouselID, userID)
	c, err := scanCarousel(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get carousel: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) GetCarouselsByUserID(userID int64) ([]Carousel, error) {
	rows, err := s.db.Query("SELECT "+carouselColumns+" FROM carousels WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query carousels: %w", err)
	}
	defer rows.Close()

	carousels := []Carousel{}
	for rows.Next() {
		c, err := scanCarousel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan carousel row: %w", err)
		}
		carousels = append(carousels, *c)
	}
	return carousels, rows.Err()
}

// MarkCarouselExported records the stored document reference and flips the
// status to exported.
func (s *SQLiteStore) MarkCarouselExported(carouselID string, userID int64, pdfURL string) error {
	res, err := s.db.Exec("UPDATE carousels SET status = ?, pdf_url = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		StatusExported, pdfURL, time.Now(), carouselID, userID)
	if err != nil {
		return fmt.Errorf("failed to execute carousel export update: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("carousel not found or not owned by user, export not recorded")
	}
	return nil
}

func (s *SQLiteStore) TouchCarousel(carouselID string) error {
	_, err := s.db.Exec("UPDATE carousels SET updated_at = ? WHERE id = ?", time.Now(), carouselID)
	if err != nil {
		return fmt.Errorf("failed to touch carousel: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteCarousel(carouselID string, userID int64) error {
	res, err := s.db.Exec("DELETE FROM carousels WHERE id = ? AND user_id = ?", carouselID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete carousel: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("carousel not found or not owned by user, nothing deleted")
	}
	return nil
}
