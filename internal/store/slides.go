package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const slideColumns = "id, carousel_id, slide_number, type, title, subtitle, content, bullets_json, stats, is_edited, created_at, updated_at"

func scanSlide(row rowScanner) (*Slide, error) {
	var sl Slide
	var subtitle, content, bulletsJSON, stats sql.NullString
	err := row.Scan(&sl.ID, &sl.CarouselID, &sl.SlideNumber, &sl.Type, &sl.Title, &subtitle, &content,
		&bulletsJSON, &stats, &sl.IsEdited, &sl.CreatedAt, &sl.UpdatedAt)
	if err != nil {
		return nil, err
	}

	var bullets []string
	if bulletsJSON.Valid && bulletsJSON.String != "" {
		if err := json.Unmarshal([]byte(bulletsJSON.String), &bullets); err != nil {
			return nil, fmt.Errorf("failed to decode bullets for slide %s: %w", sl.ID, err)
		}
	}
	var contentPtr *string
	if content.Valid {
		contentPtr = &content.String
	}
	sl.Body = BodyFromFields(contentPtr, bullets)
	if subtitle.Valid {
		sl.Subtitle = &subtitle.String
	}
	if stats.Valid {
		sl.Stats = &stats.String
	}
	return &sl, nil
}

func bodyColumns(b Body) (content any, bulletsJSON any, err error) {
	text, items := BodyFields(b)
	if text != nil {
		content = *text
	}
	if items != nil {
		raw, err := json.Marshal(items)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal bullets: %w", err)
		}
		bulletsJSON = string(raw)
	}
	return content, bulletsJSON, nil
}

// CreateSlides inserts all slides of a carousel in one transaction, assigning
// ids and timestamps in place.
func (s *SQLiteStore) CreateSlides(carouselID string, slides []Slide) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin slide insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO slides (" + slideColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare slide insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for i := range slides {
		sl := &slides[i]
		sl.ID = uuid.NewString()
		sl.CarouselID = carouselID
		sl.CreatedAt, sl.UpdatedAt = now, now

		content, bulletsJSON, err := bodyColumns(sl.Body)
		if err != nil {
			return err
		}
		_, err = stmt.Exec(sl.ID, sl.CarouselID, sl.SlideNumber, sl.Type, sl.Title, sl.Subtitle, content,
			bulletsJSON, sl.Stats, sl.IsEdited, sl.CreatedAt, sl.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to execute slide insert (slide %d): %w", sl.SlideNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit slide insert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSlidesByCarouselID(carouselID string) ([]Slide, error) {
	rows, err := s.db.Query("SELECT "+slideColumns+" FROM slides WHERE carousel_id = ? ORDER BY slide_number ASC", carouselID)
	if err != nil {
		return nil, fmt.Errorf("failed to query slides: %w", err)
	}
	defer rows.Close()

	slides := []Slide{}
	for rows.Next() {
		sl, err := scanSlide(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slide row: %w", err)
		}
		slides = append(slides, *sl)
	}
	return slides, rows.Err()
}

func (s *SQLiteStore) GetSlideByID(slideID, carouselID string) (*Slide, error) {
	row := s.db.QueryRow("SELECT "+slideColumns+" FROM slides WHERE id = ? AND carousel_id = ?", slideID, carouselID)
	sl, err := scanSlide(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get slide: %w", err)
	}
	return sl, nil
}

// UpdateSlideContent overwrites the editable fields of a slide.
func (s *SQLiteStore) UpdateSlideContent(sl *Slide) error {
	content, bulletsJSON, err := bodyColumns(sl.Body)
	if err != nil {
		return err
	}
	sl.UpdatedAt = time.Now()

	stmt, err := s.db.Prepare("UPDATE slides SET title = ?, subtitle = ?, content = ?, bullets_json = ?, stats = ?, is_edited = ?, updated_at = ? WHERE id = ? AND carousel_id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare slide update: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(sl.Title, sl.Subtitle, content, bulletsJSON, sl.Stats, sl.IsEdited, sl.UpdatedAt, sl.ID, sl.CarouselID)
	if err != nil {
		return fmt.Errorf("failed to execute slide update: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("slide not found, not updated")
	}
	return nil
}

func (s *SQLiteStore) DeleteSlidesByCarouselID(carouselID string) error {
	_, err := s.db.Exec("DELETE FROM slides WHERE carousel_id = ?", carouselID)
	if err != nil {
		return fmt.Errorf("failed to delete slides: %w", err)
	}
	return nil
}
