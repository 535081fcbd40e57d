package api

import (
	"fmt"
	"net/http"
	"strconv"

	"carouselcraft.io/carousel-studio/internal/core"
	"github.com/go-chi/chi/v5"
)

func (h *APIHandler) CreateCarouselHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	var req core.CreateCarouselRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.carousels.Generate(r.Context(), sess.UserID, req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to generate carousel")
		return
	}
	respondWithJSON(w, http.StatusCreated, c)
}

func (h *APIHandler) ListCarouselsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	carousels, err := h.carousels.List(sess.UserID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list carousels")
		return
	}
	respondWithJSON(w, http.StatusOK, carousels)
}

func (h *APIHandler) GetCarouselHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	c, err := h.carousels.Get(sess.UserID, chi.URLParam(r, "carouselID"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to get carousel")
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (h *APIHandler) DeleteCarouselHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	if err := h.carousels.Delete(sess.UserID, chi.URLParam(r, "carouselID")); err != nil {
		respondWithServiceError(w, err, "Failed to delete carousel")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) EditSlideHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	var edit core.SlideEdit
	if !decodeJSON(w, r, &edit) {
		return
	}

	slide, err := h.carousels.EditSlide(sess.UserID, chi.URLParam(r, "carouselID"), chi.URLParam(r, "slideID"), edit)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update slide")
		return
	}
	respondWithJSON(w, http.StatusOK, slide)
}

type regenerateRequest struct {
	Guidance string `json:"guidance"`
}

func (h *APIHandler) RegenerateSlideHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	var req regenerateRequest
	if r.Body != http.NoBody && r.ContentLength != 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}

	slide, err := h.carousels.RegenerateSlide(r.Context(), sess.UserID, chi.URLParam(r, "carouselID"), chi.URLParam(r, "slideID"), req.Guidance)
	if err != nil {
		respondWithServiceError(w, err, "Failed to regenerate slide")
		return
	}
	respondWithJSON(w, http.StatusOK, slide)
}

func (h *APIHandler) PreviewSlideHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	number, err := strconv.Atoi(chi.URLParam(r, "slideNumber"))
	if err != nil || number < 1 {
		respondWithError(w, http.StatusBadRequest, "Slide number must be a positive integer")
		return
	}

	data, err := h.carousels.PreviewSlide(r.Context(), sess.UserID, chi.URLParam(r, "carouselID"), number)
	if err != nil {
		respondWithServiceError(w, err, "Failed to render slide preview")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *APIHandler) ExportCarouselHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	doc, err := h.carousels.Export(r.Context(), sess.UserID, chi.URLParam(r, "carouselID"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to export carousel")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	w.Header().Set("X-Export-Pages", strconv.Itoa(doc.Pages))
	if doc.URL != "" {
		w.Header().Set("X-Export-Location", doc.URL)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Document)
}
