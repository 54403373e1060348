package book

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"bookshelf/internal/httpx"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var validate = validator.New()

type bookRequest struct {
	Title         string `json:"title" validate:"required"`
	Author        string `json:"author"`
	PublishedDate string `json:"published_date" validate:"omitempty,datetime=2006-01-02"`
	ImageURL      string `json:"image_url" validate:"omitempty,url"`
	Description   string `json:"description"`
}

func (req *bookRequest) toBook() Book {
	b := Book{
		Title:       req.Title,
		Author:      req.Author,
		ImageURL:    req.ImageURL,
		Description: req.Description,
	}
	if req.PublishedDate != "" {
		// Format already checked by the datetime validator.
		d, _ := time.ParseInLocation("2006-01-02", req.PublishedDate, time.UTC)
		b.PublishedDate = &d
	}
	return b
}

type HTTPHandler struct {
	service *Service
	log     logrus.FieldLogger
}

func NewHTTPHandler(service *Service, log logrus.FieldLogger) *HTTPHandler {
	return &HTTPHandler{service: service, log: log}
}

// List handles GET /books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	pageToken := query.Get("page_token")

	list, err := h.service.List(r.Context(), pageSize, pageToken)
	if err != nil {
		if errors.Is(err, ErrInvalidBook) {
			httpx.JSONError(w, http.StatusBadRequest, "BAD_PAGE_TOKEN", "Malformed page token", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	meta := map[string]any{"page_size": pageSize}
	if list.NextPageToken != "" {
		meta["next_page_token"] = list.NextPageToken
	}
	httpx.JSONSuccess(w, list.Books, meta)
}

// Get handles GET /books/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	b, err := h.service.Read(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, b, nil)
}

// Create handles POST /books
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBookRequest(w, r)
	if !ok {
		return
	}

	b := req.toBook()
	err := h.service.Create(r.Context(), &b)
	switch {
	case err == nil:
	case errors.Is(err, ErrEnqueue):
		// The book exists; enrichment will not run for it. Best-effort.
		h.log.WithField("book_id", b.ID).WithError(err).Warn("enrichment enqueue failed")
	case errors.Is(err, ErrInvalidBook):
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccessCreated(w, b)
}

// Update handles PUT /books/{id}
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	req, ok := decodeBookRequest(w, r)
	if !ok {
		return
	}

	b := req.toBook()
	b.ID = id
	if err := h.service.Update(r.Context(), &b); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		case errors.Is(err, ErrInvalidBook):
			httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}
	httpx.JSONSuccess(w, b, nil)
}

// Delete handles DELETE /books/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func decodeBookRequest(w http.ResponseWriter, r *http.Request) (bookRequest, bool) {
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is not valid JSON", nil)
		return req, false
	}
	if err := validate.Struct(&req); err != nil {
		var details []httpx.ErrorDetail
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details = append(details, httpx.ErrorDetail{
					Field:   fe.Field(),
					Message: fe.Tag(),
				})
			}
		}
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Request failed validation", details)
		return req, false
	}
	return req, true
}
