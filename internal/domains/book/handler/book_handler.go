package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authorModel "library-backend/internal/domains/author/model"
	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/service"
	"library-backend/internal/shared/response"
)

type BookHandler struct {
	service service.ServiceInterface
}

func NewBookHandler(svc service.ServiceInterface) *BookHandler {
	return &BookHandler{
		service: svc,
	}
}

// Create handles POST /api/v1/books
func (h *BookHandler) Create(c *gin.Context) {
	var req model.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	book, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrDuplicateISBN):
			response.Conflict(c, err.Error())
		case errors.Is(err, authorModel.ErrAuthorNotFound):
			response.UnprocessableEntity(c, err.Error())
		default:
			response.UnprocessableEntity(c, err.Error())
		}
		return
	}

	response.Success(c, http.StatusCreated, book.ToResponse())
}

// GetByID handles GET /api/v1/books/:id
func (h *BookHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid UUID format")
		return
	}

	book, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if model.IsNotFoundError(err) {
			response.NotFound(c, err.Error())
		} else {
			response.InternalServerError(c, err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, book.ToResponse())
}

// List handles GET /api/v1/books
func (h *BookHandler) List(c *gin.Context) {
	var filter model.ListBooksRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	filter.Normalize()

	books, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.InternalServerError(c, err.Error())
		return
	}

	items := make([]*model.BookResponse, 0, len(books))
	for i := range books {
		items = append(items, books[i].ToResponse())
	}

	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{
		Page:  filter.Page,
		Limit: filter.Limit,
		Total: total,
	})
}

// AdjustAvailability handles POST /api/v1/books/:id/availability
func (h *BookHandler) AdjustAvailability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid UUID format")
		return
	}

	var req model.AdjustAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	book, err := h.service.AdjustAvailability(c.Request.Context(), id, req.Delta)
	if err != nil {
		switch {
		case model.IsNotFoundError(err):
			response.NotFound(c, err.Error())
		case model.IsOverdrawError(err):
			response.Conflict(c, err.Error())
		default:
			response.InternalServerError(c, err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, book.ToResponse())
}
