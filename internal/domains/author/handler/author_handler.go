package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/domains/author/model"
	"library-backend/internal/domains/author/service"
	"library-backend/internal/shared/response"
)

type AuthorHandler struct {
	service service.ServiceInterface
}

func NewAuthorHandler(svc service.ServiceInterface) *AuthorHandler {
	return &AuthorHandler{
		service: svc,
	}
}

// Create handles POST /api/v1/authors
func (h *AuthorHandler) Create(c *gin.Context) {
	var req model.CreateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	author, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	response.Success(c, http.StatusCreated, author.ToResponse())
}

// GetByID handles GET /api/v1/authors/:id
func (h *AuthorHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid UUID format")
		return
	}

	author, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if model.IsNotFoundError(err) {
			response.NotFound(c, err.Error())
		} else {
			response.InternalServerError(c, err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, author.ToResponse())
}

// List handles GET /api/v1/authors
func (h *AuthorHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	authors, total, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		response.InternalServerError(c, err.Error())
		return
	}

	items := make([]*model.AuthorResponse, 0, len(authors))
	for i := range authors {
		items = append(items, authors[i].ToResponse())
	}

	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// Update handles PATCH /api/v1/authors/:id
func (h *AuthorHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid UUID format")
		return
	}

	var req model.UpdateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	author, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		if model.IsNotFoundError(err) {
			response.NotFound(c, err.Error())
		} else {
			response.UnprocessableEntity(c, err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, author.ToResponse())
}
