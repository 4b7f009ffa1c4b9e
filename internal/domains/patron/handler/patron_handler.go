package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/domains/patron/model"
	"library-backend/internal/domains/patron/service"
	"library-backend/internal/shared/response"
)

type PatronHandler struct {
	service service.ServiceInterface
}

func NewPatronHandler(svc service.ServiceInterface) *PatronHandler {
	return &PatronHandler{
		service: svc,
	}
}

// Register handles POST /api/v1/patrons
func (h *PatronHandler) Register(c *gin.Context) {
	var req model.RegisterPatronRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	patron, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		if model.IsDuplicateError(err) {
			response.Conflict(c, err.Error())
		} else {
			response.UnprocessableEntity(c, err.Error())
		}
		return
	}

	response.Success(c, http.StatusCreated, patron.ToResponse())
}

// GetByID handles GET /api/v1/patrons/:id
func (h *PatronHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid UUID format")
		return
	}

	patron, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if model.IsNotFoundError(err) {
			response.NotFound(c, err.Error())
		} else {
			response.InternalServerError(c, err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, patron.ToResponse())
}

// List handles GET /api/v1/patrons
func (h *PatronHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	patrons, total, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		response.InternalServerError(c, err.Error())
		return
	}

	items := make([]*model.PatronResponse, 0, len(patrons))
	for i := range patrons {
		items = append(items, patrons[i].ToResponse())
	}

	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// Update handles PATCH /api/v1/patrons/:id
func (h *PatronHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid UUID format")
		return
	}

	var req model.UpdatePatronRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	patron, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case model.IsNotFoundError(err):
			response.NotFound(c, err.Error())
		case model.IsDuplicateError(err):
			response.Conflict(c, err.Error())
		default:
			response.UnprocessableEntity(c, err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, patron.ToResponse())
}

// Deactivate handles POST /api/v1/patrons/:id/deactivate
func (h *PatronHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

// Reactivate handles POST /api/v1/patrons/:id/reactivate
func (h *PatronHandler) Reactivate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *PatronHandler) setActive(c *gin.Context, active bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid UUID format")
		return
	}

	var patron *model.Patron
	if active {
		patron, err = h.service.Reactivate(c.Request.Context(), id)
	} else {
		patron, err = h.service.Deactivate(c.Request.Context(), id)
	}

	if err != nil {
		if model.IsNotFoundError(err) {
			response.NotFound(c, err.Error())
		} else {
			response.InternalServerError(c, err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, patron.ToResponse())
}
