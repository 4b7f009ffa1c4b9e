package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/loan/model"
	"library-backend/internal/domains/loan/service"
	patronModel "library-backend/internal/domains/patron/model"
	"library-backend/internal/shared/response"
)

type LoanHandler struct {
	service service.ServiceInterface
}

func NewLoanHandler(svc service.ServiceInterface) *LoanHandler {
	return &LoanHandler{
		service: svc,
	}
}

// Issue handles POST /api/v1/loans
func (h *LoanHandler) Issue(c *gin.Context) {
	var req model.IssueLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	loan, err := h.service.IssueLoan(c.Request.Context(), &req, time.Now())
	if err != nil {
		switch {
		case bookModel.IsNotFoundError(err), patronModel.IsNotFoundError(err):
			response.UnprocessableEntity(c, err.Error())
		case errors.Is(err, bookModel.ErrBookUnavailable):
			response.Conflict(c, err.Error())
		case errors.Is(err, patronModel.ErrPatronInactive):
			response.Conflict(c, err.Error())
		default:
			response.UnprocessableEntity(c, err.Error())
		}
		return
	}

	response.Success(c, http.StatusCreated, loan.ToResponse())
}

// Return handles POST /api/v1/loans/:id/return
func (h *LoanHandler) Return(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid UUID format")
		return
	}

	loan, err := h.service.ReturnLoan(c.Request.Context(), id, time.Now())
	if err != nil {
		switch {
		case model.IsNotFoundError(err):
			response.NotFound(c, err.Error())
		case model.IsAlreadyClosedError(err):
			response.Conflict(c, err.Error())
		case bookModel.IsOverdrawError(err):
			response.Conflict(c, err.Error())
		default:
			response.InternalServerError(c, err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, loan.ToResponse())
}

// ExpireOverdue handles POST /api/v1/loans/expire-overdue.
// The worker runs this on a schedule; the endpoint exists for manual runs.
func (h *LoanHandler) ExpireOverdue(c *gin.Context) {
	count, err := h.service.ExpireOverdueLoans(c.Request.Context(), time.Now())
	if err != nil {
		response.InternalServerError(c, err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"expired": count})
}

// GetByID handles GET /api/v1/loans/:id
func (h *LoanHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid UUID format")
		return
	}

	loan, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if model.IsNotFoundError(err) {
			response.NotFound(c, err.Error())
		} else {
			response.InternalServerError(c, err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, loan.ToResponse())
}

// ListForPatron handles GET /api/v1/patrons/:id/loans
func (h *LoanHandler) ListForPatron(c *gin.Context) {
	patronID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid UUID format")
		return
	}

	var filter model.ListLoansRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := filter.Validate(); err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	filter.Normalize()

	loans, total, err := h.service.ListLoansForPatron(c.Request.Context(), patronID, filter)
	if err != nil {
		response.InternalServerError(c, err.Error())
		return
	}

	items := make([]*model.LoanResponse, 0, len(loans))
	for i := range loans {
		items = append(items, loans[i].ToResponse())
	}

	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{
		Page:  filter.Page,
		Limit: filter.Limit,
		Total: total,
	})
}

// ListActiveForPatron handles GET /api/v1/patrons/:id/loans/active
func (h *LoanHandler) ListActiveForPatron(c *gin.Context) {
	patronID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid UUID format")
		return
	}

	loans, err := h.service.GetActiveLoansForPatron(c.Request.Context(), patronID)
	if err != nil {
		if patronModel.IsNotFoundError(err) {
			response.NotFound(c, err.Error())
		} else {
			response.InternalServerError(c, err.Error())
		}
		return
	}

	items := make([]*model.LoanResponse, 0, len(loans))
	for i := range loans {
		items = append(items, loans[i].ToResponse())
	}

	response.Success(c, http.StatusOK, items)
}
