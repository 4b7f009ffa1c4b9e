package main

import (
	"github.com/hibiken/asynq"

	loanJob "library-backend/internal/domains/loan/job"
	"library-backend/internal/shared"
	"library-backend/pkg/container"
)

// HandlerRegistry holds all job handlers.
type HandlerRegistry struct {
	expireOverdueLoans *loanJob.ExpireOverdueLoansHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		expireOverdueLoans: loanJob.NewExpireOverdueLoansHandler(c.LoanService),
	}
}

func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeExpireOverdueLoans, h.expireOverdueLoans.ProcessTask)
}
