package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"library-backend/internal/domains/loan/model"
	"library-backend/internal/domains/loan/service"
	"library-backend/internal/shared/utils"
	"library-backend/pkg/logger"
)

type ExpireOverdueLoansHandler struct {
	loanService service.ServiceInterface
}

func NewExpireOverdueLoansHandler(loanService service.ServiceInterface) *ExpireOverdueLoansHandler {
	return &ExpireOverdueLoansHandler{
		loanService: loanService,
	}
}

// ProcessTask marks every loan past its due date as expired. The scheduler
// enqueues this with an empty AsOf; re-delivery with a recorded AsOf is a
// no-op for loans already transitioned.
func (h *ExpireOverdueLoansHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.ExpireOverdueLoansPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		return err
	}

	asOf := payload.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	logger.Info("Starting ExpireOverdueLoans job", map[string]interface{}{
		"as_of": asOf,
	})

	count, err := h.loanService.ExpireOverdueLoans(ctx, asOf)
	if err != nil {
		return fmt.Errorf("expire overdue loans: %w", err)
	}

	logger.Info("Completed ExpireOverdueLoans job", map[string]interface{}{
		"expired_count": count,
	})
	return nil
}
