package model

import "time"

// ExpireOverdueLoansPayload is the worker task payload for the overdue
// sweep. AsOf defaults to the processing time when zero.
type ExpireOverdueLoansPayload struct {
	AsOf time.Time `json:"as_of,omitempty"`
}
