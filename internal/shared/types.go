package shared

// Task types handled by the worker.
const (
	TypeExpireOverdueLoans = "loan:expire_overdue"
)

// Queue names by priority.
const (
	QueueCritical = "high"
	QueueDefault  = "default"
	QueueLow      = "low"
)
