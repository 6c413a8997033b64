package handler

import (
	"time"

	"github.com/vicebank/vicebank-client/internal/core/domain"
)

type appendLogRequest struct {
	Message   string     `json:"message"   validate:"required"`
	Level     string     `json:"level"     validate:"required,oneof=info warning error"`
	Timestamp *time.Time `json:"timestamp"`
}

type logEventResponse struct {
	ID        string    `json:"id"`
	DBIndex   string    `json:"db_index"`
	Message   string    `json:"message"`
	Level     string    `json:"level"`
	Timestamp time.Time `json:"timestamp"`
}

type logListResponse struct {
	Count  int                `json:"count"`
	Events []logEventResponse `json:"events"`
}

type pruneResponse struct {
	Removed   int       `json:"removed"`
	Scheduled bool      `json:"scheduled,omitempty"`
	Before    time.Time `json:"before"`
}

func toLogEventResponse(e domain.LogEvent) logEventResponse {
	return logEventResponse{
		ID:        e.ID,
		DBIndex:   e.DBIndex(),
		Message:   e.Message,
		Level:     string(e.Level),
		Timestamp: e.Timestamp,
	}
}
