package middleware

import (
	"time"
)

type Response struct {
	Data    any
	Message string
	Code    int
	Error   error
}

type ResponseAPIDebug struct {
	Version   string    `json:"version"`
	Error     *string   `json:"error"`
	StartTime time.Time `json:"startTime"` // ISO8601 format, e.g., "2025-01-09T15:04:05Z07:00"
	EndTime   time.Time `json:"endTime"`   // ISO8601 format for consistency with StartTime
	RuntimeMs int64     `json:"runtimeMs"` // Runtime in milliseconds for better precision
}

type ResponseAPI struct {
	RequestID string            `json:"requestId"`
	Data      any               `json:"data"`
	Message   string            `json:"message"`
	Debug     *ResponseAPIDebug `json:"debug,omitempty"`
}

// ListData is the payload shape of unpaginated list responses.
type ListData struct {
	Count int `json:"count"`
	Data  any `json:"data"`
}

// PageData is the payload shape of paginated list responses. Count is the
// size of the returned page, Total the filtered total.
type PageData struct {
	Count  int `json:"count"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Data   any `json:"data"`
}
