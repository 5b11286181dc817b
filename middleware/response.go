package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"
)

func setResponseDefaults(r *Response) {
	if r.Message == "" {
		r.Message = "Success"
	}
	if r.Code == 0 {
		r.Code = http.StatusOK
	}
}

func logResponseError(c *gin.Context, log *zap.Logger, r Response) {
	if r.Error == nil {
		return
	}

	log.Warn("request failed",
		zap.String("requestId", c.GetString("requestId")),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Int("code", r.Code),
		zap.Error(r.Error),
	)
}

func getStartTime(c *gin.Context) time.Time {
	if value, exists := c.Get("start-time"); exists || value != nil {
		if t, ok := value.(time.Time); ok {
			return t
		}
	}
	return time.Now()
}

func buildDebugInfo(c *gin.Context, r Response) *ResponseAPIDebug {
	startTime := getStartTime(c)
	endTime := time.Now()

	return &ResponseAPIDebug{
		Version:   c.GetString("version"),
		StartTime: startTime,
		EndTime:   endTime,
		RuntimeMs: endTime.Sub(startTime).Milliseconds(),
		Error: func() *string {
			if r.Error != nil {
				err := r.Error.Error()
				return &err
			}
			return nil
		}(),
	}
}

func buildResponseAPI(c *gin.Context, r Response, shouldDebug bool) ResponseAPI {
	response := ResponseAPI{
		RequestID: c.GetString("requestId"),
		Message:   r.Message,
		Data:      r.Data,
	}

	if shouldDebug {
		response.Debug = buildDebugInfo(c, r)
	}

	return response
}

func send(c *gin.Context, log *zap.Logger, shouldDebug bool) func(r Response) {
	return func(r Response) {
		setResponseDefaults(&r)
		logResponseError(c, log, r)
		response := buildResponseAPI(c, r, shouldDebug)

		body, err := json.Marshal(response)
		if err != nil {
			log.Error("response marshal failed",
				zap.String("requestId", c.GetString("requestId")),
				zap.Error(err),
			)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Abort()
		c.Data(r.Code, "application/json; charset=utf-8", body)
	}
}

func RequestInit() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("requestId", uuid.New().String())
		version := c.Request.Header.Get("version")
		if version == "" {
			version = "1.0.0"
		}
		c.Set("version", version)
		c.Set("start-time", time.Now())
		c.Next()
	}
}

func ResponseInit(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		shouldDebug := gin.Mode() == gin.DebugMode
		c.Set("send", send(c, log, shouldDebug))
		c.Next()
	}
}

// Send fetches the send closure installed by ResponseInit.
func Send(c *gin.Context) func(r Response) {
	return c.MustGet("send").(func(Response))
}
