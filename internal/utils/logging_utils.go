package utils

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func GenerateTraceId() string {
	return uuid.New().String()
}

// ExtractServiceName returns the service name used in log fields.
func ExtractServiceName() string {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "blogserver"
	}

	return service
}

// LogEntry dispatches a message to the given logrus entry at the requested level.
func LogEntry(entry *log.Entry, level, message string) {
	switch level {
	case "debug":
		entry.Debug(message)
	case "info":
		entry.Info(message)
	case "warn":
		entry.Warn(message)
	case "error":
		entry.Error(message)
	case "fatal":
		entry.Fatal(message)
	case "panic":
		entry.Panic(message)
	default:
		entry.Info(message)
	}
}

// LogMessageWithFields logs a message with the request's trace id and the service name attached.
func LogMessageWithFields(c *gin.Context, level, message string) {
	traceId, _ := c.Value(TraceIdKey.String()).(string)

	entry := log.WithFields(log.Fields{
		"traceId": traceId,
		"service": ExtractServiceName(),
	})

	LogEntry(entry, level, message)
}

// LogMessageWithFieldsAndError logs a message plus the underlying error with request fields attached.
func LogMessageWithFieldsAndError(c *gin.Context, level, message string, err error) {
	traceId, _ := c.Value(TraceIdKey.String()).(string)

	entry := log.WithFields(log.Fields{
		"traceId": traceId,
		"service": ExtractServiceName(),
		"error":   err,
	})

	LogEntry(entry, level, message)
}
