package utils

import (
	"blogserver/internal/schemas"

	"github.com/gin-gonic/gin"
)

// WriteAndLogResponse encodes the response object to JSON, writes it to the
// HTTP response and logs that a response is being returned.
func WriteAndLogResponse(c *gin.Context, response interface{}, statusCode int) {
	LogMessageWithFields(c, "debug", "Returning response")
	c.JSON(statusCode, response)
}

// WriteAndLogError logs the provided error and sends an error response with
// the specified status code and the public error details. The underlying
// error never reaches the caller.
func WriteAndLogError(c *gin.Context, customErr *schemas.CustomError, statusCode int, err error) {
	LogMessageWithFieldsAndError(c, "error", "Error occurred", err)
	LogMessageWithFields(c, "error", "Returning "+customErr.Code+" / "+customErr.Message)

	errorDto := &schemas.ErrorDTO{
		Error: *customErr,
	}
	c.AbortWithStatusJSON(statusCode, errorDto)
}
