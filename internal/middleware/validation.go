package middleware

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"blogserver/internal/schemas"
	"blogserver/internal/utils"
)

// ValidateAndSanitizeStruct binds the JSON body into a fresh value of the
// given prototype, sanitizes its string fields and validates it. On success
// the sanitized payload is stored in the request context, on failure the
// request is aborted with a bad request error.
func ValidateAndSanitizeStruct(prototype interface{}) gin.HandlerFunc {
	prototypeType := reflect.TypeOf(prototype)
	if prototypeType.Kind() == reflect.Ptr {
		prototypeType = prototypeType.Elem()
	}

	return func(c *gin.Context) {
		validatorObj := utils.GetValidator()
		payload := reflect.New(prototypeType).Interface()

		if err := c.ShouldBindJSON(payload); err != nil {
			utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
			return
		}

		validatorObj.SanitizeData(payload)

		if err := validatorObj.Validate.Struct(payload); err != nil {
			utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
			return
		}

		c.Set(utils.SanitizedPayloadKey.String(), payload)
		c.Next()
	}
}
