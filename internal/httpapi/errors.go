package httpapi

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetHQ/internal/apperr"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindNotFound:          http.StatusNotFound,
	apperr.KindForbidden:         http.StatusForbidden,
	apperr.KindDuplicateKey:      http.StatusConflict,
	apperr.KindInvalidRequest:    http.StatusBadRequest,
	apperr.KindValidation:        http.StatusBadRequest,
	apperr.KindUnavailable:       http.StatusConflict,
	apperr.KindConflict:          http.StatusConflict,
	apperr.KindInvalidState:      http.StatusConflict,
	apperr.KindHasActiveMissions: http.StatusConflict,
}

// writeError renders err as {"error": {"kind", "message"}}.
func writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	code, ok := kindStatus[kind]
	if !ok {
		log.Printf("request %s: internal error: %v", c.GetString("requestID"), err)
		code = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(code, gin.H{"error": gin.H{"kind": kind, "message": apperr.Message(err)}})
}
