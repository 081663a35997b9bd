package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetHQ/repository"
)

const ginCallerKey = "fleethq.caller"

// Authenticate is the gin counterpart of the gRPC interceptor: it validates
// the Bearer token, resolves the caller and stores it on the request.
// When allowQueryToken is set, a "token" query parameter is accepted as well
// (browsers cannot set headers on websocket upgrades).
func Authenticate(secret string, users repository.UserStore, allowQueryToken bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			p   *Principal
			err error
		)
		if h := c.GetHeader("Authorization"); h != "" {
			p, err = ParseBearer(h, secret)
		} else if tok := c.Query("token"); allowQueryToken && tok != "" {
			p, err = ParseToken(tok, secret)
		} else {
			err = errors.New("authorization header is required")
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"kind": "Unauthenticated", "message": err.Error()}})
			return
		}
		caller, err := ResolveCaller(c.Request.Context(), users, p)
		if errors.Is(err, ErrUnknownUser) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"kind": "Unauthenticated", "message": "unknown user"}})
			return
		} else if err != nil {
			log.Printf("resolve caller %q: %v", p.Name, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": gin.H{"kind": "Internal", "message": "internal error"}})
			return
		}
		c.Set(ginCallerKey, caller)
		c.Request = c.Request.WithContext(WithCaller(c.Request.Context(), caller))
		c.Next()
	}
}

// GinCaller returns the caller stored by Authenticate.
func GinCaller(c *gin.Context) (Caller, bool) {
	v, ok := c.Get(ginCallerKey)
	if !ok {
		return Caller{}, false
	}
	caller, ok := v.(Caller)
	return caller, ok
}
