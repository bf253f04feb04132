package requestid

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const Header = "X-Request-Id"

type ctxKey struct{}

var key = ctxKey{}

func FromContext(ctx context.Context) string {
	if v := ctx.Value(key); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, key, id)
}

func Generate() string {
	return uuid.NewString()
}

// Middleware accepts the caller's request id or mints one, stores it on the
// request context and echoes it back in the response header.
func Middleware(c *gin.Context) {
	id := c.GetHeader(Header)
	if id == "" {
		id = Generate()
	}
	c.Request = c.Request.WithContext(NewContext(c.Request.Context(), id))
	c.Writer.Header().Set(Header, id)
	c.Next()
}
