package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID はリクエスト ID を運ぶヘッダー名です。
const HeaderRequestID = "X-Request-ID"

const requestIDKey = "requestId"

// RequestID はリクエスト ID を払い出し、コンテキストとレスポンスヘッダーに設定します。
// クライアントが指定した ID があればそれを引き継ぎます。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID はコンテキストに設定されたリクエスト ID を返します。
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
