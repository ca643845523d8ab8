package handler

import "github.com/gin-gonic/gin"

// ErrorResponse はエラー時のレスポンスボディです。
type ErrorResponse struct {
	Message string `json:"message"`
}

// RespondWithError は message を含む JSON を code で返します。
func RespondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorResponse{Message: message})
}
