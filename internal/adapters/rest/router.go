package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/company-sites/internal/adapters/rest/handler"
	"github.com/ogurasousui/company-sites/internal/adapters/rest/middleware"
	"github.com/ogurasousui/company-sites/internal/core/company"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// APIBasePath は会社 API をマウントするパスです。
const APIBasePath = "/api"

// RouterOptions はルーター構築時の任意設定です。
type RouterOptions struct {
	// Limiter が nil の場合はレート制限を行いません。
	Limiter *rate.Limiter
}

// NewRouter は会社 API とヘルスチェックを持つ gin.Engine を構築します。
func NewRouter(svc company.UseCase, logger *zap.Logger, opts RouterOptions) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group(APIBasePath, middleware.RateLimit(opts.Limiter))
	handler.NewCompanyHandler(svc, logger).Register(api)

	return r
}
