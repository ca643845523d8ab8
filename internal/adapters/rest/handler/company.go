package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/company-sites/internal/core/company"
	"go.uber.org/zap"
)

// クライアントに返すメッセージです。
const (
	msgCompanyNotFound  = "Company not found."
	msgDuplicateKey     = "Company code already exists."
	msgMissingCode      = "Missing company code."
	msgInvalidValue     = "Cannot specify value for site ID."
	msgCannotChangeCode = "Cannot change company code."
	msgInvalidBody      = "Invalid request body."
	msgInternalError    = "Internal server error."
)

// CompanyHandler は company.UseCase を HTTP で公開します。
type CompanyHandler struct {
	svc      company.UseCase
	logger   *zap.Logger
	basePath string
}

// NewCompanyHandler は CompanyHandler を生成します。
func NewCompanyHandler(svc company.UseCase, logger *zap.Logger) *CompanyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyHandler{svc: svc, logger: logger, basePath: "/company"}
}

// Register は group 配下に /company のルートを登録します。
func (h *CompanyHandler) Register(group *gin.RouterGroup) {
	h.basePath = path.Join(group.BasePath(), "company")

	companies := group.Group("/company")
	companies.GET("", h.ListCompanies)
	companies.GET("/:code", h.GetCompany)
	companies.POST("", h.CreateCompany)
	companies.PUT("/:code", h.UpdateCompany)
	companies.DELETE("/:code", h.DeleteCompany)
}

// ListCompanies はすべての会社を返します。
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	companies, err := h.svc.ListCompanies(c.Request.Context())
	if err != nil {
		h.internalError(c, "list companies failed", err)
		return
	}

	c.JSON(http.StatusOK, toDTOs(companies))
}

// GetCompany はコードで会社を返します。
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	code := c.Param("code")

	found, err := h.svc.GetCompany(c.Request.Context(), code)
	if err != nil {
		h.internalError(c, "get company failed", err, zap.String("companyCode", code))
		return
	}
	if found == nil {
		RespondWithError(c, http.StatusNotFound, msgCompanyNotFound)
		return
	}

	c.JSON(http.StatusOK, toDTO(found))
}

// CreateCompany は会社を新規作成します。
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var req CompanyDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	candidate := toDomain(req)
	result, err := h.svc.SaveCompany(c.Request.Context(), candidate, nil)
	if err != nil {
		h.internalError(c, "create company failed", err, zap.String("companyCode", candidate.Code))
		return
	}

	h.respondSaveResult(c, result, toDomain(req))
}

// UpdateCompany はコードで指定した会社を置き換えます。
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	code := c.Param("code")

	existing, err := h.svc.GetCompany(c.Request.Context(), code)
	if err != nil {
		h.internalError(c, "get company failed", err, zap.String("companyCode", code))
		return
	}
	if existing == nil {
		RespondWithError(c, http.StatusNotFound, msgCompanyNotFound)
		return
	}

	var req CompanyDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	candidate := toDomain(req)
	result, err := h.svc.SaveCompany(c.Request.Context(), candidate, existing)
	if err != nil {
		h.internalError(c, "update company failed", err, zap.String("companyCode", code))
		return
	}

	h.respondSaveResult(c, result, toDomain(req))
}

// DeleteCompany はコードで会社を削除します。
func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	code := c.Param("code")

	deleted, err := h.svc.DeleteCompany(c.Request.Context(), code)
	if err != nil {
		h.internalError(c, "delete company failed", err, zap.String("companyCode", code))
		return
	}
	if !deleted {
		// 削除は失敗しない前提
		h.logger.DPanic("Unknown error attempting to delete company.", zap.String("companyCode", code))
		RespondWithError(c, http.StatusInternalServerError, msgInternalError)
		return
	}

	c.Status(http.StatusOK)
}

// respondSaveResult は保存結果をレスポンスに変換します。payload はリクエストで受け取った内容で、
// サービスが割り当てたサイトやタイムスタンプは含みません。
func (h *CompanyHandler) respondSaveResult(c *gin.Context, result company.SaveResult, payload *company.Company) {
	switch result {
	case company.SaveResultSuccess:
		c.Header("Location", h.basePath+"/"+url.PathEscape(payload.Code))
		c.JSON(http.StatusCreated, toDTO(payload))
	case company.SaveResultDuplicateKey:
		RespondWithError(c, http.StatusBadRequest, msgDuplicateKey)
	case company.SaveResultMissingCode:
		RespondWithError(c, http.StatusBadRequest, msgMissingCode)
	case company.SaveResultInvalidValue:
		RespondWithError(c, http.StatusBadRequest, msgInvalidValue)
	case company.SaveResultCannotChangeCode:
		RespondWithError(c, http.StatusBadRequest, msgCannotChangeCode)
	default:
		h.logger.Error("Unknown result.",
			zap.Any("companyInfo", toDTO(payload)),
			zap.Stringer("result", result),
		)
		panic(fmt.Sprintf("handler: unsupported save result %s", result))
	}
}

func (h *CompanyHandler) internalError(c *gin.Context, msg string, err error, fields ...zap.Field) {
	h.logger.Error(msg, append(fields, zap.Error(err))...)
	RespondWithError(c, http.StatusInternalServerError, msgInternalError)
}
