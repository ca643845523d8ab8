package handler

import (
	"time"

	"github.com/ogurasousui/company-sites/internal/core/company"
)

// CompanyDTO は HTTP で送受信する会社の表現です。
type CompanyDTO struct {
	CompanyCode string     `json:"companyCode"`
	SiteID      *string    `json:"siteId"`
	CompanyName string     `json:"companyName"`
	Description *string    `json:"description,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// toDomain はリクエストの DTO を候補となる会社に変換します。タイムスタンプは無視します。
func toDomain(dto CompanyDTO) *company.Company {
	return &company.Company{
		Code:        dto.CompanyCode,
		SiteID:      dto.SiteID,
		Name:        dto.CompanyName,
		Description: dto.Description,
	}
}

func toDTO(c *company.Company) CompanyDTO {
	dto := CompanyDTO{
		CompanyCode: c.Code,
		SiteID:      c.SiteID,
		CompanyName: c.Name,
		Description: c.Description,
	}
	if !c.CreatedAt.IsZero() {
		createdAt := c.CreatedAt
		dto.CreatedAt = &createdAt
	}
	if !c.UpdatedAt.IsZero() {
		updatedAt := c.UpdatedAt
		dto.UpdatedAt = &updatedAt
	}
	return dto
}

func toDTOs(companies []*company.Company) []CompanyDTO {
	dtos := make([]CompanyDTO, 0, len(companies))
	for _, c := range companies {
		dtos = append(dtos, toDTO(c))
	}
	return dtos
}
