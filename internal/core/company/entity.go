package company

import "time"

// Company は会社エンティティです。Code で一意に識別され、SiteID はシステムが割り当てます。
type Company struct {
	Code        string
	SiteID      *string
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone は Company のディープコピーを返します。
func (c *Company) Clone() *Company {
	if c == nil {
		return nil
	}
	cloned := *c
	if c.SiteID != nil {
		site := *c.SiteID
		cloned.SiteID = &site
	}
	if c.Description != nil {
		desc := *c.Description
		cloned.Description = &desc
	}
	return &cloned
}
