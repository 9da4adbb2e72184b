package utils

import "gorm.io/gorm"

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Pagination describes one page of a larger result set.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
	NextPage   *int  `json:"next_page"`
	PrevPage   *int  `json:"prev_page"`
}

// Paginate counts the query, then loads one page into dest. The query should
// already carry its filters and ordering. Page numbers are 1-based; out of
// range values are clamped rather than rejected.
func Paginate(query *gorm.DB, page, perPage int, dest any) (*Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))

	offset := (page - 1) * perPage
	err := query.Session(&gorm.Session{}).Offset(offset).Limit(perPage).Find(dest).Error
	if err != nil {
		return nil, err
	}

	p := &Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
	if p.HasNext {
		next := page + 1
		p.NextPage = &next
	}
	if p.HasPrev {
		prev := page - 1
		p.PrevPage = &prev
	}
	return p, nil
}

// ToDict returns the wire representation used by list endpoints.
func (p *Pagination) ToDict() map[string]any {
	var next, prev any
	if p.NextPage != nil {
		next = *p.NextPage
	}
	if p.PrevPage != nil {
		prev = *p.PrevPage
	}
	return map[string]any{
		"page":        p.Page,
		"per_page":    p.PerPage,
		"total_items": p.TotalItems,
		"total_pages": p.TotalPages,
		"has_next":    p.HasNext,
		"has_prev":    p.HasPrev,
		"next_page":   next,
		"prev_page":   prev,
	}
}
