package app

import (
	"github.com/notehive/collab-note-service/pkg/convert"

	"github.com/gin-gonic/gin"
)

// PaginationConfig pagination configuration // 分页配置
type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultPaginationConfig default pagination configuration // 默认分页配置
var DefaultPaginationConfig = PaginationConfig{
	DefaultPageSize: 10,
	MaxPageSize:     100,
}

// Pagination 分页元信息
// 空结果集的 TotalPages 为 0，其余情况为 ceil(TotalNotes/pageSize)
type Pagination struct {
	CurrentPage int   `json:"currentPage"` // Current page // 当前页码
	TotalPages  int   `json:"totalPages"`  // Total pages // 总页数
	TotalNotes  int64 `json:"totalNotes"`  // Total rows // 总条数
	HasNextPage bool  `json:"hasNextPage"` // Has next page // 是否有下一页
	HasPrevPage bool  `json:"hasPrevPage"` // Has previous page // 是否有上一页
}

// NewPagination 根据页码、页大小和总数计算分页元信息
func NewPagination(page, pageSize int, total int64) Pagination {
	p := Pagination{
		CurrentPage: page,
		TotalNotes:  total,
	}
	if total > 0 && pageSize > 0 {
		p.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
		p.HasNextPage = page < p.TotalPages
		p.HasPrevPage = page > 1
	}
	return p
}

func GetPage(c *gin.Context) int {
	var page int

	if s, exist := c.GetQuery("page"); exist {
		page = convert.StrTo(s).MustInt()
	} else if s := c.PostForm("page"); s != "" {
		page = convert.StrTo(s).MustInt()
	}

	if page <= 0 {
		return 1
	}
	return page
}

// GetPageSizeWithConfig gets page size (using injected configuration)
// GetPageSizeWithConfig 获取分页大小（使用注入的配置）
func GetPageSizeWithConfig(c *gin.Context, cfg PaginationConfig) int {
	var pageSize int

	if s, exist := c.GetQuery("pageSize"); exist {
		pageSize = convert.StrTo(s).MustInt()
	} else if s := c.PostForm("pageSize"); s != "" {
		pageSize = convert.StrTo(s).MustInt()
	}

	if pageSize <= 0 {
		return cfg.DefaultPageSize
	}
	if pageSize > cfg.MaxPageSize {
		return cfg.MaxPageSize
	}
	return pageSize
}

// GetPageSize gets page size (using default configuration)
// GetPageSize 获取分页大小（使用默认配置）
func GetPageSize(c *gin.Context) int {
	return GetPageSizeWithConfig(c, DefaultPaginationConfig)
}

func GetPageOffset(page, pageSize int) int {
	result := 0
	if page > 0 {
		result = (page - 1) * pageSize
	}
	return result
}
