package config

type PagingConfig interface {
	GetPageSize(resource string) int
}

type Paging struct{}

var _ PagingConfig = Paging{}

var pageSizes = map[string]int{
	"users":                      20,
	"groups":                     20,
	"activity-logs":              25,
	"dhikr-types":                15,
	"quran-reading-content":      15,
	"quran-memorization-content": 15,
}

// GetPageSize returns the page size used when listing resource, or 0 for
// resources that are fetched unpaginated.
func (Paging) GetPageSize(resource string) int {
	return pageSizes[resource]
}
