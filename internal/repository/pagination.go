package repository

import "math"

// ItemsPerPage is the fixed page size of the invoices table.
const ItemsPerPage = 6

// MaxPage is the largest page whose offset still fits in an int.
const MaxPage = math.MaxInt/ItemsPerPage + 1

// NormalizePage clamps page numbers into [1, MaxPage].
func NormalizePage(page int) int {
	switch {
	case page < 1:
		return 1
	case page > MaxPage:
		return MaxPage
	}
	return page
}

// Offset returns the row offset of page (1-based).
func Offset(page int) int {
	return (NormalizePage(page) - 1) * ItemsPerPage
}

// TotalPages is ceil(count / ItemsPerPage).
func TotalPages(count int64) int {
	if count <= 0 {
		return 0
	}
	return int((count + ItemsPerPage - 1) / ItemsPerPage)
}

// likePattern wraps a search string for substring matching.
func likePattern(query string) string {
	return "%" + query + "%"
}
