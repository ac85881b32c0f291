package model

// Revenue is one month of reference revenue data (`revenue` table).
type Revenue struct {
	Month   string `json:"month"`
	Revenue int64  `json:"revenue"`
}

var monthOrder = map[string]int{
	"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4, "May": 5, "Jun": 6,
	"Jul": 7, "Aug": 8, "Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
}

// MonthIndex returns 1..12 for a short month code, or 13 for anything else
// so unknown codes sort last.
func MonthIndex(month string) int {
	if i, ok := monthOrder[month]; ok {
		return i
	}
	return 13
}
