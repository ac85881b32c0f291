package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iliyamo/invoice-dashboard/internal/model"
)

var (
	ErrAmountInvalid   = errors.New("amount is not a number")
	ErrAmountPrecision = errors.New("amount has more than two decimal places")
)

var hundred = decimal.NewFromInt(100)

// ParseAmount parses a dollar amount typed into a form ("12", "12.5", "12.50").
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrAmountInvalid
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrAmountInvalid
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Zero, ErrAmountPrecision
	}
	return d, nil
}

// DollarsToCents converts a dollar amount to integer minor units.
func DollarsToCents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// CentsToDollars converts minor units back to dollars for edit forms.
func CentsToDollars(cents int64) float64 {
	f, _ := decimal.NewFromInt(cents).Div(hundred).Float64()
	return f
}

// FormatCurrency renders cents as en-US dollars, e.g. 123456 -> "$1,234.56".
func FormatCurrency(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	p := message.NewPrinter(language.AmericanEnglish)
	s := "$" + p.Sprintf("%d", cents/100) + fmt.Sprintf(".%02d", cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// GenerateYAxis builds the revenue chart labels: the top label is the highest
// month rounded up to the next thousand, then steps of 1000 down to zero.
func GenerateYAxis(revenue []model.Revenue) ([]string, int64) {
	var highest int64
	for _, r := range revenue {
		if r.Revenue > highest {
			highest = r.Revenue
		}
	}
	top := ((highest + 999) / 1000) * 1000
	labels := make([]string, 0, top/1000+1)
	for i := top; i >= 0; i -= 1000 {
		labels = append(labels, "$"+strconv.FormatInt(i/1000, 10)+"K")
	}
	return labels, top
}

// Ellipsis marks a gap in pagination labels.
const Ellipsis = "..."

// GeneratePagination returns the page labels to render for the invoices
// table, collapsing long ranges with Ellipsis.
func GeneratePagination(current, total int) []string {
	pages := func(ns ...int) []string {
		out := make([]string, 0, len(ns))
		for _, n := range ns {
			if n == 0 {
				out = append(out, Ellipsis)
				continue
			}
			out = append(out, strconv.Itoa(n))
		}
		return out
	}
	if total <= 0 {
		return []string{}
	}
	if total <= 7 {
		out := make([]string, 0, total)
		for i := 1; i <= total; i++ {
			out = append(out, strconv.Itoa(i))
		}
		return out
	}
	if current <= 3 {
		return pages(1, 2, 3, 0, total-1, total)
	}
	if current >= total-2 {
		return pages(1, 2, 0, total-2, total-1, total)
	}
	return pages(1, 0, current-1, current, current+1, 0, total)
}
