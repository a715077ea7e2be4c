package comparator

import (
	"sort"

	"github.com/bamboofin/bamboo_portal/pkg/bamboo"
)

// SortKey orders the offer list.
type SortKey string

const (
	SortByRate     SortKey = "rate"
	SortByPayment  SortKey = "payment"
	SortByTime     SortKey = "time"
	SortByApproval SortKey = "approval"
	// SortByServer keeps the order the API returned.
	SortByServer SortKey = ""
)

// ParseSortKey maps a query value to a SortKey. Unknown values keep server order.
func ParseSortKey(v string) SortKey {
	switch v {
	case "rate":
		return SortByRate
	case "payment":
		return SortByPayment
	case "time", "processing_time":
		return SortByTime
	case "approval", "eligibility":
		return SortByApproval
	}
	return SortByServer
}

// Rank returns a re-ordered copy of offers. Ties keep server order.
func Rank(offers []bamboo.BankOffer, key SortKey) []bamboo.BankOffer {
	out := append([]bamboo.BankOffer(nil), offers...)
	var less func(a, b bamboo.BankOffer) bool
	switch key {
	case SortByRate:
		less = func(a, b bamboo.BankOffer) bool { return a.Product.Rate < b.Product.Rate }
	case SortByPayment:
		less = func(a, b bamboo.BankOffer) bool { return a.MonthlyPayment.LessThan(b.MonthlyPayment) }
	case SortByTime:
		less = func(a, b bamboo.BankOffer) bool { return a.Product.ProcessingTime < b.Product.ProcessingTime }
	case SortByApproval:
		less = func(a, b bamboo.BankOffer) bool { return a.Eligible && !b.Eligible }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
