// Package validator turns loosely-typed bill field candidates, whether from
// manual entry or a parser backend, into canonical domain.Bill records. It is
// the single chokepoint guaranteeing stored amounts are positive two-decimal
// values and categories are whitelist members. No I/O.
package validator

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"smartledger/internal/domain"
)

// Input carries the raw field candidates for one bill. Amount accepts either
// a string (possibly with separators and currency markers) or a JSON number.
type Input struct {
	BillID      string
	UserID      string
	Category    string
	Amount      interface{}
	Date        string
	Description string
	NWType      string
}

// Normalize validates and canonicalizes in, using now's date when the input
// has none. The first violated rule is returned as its sentinel error.
func Normalize(in Input, now time.Time) (*domain.Bill, error) {
	if strings.TrimSpace(in.BillID) == "" {
		return nil, domain.ErrMissingBillID
	}

	if in.Category == "" {
		return nil, domain.ErrMissingCategory
	}
	if !domain.ValidCategory(in.Category) {
		return nil, domain.ErrInvalidCategory
	}

	amount, err := NormalizeAmount(in.Amount)
	if err != nil {
		return nil, err
	}

	date := in.Date
	if date == "" {
		date = now.Format(domain.DateLayout)
	} else if !validDate(date) {
		return nil, domain.ErrInvalidDate
	}

	if in.NWType != "" && !domain.ValidNWType(in.NWType) {
		return nil, domain.ErrInvalidNWType
	}

	return &domain.Bill{
		BillID:      in.BillID,
		UserID:      in.UserID,
		Category:    in.Category,
		Amount:      amount,
		Date:        date,
		Description: in.Description,
		NWType:      in.NWType,
	}, nil
}

// NormalizeAmount parses v into a positive amount rounded half-up to two
// decimals. String inputs may carry thousands separators and currency markers
// (a leading ￥/¥ glyph or the literal "RMB").
func NormalizeAmount(v interface{}) (float64, error) {
	var num float64
	switch val := v.(type) {
	case nil:
		return 0, domain.ErrInvalidAmount
	case float64:
		num = val
	case float32:
		num = float64(val)
	case int:
		num = float64(val)
	case int64:
		num = float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, domain.ErrInvalidAmount
		}
		num = f
	case string:
		f, err := parseAmountString(val)
		if err != nil {
			return 0, err
		}
		num = f
	default:
		return 0, fmt.Errorf("%w: unsupported amount type %T", domain.ErrInvalidAmount, v)
	}

	if math.IsNaN(num) || math.IsInf(num, 0) || num <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	return roundHalfUp(num), nil
}

func parseAmountString(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	for _, marker := range []string{",", "￥", "¥", "RMB", " "} {
		cleaned = strings.ReplaceAll(cleaned, marker, "")
	}
	if cleaned == "" {
		return 0, domain.ErrInvalidAmount
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, domain.ErrInvalidAmount
	}
	return f, nil
}

// roundHalfUp rounds to two decimals with ties away from zero, matching
// standard half-up rounding for the positive amounts that reach it.
func roundHalfUp(f float64) float64 {
	return math.Floor(f*100+0.5) / 100
}

func validDate(s string) bool {
	if len(s) != len(domain.DateLayout) {
		return false
	}
	_, err := time.Parse(domain.DateLayout, s)
	return err == nil
}
