package table

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// valueKind classifies a normalized cell value for comparison.
type valueKind int

const (
	kindAbsent valueKind = iota
	kindInt
	kindUint
	kindFloat
	kindDecimal
	kindString
	kindBool
	kindTime
	kindOther
)

// normalize dereferences pointers and classifies v. Nil, nil pointers, NaN
// and zero times are absent.
func normalize(v any) (any, valueKind) {
	if v == nil {
		return nil, kindAbsent
	}
	switch val := v.(type) {
	case string:
		return val, kindString
	case bool:
		return val, kindBool
	case int:
		return int64(val), kindInt
	case int8:
		return int64(val), kindInt
	case int16:
		return int64(val), kindInt
	case int32:
		return int64(val), kindInt
	case int64:
		return val, kindInt
	case uint:
		return uint64(val), kindUint
	case uint8:
		return uint64(val), kindUint
	case uint16:
		return uint64(val), kindUint
	case uint32:
		return uint64(val), kindUint
	case uint64:
		return val, kindUint
	case float32:
		if math.IsNaN(float64(val)) {
			return nil, kindAbsent
		}
		return float64(val), kindFloat
	case float64:
		if math.IsNaN(val) {
			return nil, kindAbsent
		}
		return val, kindFloat
	case decimal.Decimal:
		return val, kindDecimal
	case decimal.NullDecimal:
		if !val.Valid {
			return nil, kindAbsent
		}
		return val.Decimal, kindDecimal
	case time.Time:
		if val.IsZero() {
			return nil, kindAbsent
		}
		return val, kindTime
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, kindAbsent
		}
		return normalize(rv.Elem().Interface())
	}
	return v, kindOther
}

func isAbsent(v any) bool {
	_, kind := normalize(v)
	return kind == kindAbsent
}

func isNumeric(k valueKind) bool {
	return k == kindInt || k == kindUint || k == kindFloat || k == kindDecimal
}

// compareValues orders two defined values. Mixed, non-numeric kinds fall back
// to their string forms.
func compareValues(a any, ak valueKind, b any, bk valueKind) int {
	switch {
	case isNumeric(ak) && isNumeric(bk):
		return compareNumbers(a, ak, b, bk)
	case ak == kindString && bk == kindString:
		return strings.Compare(a.(string), b.(string))
	case ak == kindBool && bk == kindBool:
		return compareBools(a.(bool), b.(bool))
	case ak == kindTime && bk == kindTime:
		return a.(time.Time).Compare(b.(time.Time))
	}
	return strings.Compare(stringOf(a), stringOf(b))
}

func compareNumbers(a any, ak valueKind, b any, bk valueKind) int {
	switch {
	case ak == kindInt && bk == kindInt:
		return cmpOrdered(a.(int64), b.(int64))
	case ak == kindUint && bk == kindUint:
		return cmpOrdered(a.(uint64), b.(uint64))
	case ak != kindDecimal && bk != kindDecimal && (ak == kindFloat || bk == kindFloat):
		return cmpOrdered(toFloat(a, ak), toFloat(b, bk))
	}
	da, okA := toDecimal(a, ak)
	db, okB := toDecimal(b, bk)
	if okA && okB {
		return da.Cmp(db)
	}
	return cmpOrdered(toFloat(a, ak), toFloat(b, bk))
}

func toFloat(v any, k valueKind) float64 {
	switch k {
	case kindInt:
		return float64(v.(int64))
	case kindUint:
		return float64(v.(uint64))
	case kindFloat:
		return v.(float64)
	case kindDecimal:
		f, _ := v.(decimal.Decimal).Float64()
		return f
	}
	return 0
}

func toDecimal(v any, k valueKind) (decimal.Decimal, bool) {
	switch k {
	case kindInt:
		return decimal.NewFromInt(v.(int64)), true
	case kindUint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(v.(uint64)), 0), true
	case kindFloat:
		f := v.(float64)
		if math.IsInf(f, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(f), true
	case kindDecimal:
		return v.(decimal.Decimal), true
	}
	return decimal.Decimal{}, false
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func cmpOrdered[T int64 | uint64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// stringOf renders a cell value for search, equality and query parameters.
func stringOf(v any) string {
	val, kind := normalize(v)
	switch kind {
	case kindAbsent:
		return ""
	case kindString:
		return val.(string)
	case kindDecimal:
		return val.(decimal.Decimal).String()
	case kindTime:
		return val.(time.Time).Format(time.RFC3339)
	}
	if s, ok := val.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(val)
}
