package helper

import (
	"github.com/shopspring/decimal"
)

var (
	OneDecimal = decimal.NewFromInt(1)
)

// TrimDecimal 将金额四舍五入为2位小数的字符串
// 使用 StringFixed(2) 避免截断导致的精度丢失
func TrimDecimal(val decimal.Decimal) string {
	return val.StringFixed(2)
}
