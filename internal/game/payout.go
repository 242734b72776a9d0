package game

import "github.com/shopspring/decimal"

// Payout 派彩金额 = 本金 × 赔率 × 命中次数
// 全程 decimal 精确计算，金额链式相乘不产生二进制浮点漂移
func Payout(wager, rate decimal.Decimal, hits int) decimal.Decimal {
	if hits <= 0 {
		return decimal.Zero
	}
	return wager.Mul(rate).Mul(decimal.NewFromInt(int64(hits)))
}
