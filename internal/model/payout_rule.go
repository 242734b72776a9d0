package model

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// PayoutRule 对应 payout_rules 表
// 赔率按 (玩法, 奖位档) 二元键定位；rate 使用 DECIMAL(10,2)
type PayoutRule struct {
	ID          int64           `db:"id"`
	BetTypeID   int64           `db:"bet_type_id"`
	PrizeTierID int64           `db:"prize_tier_id"`
	Rate        decimal.Decimal `db:"rate"`
}

// GetPayoutRule 按 (玩法, 奖位档) 查询赔率
func GetPayoutRule(ctx context.Context, db *sqlx.DB, betTypeID, prizeTierID int64) (*PayoutRule, error) {
	sqlStr := "SELECT id, bet_type_id, prize_tier_id, rate FROM payout_rules WHERE bet_type_id = ? AND prize_tier_id = ? LIMIT 1"
	var pr PayoutRule
	if err := db.GetContext(ctx, &pr, sqlStr, betTypeID, prizeTierID); err != nil {
		return nil, err
	}
	return &pr, nil
}

// ListPayoutRules 全量赔率表（结算前一次载入，逐单结算时查内存映射）
func ListPayoutRules(ctx context.Context, db *sqlx.DB) ([]PayoutRule, error) {
	sqlStr := "SELECT id, bet_type_id, prize_tier_id, rate FROM payout_rules ORDER BY id"
	var rs []PayoutRule
	if err := db.SelectContext(ctx, &rs, sqlStr); err != nil {
		return nil, err
	}
	return rs, nil
}
