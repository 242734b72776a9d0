package model

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// PrizeTier 对应 prize_tiers 表（奖位档字典）
// start_prize/end_prize 为 1-based 奖位区间，如 1~1（头奖）、1~5（1至5奖）
type PrizeTier struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	StartPrize int    `db:"start_prize"`
	EndPrize   int    `db:"end_prize"`
}

// GetPrizeTier 按ID查询奖位档
func GetPrizeTier(ctx context.Context, db *sqlx.DB, id int64) (*PrizeTier, error) {
	sqlStr := "SELECT id, name, start_prize, end_prize FROM prize_tiers WHERE id = ? LIMIT 1"
	var pt PrizeTier
	if err := db.GetContext(ctx, &pt, sqlStr, id); err != nil {
		return nil, err
	}
	return &pt, nil
}

// ListPrizeTiers 全量奖位档列表
func ListPrizeTiers(ctx context.Context, db *sqlx.DB) ([]PrizeTier, error) {
	sqlStr := "SELECT id, name, start_prize, end_prize FROM prize_tiers ORDER BY id"
	var rs []PrizeTier
	if err := db.SelectContext(ctx, &rs, sqlStr); err != nil {
		return nil, err
	}
	return rs, nil
}
