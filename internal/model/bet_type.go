package model

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// BetType 对应 bet_types 表（玩法字典）
// name 为玩法中文名以外的原始大写名（如 MILHAR、DUQUE DE GRUPO 10）
type BetType struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// GetBetType 按ID查询玩法
func GetBetType(ctx context.Context, db *sqlx.DB, id int64) (*BetType, error) {
	sqlStr := "SELECT id, name FROM bet_types WHERE id = ? LIMIT 1"
	var bt BetType
	if err := db.GetContext(ctx, &bt, sqlStr, id); err != nil {
		return nil, err
	}
	return &bt, nil
}

// ListBetTypes 全量玩法列表（字典小表，直接全查）
func ListBetTypes(ctx context.Context, db *sqlx.DB) ([]BetType, error) {
	sqlStr := "SELECT id, name FROM bet_types ORDER BY id"
	var rs []BetType
	if err := db.SelectContext(ctx, &rs, sqlStr); err != nil {
		return nil, err
	}
	return rs, nil
}
