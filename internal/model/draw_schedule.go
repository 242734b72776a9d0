package model

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// DrawSchedule 对应 draw_schedules 表（每日固定场次）
// cutoff_time 为 "HH:MM" 字符串；过截注时间后投注顺延到次日同场次
// 典型场次: PTM 11:20 / PT 14:20 / PTV 16:20 / PTN 18:20 / COR 21:20
type DrawSchedule struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	CutoffTime string `db:"cutoff_time"`
	Active     bool   `db:"active"`
}

// GetDrawSchedule 按ID查询场次
func GetDrawSchedule(ctx context.Context, db *sqlx.DB, id int64) (*DrawSchedule, error) {
	sqlStr := "SELECT id, name, cutoff_time, active FROM draw_schedules WHERE id = ? LIMIT 1"
	var ds DrawSchedule
	if err := db.GetContext(ctx, &ds, sqlStr, id); err != nil {
		return nil, err
	}
	return &ds, nil
}

// ListDrawSchedules 全量场次（字典小表）
func ListDrawSchedules(ctx context.Context, db *sqlx.DB, onlyActive bool) ([]DrawSchedule, error) {
	sqlStr := "SELECT id, name, cutoff_time, active FROM draw_schedules"
	if onlyActive {
		sqlStr += " WHERE active = 1"
	}
	sqlStr += " ORDER BY cutoff_time"
	var rs []DrawSchedule
	if err := db.SelectContext(ctx, &rs, sqlStr); err != nil {
		return nil, err
	}
	return rs, nil
}
