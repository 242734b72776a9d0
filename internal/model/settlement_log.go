package model

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// SettlementLog 结算日志表（记录每次结算批次的汇总）
// 同一期允许多条：剩余待结注单的重试批次会追加新记录
type SettlementLog struct {
	ID           int64           `db:"id"`             // 自增ID
	DrawResultID int64           `db:"draw_result_id"` // 开奖期ID
	PrizeList    string          `db:"prize_list"`     // 奖号列表（逗号分隔）
	TotalBets    int             `db:"total_bets"`     // 本批处理注单数
	TotalPayout  decimal.Decimal `db:"total_payout"`   // 本批总派彩
	Operator     string          `db:"operator"`       // 操作人
	TraceID      string          `db:"trace_id"`       // 链路追踪ID
	CreatedAt    int64           `db:"created_at"`     // 创建时间（13位毫秒时间戳）
}

// CreateSettlementLog 追加一条结算批次日志
func CreateSettlementLog(ctx context.Context, exec sqlx.ExtContext, log *SettlementLog) error {
	now := time.Now().UnixMilli()
	log.CreatedAt = now

	sqlStr := `INSERT INTO settlement_log (draw_result_id, prize_list, total_bets, total_payout, operator, trace_id, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := exec.ExecContext(ctx, sqlStr,
		log.DrawResultID, log.PrizeList, log.TotalBets, log.TotalPayout, log.Operator, log.TraceID, log.CreatedAt)
	if err != nil {
		return err
	}

	id, _ := result.LastInsertId()
	log.ID = id
	return nil
}

// ListSettlementLogs 查询某期的结算批次日志
func ListSettlementLogs(ctx context.Context, db *sqlx.DB, drawResultID int64) ([]SettlementLog, error) {
	sqlStr := `SELECT id, draw_result_id, prize_list, total_bets, total_payout, operator, trace_id, created_at
	           FROM settlement_log WHERE draw_result_id = ? ORDER BY id`
	var rs []SettlementLog
	if err := db.SelectContext(ctx, &rs, sqlStr, drawResultID); err != nil {
		return nil, err
	}
	return rs, nil
}
