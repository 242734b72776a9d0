package model

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// 注单结算状态
const (
	BetStatusPending int8 = 1 // 待结算
	BetStatusWon     int8 = 2 // 中奖
	BetStatusLost    int8 = 3 // 未中奖
)

// Bet 对应 bets 表
// numbers_betted 存号码串，逗号分隔（与下单入参顺序一致）
// status: 1=待结算 2=中奖 3=未中奖
type Bet struct {
	ID             int64           `db:"id"`              // 注单ID(主键)
	UserID         int64           `db:"user_id"`         // 用户ID
	DrawResultID   int64           `db:"draw_result_id"`  // 所属开奖期
	BetTypeID      int64           `db:"bet_type_id"`     // 玩法ID
	PrizeTierID    int64           `db:"prize_tier_id"`   // 奖位档ID
	NumbersBetted  string          `db:"numbers_betted"`  // 投注号码（逗号分隔）
	AmountWagered  decimal.Decimal `db:"amount_wagered"`  // 投注金额(非负)
	AmountWon      decimal.Decimal `db:"amount_won"`      // 派彩金额
	Status         int8            `db:"status"`          // 结算状态
	IdempotencyKey string          `db:"idempotency_key"` // 幂等键
	TraceID        string          `db:"trace_id"`        // 链路追踪ID
	CreatedAt      time.Time       `db:"created_at"`      // 创建时间
	UpdatedAt      time.Time       `db:"updated_at"`      // 更新时间
}

// Tokens 拆出投注号码串
func (b *Bet) Tokens() []string {
	if b.NumbersBetted == "" {
		return nil
	}
	parts := strings.Split(b.NumbersBetted, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Insert 插入一条注单
func (b *Bet) Insert(ctx context.Context, exec sqlx.ExtContext) error {
	now := time.Now()
	// 使用原生 SQL 以避免 goqu 在某些 MySQL 版本上的兼容性问题
	sqlStr := `INSERT INTO bets (user_id, draw_result_id, bet_type_id, prize_tier_id, numbers_betted,
		amount_wagered, amount_won, status, idempotency_key, trace_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := exec.ExecContext(ctx, sqlStr, b.UserID, b.DrawResultID, b.BetTypeID, b.PrizeTierID, b.NumbersBetted,
		b.AmountWagered, decimal.Zero, BetStatusPending, b.IdempotencyKey, b.TraceID, now, now)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	b.ID = id
	return nil
}

// BetForSettle 结算流程用的注单投影（关联玩法名与奖位区间）
type BetForSettle struct {
	ID            int64           `db:"id"`
	UserID        int64           `db:"user_id"`
	DrawResultID  int64           `db:"draw_result_id"`
	BetTypeID     int64           `db:"bet_type_id"`
	PrizeTierID   int64           `db:"prize_tier_id"`
	BetTypeName   string          `db:"bet_type_name"`
	StartPrize    int             `db:"start_prize"`
	EndPrize      int             `db:"end_prize"`
	NumbersBetted string          `db:"numbers_betted"`
	AmountWagered decimal.Decimal `db:"amount_wagered"`
}

// Tokens 拆出投注号码串
func (b *BetForSettle) Tokens() []string {
	t := Bet{NumbersBetted: b.NumbersBetted}
	return t.Tokens()
}

// ListPendingByDraw 列出某期全部待结算注单（不加锁的快照读）
// 行级锁定推迟到逐单结算事务里做，避免长事务锁住整期注单
func ListPendingByDraw(ctx context.Context, db *sqlx.DB, drawResultID int64) ([]BetForSettle, error) {
	sqlStr := `SELECT b.id, b.user_id, b.draw_result_id, b.bet_type_id, b.prize_tier_id, bt.name AS bet_type_name,
		pt.start_prize, pt.end_prize, b.numbers_betted, b.amount_wagered
		FROM bets b
		JOIN bet_types bt ON bt.id = b.bet_type_id
		JOIN prize_tiers pt ON pt.id = b.prize_tier_id
		WHERE b.draw_result_id = ? AND b.status = ?
		ORDER BY b.id`
	var rs []BetForSettle
	if err := db.SelectContext(ctx, &rs, sqlStr, drawResultID, BetStatusPending); err != nil {
		return nil, err
	}
	return rs, nil
}

// GetBetStatusForUpdate 结算事务内加锁复核注单状态（FOR UPDATE）
func GetBetStatusForUpdate(ctx context.Context, exec sqlx.ExtContext, betID int64) (int8, error) {
	sqlStr := "SELECT status FROM bets WHERE id = ? FOR UPDATE"
	var status int8
	if err := sqlx.GetContext(ctx, exec, &status, sqlStr, betID); err != nil {
		return 0, err
	}
	return status, nil
}

// UpdateSettlement 更新注单的派彩金额和结算状态
func UpdateSettlement(ctx context.Context, exec sqlx.ExtContext, betID int64, amountWon decimal.Decimal, status int8) error {
	now := time.Now()
	sqlStr := "UPDATE bets SET amount_won = ?, status = ?, updated_at = ? WHERE id = ?"
	_, err := exec.ExecContext(ctx, sqlStr, amountWon, status, now, betID)
	return err
}

// BetRecord 投注记录（用于查询接口）
type BetRecord struct {
	ID            int64           `db:"id" json:"id"`
	DrawResultID  int64           `db:"draw_result_id" json:"draw_result_id"`
	BetTypeName   string          `db:"bet_type_name" json:"bet_type_name"`
	PrizeTierName string          `db:"prize_tier_name" json:"prize_tier_name"`
	NumbersBetted string          `db:"numbers_betted" json:"numbers_betted"`
	AmountWagered decimal.Decimal `db:"amount_wagered" json:"amount_wagered"`
	AmountWon     decimal.Decimal `db:"amount_won" json:"amount_won"`
	Status        int8            `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// ListUserBets 查询用户的投注记录（倒序分页）
func ListUserBets(ctx context.Context, db *sqlx.DB, userID int64, limit, offset int) ([]BetRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	sqlStr := `SELECT b.id, b.draw_result_id, bt.name AS bet_type_name, pt.name AS prize_tier_name,
		b.numbers_betted, b.amount_wagered, b.amount_won, b.status, b.created_at
		FROM bets b
		JOIN bet_types bt ON bt.id = b.bet_type_id
		JOIN prize_tiers pt ON pt.id = b.prize_tier_id
		WHERE b.user_id = ?
		ORDER BY b.id DESC LIMIT ? OFFSET ?`
	var rs []BetRecord
	if err := db.SelectContext(ctx, &rs, sqlStr, userID, limit, offset); err != nil {
		return nil, err
	}
	return rs, nil
}

// GetBetByIdemKey 按幂等键查询注单（幂等冲突后的回补读取）
func GetBetByIdemKey(ctx context.Context, db *sqlx.DB, key string) (*Bet, error) {
	sqlStr := `SELECT id, user_id, draw_result_id, bet_type_id, prize_tier_id, numbers_betted,
		amount_wagered, amount_won, status, idempotency_key, trace_id, created_at, updated_at
		FROM bets WHERE idempotency_key = ? LIMIT 1`
	var b Bet
	if err := db.GetContext(ctx, &b, sqlStr, key); err != nil {
		return nil, err
	}
	return &b, nil
}
