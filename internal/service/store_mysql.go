package service

import (
	"context"
	"strconv"
	"time"

	"loto-server/internal/config"
	infmysql "loto-server/internal/infra/mysql"
	"loto-server/internal/model"

	decimal "github.com/shopspring/decimal"
)

// mysqlSettleStore 生产环境的 SettleStore 实现
// 读侧走快照读；写侧每注单独短事务，FOR UPDATE 复核状态后终态化
type mysqlSettleStore struct{}

func NewMySQLSettleStore() SettleStore { return &mysqlSettleStore{} }

// 单注结算事务默认超时，防止行锁等待拖垮整批
const defaultSettleTxTimeout = 3 * time.Second

// settleTxTimeout 单注结算事务超时，betting.bet_timeout_sec 可覆盖默认值
func settleTxTimeout() time.Duration {
	if cfg := config.GetCurrent(); cfg != nil && cfg.Betting.BetTimeoutSec > 0 {
		return time.Duration(cfg.Betting.BetTimeoutSec) * time.Second
	}
	return defaultSettleTxTimeout
}

func (m *mysqlSettleStore) GetDraw(ctx context.Context, drawResultID int64) (*model.DrawResult, error) {
	return model.GetDrawResult(ctx, infmysql.SQLX(), drawResultID)
}

func (m *mysqlSettleStore) ListPendingBets(ctx context.Context, drawResultID int64) ([]model.BetForSettle, error) {
	return model.ListPendingByDraw(ctx, infmysql.SQLX(), drawResultID)
}

func (m *mysqlSettleStore) ListPayoutRules(ctx context.Context) ([]model.PayoutRule, error) {
	return model.ListPayoutRules(ctx, infmysql.SQLX())
}

// SettleWin 中奖结算：注单置中奖 + 余额相对增量 + 账本 + outbox，单事务原子提交
func (m *mysqlSettleStore) SettleWin(ctx context.Context, bet model.BetForSettle, amountWon decimal.Decimal, traceID string) (bool, error) {
	txCtx, cancel := context.WithTimeout(ctx, settleTxTimeout())
	defer cancel()

	tx, err := infmysql.SQLX().BeginTxx(txCtx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	// 加锁复核：只有仍为待结算的注单才允许终态化（幂等护栏）
	status, err := model.GetBetStatusForUpdate(txCtx, tx, bet.ID)
	if err != nil {
		return false, err
	}
	if status != model.BetStatusPending {
		return false, nil
	}

	// 锁定用户行以取 before/after 余额写账本
	user, err := model.GetUserForUpdate(txCtx, tx, bet.UserID)
	if err != nil {
		return false, err
	}

	if err := model.UpdateSettlement(txCtx, tx, bet.ID, amountWon, model.BetStatusWon); err != nil {
		return false, err
	}
	if err := model.IncrementUserBalance(txCtx, tx, bet.UserID, amountWon); err != nil {
		return false, err
	}

	before := user.VirtualCredits
	after := before.Add(amountWon)
	ledger := &model.WalletLedger{
		UserID:       bet.UserID,
		BizType:      2,
		BizTypeStr:   "settle",
		Amount:       amountWon,
		BeforeAmount: before,
		AfterAmount:  after,
		BetID:        bet.ID,
		DrawResultID: bet.DrawResultID,
		Remark:       "bet payout",
		TraceID:      traceID,
	}
	if err := ledger.Insert(txCtx, tx); err != nil {
		return false, err
	}

	if err := model.CreateOutbox(txCtx, tx, "bet_settled", fmtBetKey(bet.ID), map[string]any{
		"event":      "bet_settled",
		"bet_id":     bet.ID,
		"user_id":    bet.UserID,
		"status":     "won",
		"amount_won": amountWon.StringFixed(2),
		"trace_id":   traceID,
	}); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// SettleLoss 未中结算：仅注单置未中，无资金变动
func (m *mysqlSettleStore) SettleLoss(ctx context.Context, bet model.BetForSettle, traceID string) (bool, error) {
	txCtx, cancel := context.WithTimeout(ctx, settleTxTimeout())
	defer cancel()

	tx, err := infmysql.SQLX().BeginTxx(txCtx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	status, err := model.GetBetStatusForUpdate(txCtx, tx, bet.ID)
	if err != nil {
		return false, err
	}
	if status != model.BetStatusPending {
		return false, nil
	}

	if err := model.UpdateSettlement(txCtx, tx, bet.ID, decimal.Zero, model.BetStatusLost); err != nil {
		return false, err
	}

	if err := model.CreateOutbox(txCtx, tx, "bet_settled", fmtBetKey(bet.ID), map[string]any{
		"event":    "bet_settled",
		"bet_id":   bet.ID,
		"user_id":  bet.UserID,
		"status":   "lost",
		"trace_id": traceID,
	}); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (m *mysqlSettleStore) RecordSettlement(ctx context.Context, log *model.SettlementLog) error {
	return model.CreateSettlementLog(ctx, infmysql.SQLX(), log)
}

func (m *mysqlSettleStore) MarkSettled(ctx context.Context, drawResultID int64) error {
	return model.MarkDrawSettled(ctx, infmysql.SQLX(), drawResultID)
}

func fmtBetKey(id int64) string {
	return "bet:" + strconv.FormatInt(id, 10)
}
