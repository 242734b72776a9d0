package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"loto-server/internal/config"
	"loto-server/internal/game"
	"loto-server/internal/metrics"
	"loto-server/internal/model"

	"github.com/pkg/errors"
	decimal "github.com/shopspring/decimal"
)

var (
	ErrDrawNotFound     = errors.New("draw result not found")
	ErrDrawNotPublished = errors.New("draw result not published yet")
)

// SettleStore 结算用的存储门面
// 读侧为快照读；SettleWin/SettleLoss 内部各自开短事务并复核注单状态，
// applied=false 表示注单已不处于待结算（被并发批次抢先），调用方跳过计数
type SettleStore interface {
	GetDraw(ctx context.Context, drawResultID int64) (*model.DrawResult, error)
	ListPendingBets(ctx context.Context, drawResultID int64) ([]model.BetForSettle, error)
	ListPayoutRules(ctx context.Context) ([]model.PayoutRule, error)
	// SettleWin 单注中奖结算：改注单状态、相对增量加余额、写账本，原子提交
	SettleWin(ctx context.Context, bet model.BetForSettle, amountWon decimal.Decimal, traceID string) (bool, error)
	// SettleLoss 单注未中结算：只改注单状态
	SettleLoss(ctx context.Context, bet model.BetForSettle, traceID string) (bool, error)
	RecordSettlement(ctx context.Context, log *model.SettlementLog) error
	MarkSettled(ctx context.Context, drawResultID int64) error
}

// SettleSummary 一次结算批次的汇总
type SettleSummary struct {
	Processed int             `json:"processed"` // 本批终态化的注单数
	Failed    int             `json:"failed"`    // 本批失败（仍为待结算）的注单数
	TotalPaid decimal.Decimal `json:"total_paid"`
}

type SettleService interface {
	SettleDraw(ctx context.Context, drawResultID int64, traceID string) (*SettleSummary, error)
}

type settleService struct {
	store SettleStore
}

func NewSettleService(store SettleStore) SettleService {
	return &settleService{store: store}
}

// SettleDraw 对一期已开奖结果做结算：
// 逐注独立事务终态化（中奖派彩/未中置输），单注失败不影响其他注单；
// 重复调用只会处理上次遗留的待结算注单，幂等
func (s *settleService) SettleDraw(ctx context.Context, drawResultID int64, traceID string) (*SettleSummary, error) {
	start := time.Now()
	resultLabel := "fail"
	summary := &SettleSummary{TotalPaid: decimal.Zero}
	defer func() {
		metrics.RecordSettleRun(resultLabel, summary.Processed, summary.Failed, summary.TotalPaid.InexactFloat64(), start)
	}()

	draw, err := s.store.GetDraw(ctx, drawResultID)
	if err != nil {
		if strings.Contains(err.Error(), "no rows") {
			return nil, ErrDrawNotFound
		}
		return nil, err
	}
	if draw.Status < model.DrawStatusPublished {
		fmt.Printf("[Settle] 该期尚未开奖，拒绝结算: draw_id=%d, status=%d, trace_id=%s\n",
			drawResultID, draw.Status, traceID)
		return nil, ErrDrawNotPublished
	}

	prizes := draw.PrizeNumbers()
	if len(prizes) < 5 {
		return nil, errors.Errorf("draw %d published with incomplete prize list (%d)", drawResultID, len(prizes))
	}

	fmt.Printf("[Settle] 开始结算: draw_id=%d, prizes=%s, trace_id=%s\n",
		drawResultID, strings.Join(prizes, ","), traceID)

	// 赔率表一次载入，逐注查内存映射
	rules, err := s.store.ListPayoutRules(ctx)
	if err != nil {
		return nil, err
	}
	type ruleKey struct{ betTypeID, prizeTierID int64 }
	rateByKey := make(map[ruleKey]decimal.Decimal, len(rules))
	for _, r := range rules {
		rateByKey[ruleKey{r.BetTypeID, r.PrizeTierID}] = r.Rate
	}

	bets, err := s.store.ListPendingBets(ctx, drawResultID)
	if err != nil {
		return nil, err
	}
	fmt.Printf("[Settle] 找到 %d 个待结算注单: draw_id=%d, trace_id=%s\n",
		len(bets), drawResultID, traceID)

	// 单批上限（betting.settle_batch_cap，0 不限）：超量部分留待下一批
	truncated := false
	if cfg := config.GetCurrent(); cfg != nil && cfg.Betting.SettleBatchCap > 0 && len(bets) > cfg.Betting.SettleBatchCap {
		fmt.Printf("[Settle] 超出单批上限，截断处理: draw_id=%d, cap=%d, pending=%d, trace_id=%s\n",
			drawResultID, cfg.Betting.SettleBatchCap, len(bets), traceID)
		bets = bets[:cfg.Betting.SettleBatchCap]
		truncated = true
	}

	for i := range bets {
		b := bets[i]

		rate, ruleOK := rateByKey[ruleKey{b.BetTypeID, b.PrizeTierID}]
		hits := 0
		if ruleOK {
			window := game.PrizeWindow{Start: b.StartPrize, End: b.EndPrize}
			hits = game.Evaluate(b.Tokens(), b.BetTypeName, window, prizes)
		} else {
			// 赔率缺失：按未中处理，不让单条脏数据卡住整批
			fmt.Printf("[Settle] 赔率规则缺失，强制按未中结算: bet_id=%d, bet_type_id=%d, prize_tier_id=%d, trace_id=%s\n",
				b.ID, b.BetTypeID, b.PrizeTierID, traceID)
		}

		var applied bool
		var settleErr error
		if hits > 0 {
			amountWon := game.Payout(b.AmountWagered, rate, hits)
			applied, settleErr = s.store.SettleWin(ctx, b, amountWon, traceID)
			if settleErr == nil && applied {
				summary.TotalPaid = summary.TotalPaid.Add(amountWon)
			}
		} else {
			applied, settleErr = s.store.SettleLoss(ctx, b, traceID)
		}

		if settleErr != nil {
			// 单注失败不中断整批，该注保持待结算，等下次重试
			summary.Failed++
			fmt.Printf("[Settle] 单注结算失败（保持待结算）: bet_id=%d, error=%v, trace_id=%s\n",
				b.ID, settleErr, traceID)
			continue
		}
		if !applied {
			fmt.Printf("[Settle] 注单已被其他批次结算，跳过: bet_id=%d, trace_id=%s\n", b.ID, traceID)
			continue
		}
		summary.Processed++
	}

	// 批次日志与期状态收尾：失败不回滚已结算注单，只记录
	slog := &model.SettlementLog{
		DrawResultID: drawResultID,
		PrizeList:    strings.Join(prizes, ","),
		TotalBets:    summary.Processed,
		TotalPayout:  summary.TotalPaid,
		Operator:     "system",
		TraceID:      traceID,
	}
	if err := s.store.RecordSettlement(ctx, slog); err != nil {
		fmt.Printf("[Settle] 写入结算批次日志失败: draw_id=%d, error=%v, trace_id=%s\n",
			drawResultID, err, traceID)
	}

	if summary.Failed == 0 && !truncated {
		if err := s.store.MarkSettled(ctx, drawResultID); err != nil {
			fmt.Printf("[Settle] 标记已结算失败: draw_id=%d, error=%v, trace_id=%s\n",
				drawResultID, err, traceID)
		}
	}

	resultLabel = "success"
	fmt.Printf("[Settle] 结算完成: draw_id=%d, processed=%d, failed=%d, total_paid=%s, trace_id=%s\n",
		drawResultID, summary.Processed, summary.Failed, summary.TotalPaid.StringFixed(2), traceID)
	return summary, nil
}
