package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	chelper "loto-server/common/helper"
	"loto-server/internal/config"
	"loto-server/internal/game"
	infmysql "loto-server/internal/infra/mysql"
	infrds "loto-server/internal/infra/redis"
	"loto-server/internal/metrics"
	"loto-server/internal/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	decimal "github.com/shopspring/decimal"
)

// BetInput 下注入参
type BetInput struct {
	UserID         int64
	DrawScheduleID int64
	BetTypeID      int64
	PrizeTierID    int64
	Numbers        []string // 投注号码
	Amount         string   // 十进制字符串
	IdempotencyKey string
	TraceID        string
}

type BetOutput struct {
	BetID        int64  `json:"bet_id"`
	DrawResultID int64  `json:"draw_result_id"`
	RemainAmount string `json:"remain_amount"`
}

type BetService interface {
	PlaceBet(ctx context.Context, in BetInput) (*BetOutput, error)
}

type betService struct{}

func NewBetService() BetService { return &betService{} }

const (
	// Redis 进行中锁 TTL：吸收瞬时重复请求
	idemLockTTL = 45 * time.Second
	// 结果缓存默认 TTL：重复请求直接返回第一次成功结果
	defaultIdemResultTTL = 1 * time.Minute
)

// 默认事务超时时间，防止长事务占用资源影响并发（若上游已有 deadline，则沿用上游）
const defaultTxTimeout = 3 * time.Second

// betTxTimeout 下注事务超时，betting.bet_timeout_sec 可覆盖默认值
func betTxTimeout() time.Duration {
	if cfg := config.GetCurrent(); cfg != nil && cfg.Betting.BetTimeoutSec > 0 {
		return time.Duration(cfg.Betting.BetTimeoutSec) * time.Second
	}
	return defaultTxTimeout
}

// idemResultTTL 幂等结果缓存 TTL，betting.idem_ttl_sec 可覆盖默认值
func idemResultTTL() time.Duration {
	if cfg := config.GetCurrent(); cfg != nil && cfg.Betting.IdemTTLSec > 0 {
		return time.Duration(cfg.Betting.IdemTTLSec) * time.Second
	}
	return defaultIdemResultTTL
}

var (
	ErrDuplicateInFlight   = errors.New("duplicate request in flight")
	ErrScheduleNotFound    = errors.New("draw schedule not found")
	ErrScheduleInactive    = errors.New("draw schedule inactive")
	ErrBetTypeNotFound     = errors.New("bet type not found")
	ErrPrizeTierNotFound   = errors.New("prize tier not found")
	ErrNoPayoutRule        = errors.New("no payout rule for bet type and prize tier")
	ErrDrawAlreadyClosed   = errors.New("draw already published, bets closed")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// PlaceBet 下注主流程：
// 金额与号码校验 -> 幂等快路径 -> 定位当期 -> 扣款落单，全程短事务
func (s *betService) PlaceBet(ctx context.Context, in BetInput) (*BetOutput, error) {
	start := time.Now()
	result := "fail"
	betTypeLabel := "unknown"
	defer func() { metrics.RecordBet(result, betTypeLabel, start) }()

	// ========== 投注金额解析和验证 ==========
	amtDec, err := decimal.NewFromString(strings.TrimSpace(in.Amount))
	if err != nil {
		fmt.Printf("[Bet] 无效的投注金额格式: amount=%s, error=%v, trace_id=%s\n",
			in.Amount, err, in.TraceID)
		return nil, errors.New("invalid bet amount format")
	}
	if amtDec.LessThanOrEqual(decimal.Zero) {
		fmt.Printf("[Bet] 投注金额必须大于0: amount=%s, trace_id=%s\n", in.Amount, in.TraceID)
		return nil, errors.New("bet amount must be positive")
	}
	minBet, maxBet := betLimits()
	if amtDec.LessThan(minBet) {
		fmt.Printf("[Bet] 投注金额低于最小限制: amount=%s, min=%s, trace_id=%s\n",
			in.Amount, minBet.String(), in.TraceID)
		return nil, errors.Errorf("bet amount below minimum limit: %s", minBet.String())
	}
	if amtDec.GreaterThan(maxBet) {
		fmt.Printf("[Bet] 投注金额超过最大限制: amount=%s, max=%s, trace_id=%s\n",
			in.Amount, maxBet.String(), in.TraceID)
		return nil, errors.Errorf("bet amount exceeds maximum limit: %s", maxBet.String())
	}

	fmt.Printf("[Bet] 收到投注请求: user_id=%d, schedule_id=%d, bet_type_id=%d, prize_tier_id=%d, numbers=%s, amount=%s, idem_key=%s, trace_id=%s\n",
		in.UserID, in.DrawScheduleID, in.BetTypeID, in.PrizeTierID, strings.Join(in.Numbers, ","), in.Amount, in.IdempotencyKey, in.TraceID)

	// ========== 玩法与号码格式校验 ==========
	betType, err := model.GetBetType(ctx, infmysql.SQLX(), in.BetTypeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBetTypeNotFound
		}
		return nil, err
	}
	betTypeLabel = betType.Name
	tokens := game.NormalizeTokens(in.Numbers)
	if err := game.ValidateBetInput(betType.Name, tokens); err != nil {
		fmt.Printf("[Bet] 号码格式校验失败: bet_type=%s, numbers=%s, error=%v, trace_id=%s\n",
			betType.Name, strings.Join(in.Numbers, ","), err, in.TraceID)
		return nil, err
	}

	if _, err := model.GetPrizeTier(ctx, infmysql.SQLX(), in.PrizeTierID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPrizeTierNotFound
		}
		return nil, err
	}

	// 赔率缺失的组合直接拒单，避免产生永远赔不出去的注单
	if _, err := model.GetPayoutRule(ctx, infmysql.SQLX(), in.BetTypeID, in.PrizeTierID); err != nil {
		if err == sql.ErrNoRows {
			fmt.Printf("[Bet] 无赔率规则，拒绝下注: bet_type_id=%d, prize_tier_id=%d, trace_id=%s\n",
				in.BetTypeID, in.PrizeTierID, in.TraceID)
			return nil, ErrNoPayoutRule
		}
		return nil, err
	}

	// ========== Redis 幂等快路径与进行中锁 ==========
	if r := infrds.Client(); r != nil {
		if bs, _ := r.Get(ctx, infrds.IdemResultKey(in.IdempotencyKey)).Bytes(); len(bs) > 0 {
			var out BetOutput
			if json.Unmarshal(bs, &out) == nil {
				fmt.Printf("[Bet] Redis 缓存命中: idem_key=%s, bet_id=%d, trace_id=%s\n",
					in.IdempotencyKey, out.BetID, in.TraceID)
				return &out, nil
			}
		}

		// 生成唯一锁值，防止误删其他请求的锁
		lockValue := uuid.New().String()
		lockKey := infrds.IdemLockKey(in.IdempotencyKey)

		ok, _ := r.SetNX(ctx, lockKey, lockValue, idemLockTTL).Result()
		if !ok {
			if bs, _ := r.Get(ctx, infrds.IdemResultKey(in.IdempotencyKey)).Bytes(); len(bs) > 0 {
				var out BetOutput
				if json.Unmarshal(bs, &out) == nil {
					fmt.Printf("[Bet] Redis 缓存命中（重复请求）: idem_key=%s, bet_id=%d, trace_id=%s\n",
						in.IdempotencyKey, out.BetID, in.TraceID)
					return &out, nil
				}
			}
			fmt.Printf("[Bet] 重复请求进行中: idem_key=%s, trace_id=%s\n", in.IdempotencyKey, in.TraceID)
			return nil, ErrDuplicateInFlight
		}

		// Lua 脚本原子释放锁（仅当锁值匹配时删除）
		defer func() {
			script := `
				if redis.call("get", KEYS[1]) == ARGV[1] then
					return redis.call("del", KEYS[1])
				else
					return 0
				end
			`
			res, err := r.Eval(ctx, script, []string{lockKey}, lockValue).Result()
			if err != nil {
				fmt.Printf("[Bet] 释放分布式锁失败: idem_key=%s, error=%v, trace_id=%s\n",
					in.IdempotencyKey, err, in.TraceID)
			} else if res == int64(0) {
				fmt.Printf("[Bet] 分布式锁已被其他请求释放或过期: idem_key=%s, trace_id=%s\n",
					in.IdempotencyKey, in.TraceID)
			}
		}()
	}

	// ========== 定位当期（过截注时间顺延次日） ==========
	schedule, err := model.GetDrawSchedule(ctx, infmysql.SQLX(), in.DrawScheduleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	if !schedule.Active {
		return nil, ErrScheduleInactive
	}

	drawDate := nextDrawDate(schedule.CutoffTime, time.Now())
	draw, err := model.FindOrCreateDraw(ctx, infmysql.SQLX(), schedule.ID, drawDate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve current draw")
	}
	if draw.Status != model.DrawStatusPending {
		fmt.Printf("[Bet] 该期已开奖，拒绝下注: draw_id=%d, status=%d, trace_id=%s\n",
			draw.ID, draw.Status, in.TraceID)
		return nil, ErrDrawAlreadyClosed
	}

	// ========== 扣款落单事务 ==========
	txCtx := ctx
	if _, has := ctx.Deadline(); !has {
		c, cancel := context.WithTimeout(ctx, betTxTimeout())
		txCtx = c
		defer cancel()
	}
	tx, err := infmysql.SQLX().BeginTxx(txCtx, nil)
	if err != nil {
		fmt.Printf("[Bet] 开启事务失败: error=%v, trace_id=%s\n", err, in.TraceID)
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	// 幂等：先占幂等键
	if err := (&model.IdempotencyKey{IdempotencyKey: in.IdempotencyKey, Purpose: "bet", Ref: ""}).Insert(txCtx, tx); err != nil {
		if model.IsDuplicateKeyErr(err) {
			fmt.Printf("[Bet] 幂等键冲突，尝试返回上次结果: idem_key=%s, trace_id=%s\n",
				in.IdempotencyKey, in.TraceID)
			_ = tx.Rollback()
			return s.replayPrevResult(ctx, in)
		}
		fmt.Printf("[Bet] 插入幂等键失败: error=%v, idem_key=%s, trace_id=%s\n",
			err, in.IdempotencyKey, in.TraceID)
		return nil, errors.Wrap(err, "idempotency conflict or insert failed")
	}

	// 锁定用户并校验状态与余额
	user, err := model.GetUserForUpdate(txCtx, tx, in.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	if user.Status != 1 {
		fmt.Printf("[Bet] 用户状态异常: user_id=%d, status=%d, trace_id=%s\n",
			user.ID, user.Status, in.TraceID)
		return nil, errors.New("user disabled")
	}

	// 相对增量扣款，带余额下限保护
	okDebit, err := model.DebitUserBalance(txCtx, tx, user.ID, amtDec)
	if err != nil {
		return nil, err
	}
	if !okDebit {
		return nil, ErrInsufficientBalance
	}
	beforeDec := user.VirtualCredits
	afterDec := beforeDec.Sub(amtDec)

	// 落注单
	bet := &model.Bet{
		UserID:         user.ID,
		DrawResultID:   draw.ID,
		BetTypeID:      in.BetTypeID,
		PrizeTierID:    in.PrizeTierID,
		NumbersBetted:  strings.Join(tokens, ","),
		AmountWagered:  amtDec.Round(2),
		IdempotencyKey: in.IdempotencyKey,
		TraceID:        in.TraceID,
	}
	if err := bet.Insert(txCtx, tx); err != nil {
		fmt.Printf("[Bet] 创建注单失败: error=%v, trace_id=%s\n", err, in.TraceID)
		return nil, err
	}

	// 写账本，此处为扣款
	ledger := &model.WalletLedger{
		UserID:       user.ID,
		BizType:      1,
		BizTypeStr:   "bet",
		Amount:       amtDec.Round(2),
		BeforeAmount: beforeDec,
		AfterAmount:  afterDec,
		BetID:        bet.ID,
		DrawResultID: draw.ID,
		Remark:       "bet deduct",
		TraceID:      in.TraceID,
	}
	if err := ledger.Insert(txCtx, tx); err != nil {
		fmt.Printf("[Bet] 写入账本失败: error=%v, bet_id=%d, trace_id=%s\n", err, bet.ID, in.TraceID)
		return nil, err
	}

	// Outbox 消息（异步投递）
	if err := model.CreateOutbox(txCtx, tx, "bet_placed", fmtBetKey(bet.ID), map[string]any{
		"event":          "bet_placed",
		"bet_id":         bet.ID,
		"user_id":        user.ID,
		"draw_result_id": draw.ID,
		"bet_type":       betType.Name,
		"amount":         amtDec.StringFixed(2),
		"trace_id":       in.TraceID,
	}); err != nil {
		fmt.Printf("[Bet] 写入 Outbox 失败: error=%v, bet_id=%d, trace_id=%s\n", err, bet.ID, in.TraceID)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		fmt.Printf("[Bet] 提交事务失败: error=%v, bet_id=%d, trace_id=%s\n", err, bet.ID, in.TraceID)
		return nil, err
	}

	result = "success"
	out := &BetOutput{
		BetID:        bet.ID,
		DrawResultID: draw.ID,
		RemainAmount: chelper.TrimDecimal(afterDec),
	}

	// 写入 Redis 结果缓存（降级容错）
	if r := infrds.Client(); r != nil {
		if b, e := json.Marshal(out); e == nil {
			_ = r.Set(ctx, infrds.IdemResultKey(in.IdempotencyKey), b, idemResultTTL()).Err()
		}
	}

	fmt.Printf("[Bet] 下注成功: bet_id=%d, draw_id=%d, remain=%s, trace_id=%s\n",
		bet.ID, draw.ID, out.RemainAmount, in.TraceID)
	return out, nil
}

// replayPrevResult 幂等键冲突后回查上次结果（Redis 先查，DB 回源）
func (s *betService) replayPrevResult(ctx context.Context, in BetInput) (*BetOutput, error) {
	if r := infrds.Client(); r != nil {
		if bs, _ := r.Get(ctx, infrds.IdemResultKey(in.IdempotencyKey)).Bytes(); len(bs) > 0 {
			var out BetOutput
			if json.Unmarshal(bs, &out) == nil {
				fmt.Printf("[Bet] 从 Redis 返回上次结果: bet_id=%d, trace_id=%s\n", out.BetID, in.TraceID)
				return &out, nil
			}
		}
	}
	prev, err := model.GetBetByIdemKey(ctx, infmysql.SQLX(), in.IdempotencyKey)
	if err != nil {
		return nil, errors.Wrap(err, "idempotency replay failed")
	}
	balance, err := model.GetBalance(ctx, infmysql.SQLX(), prev.UserID)
	if err != nil {
		return nil, err
	}
	fmt.Printf("[Bet] 从数据库返回上次结果: bet_id=%d, trace_id=%s\n", prev.ID, in.TraceID)
	return &BetOutput{
		BetID:        prev.ID,
		DrawResultID: prev.DrawResultID,
		RemainAmount: chelper.TrimDecimal(balance),
	}, nil
}

// betLimits 从动态配置读取单注上下限（缺省 0.01 ~ 1,000,000）
func betLimits() (decimal.Decimal, decimal.Decimal) {
	minBet := decimal.NewFromFloat(0.01)
	maxBet := decimal.NewFromInt(1000000)
	if cfg := config.GetCurrent(); cfg != nil {
		if v, err := decimal.NewFromString(cfg.Betting.MinWager); err == nil && v.IsPositive() {
			minBet = v
		}
		if v, err := decimal.NewFromString(cfg.Betting.MaxWager); err == nil && v.IsPositive() {
			maxBet = v
		}
	}
	return minBet, maxBet
}

// nextDrawDate 根据场次截注时间决定投注归属日：过了截注点顺延到次日
func nextDrawDate(cutoff string, now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	parts := strings.SplitN(strings.TrimSpace(cutoff), ":", 2)
	if len(parts) != 2 {
		return day
	}
	var hh, mm int
	if _, err := fmt.Sscanf(parts[0]+" "+parts[1], "%d %d", &hh, &mm); err != nil {
		return day
	}
	cut := day.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)
	if !now.Before(cut) {
		return day.AddDate(0, 0, 1)
	}
	return day
}
