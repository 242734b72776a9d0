package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	infmysql "loto-server/internal/infra/mysql"
	infrds "loto-server/internal/infra/redis"
	"loto-server/internal/metrics"
	"loto-server/internal/model"
	"loto-server/internal/state"

	"github.com/pkg/errors"
)

// DrawPublishInput 开奖入参
type DrawPublishInput struct {
	DrawResultID int64
	Prizes       []string // 至少5个奖号，允许到7个
	Operator     string
	TraceID      string
}

type DrawService interface {
	PublishResult(ctx context.Context, in DrawPublishInput) error
}

type drawService struct{}

func NewDrawService() DrawService { return &drawService{} }

var (
	ErrBadRequest       = errors.New("bad request")
	ErrInvalidStateDraw = errors.New("publish not allowed in current state")
)

// PublishResult 发布一期开奖号码：校验奖号、置期状态为已开奖、写 outbox
// 结算由调用方在发布成功后另行触发
func (s *drawService) PublishResult(ctx context.Context, in DrawPublishInput) error {
	start := time.Now()
	resultLabel := "fail"
	defer func() { metrics.RecordDrawPublish(resultLabel, start) }()

	if in.DrawResultID <= 0 {
		return ErrBadRequest
	}
	if err := validatePrizes(in.Prizes); err != nil {
		fmt.Printf("[Draw] 奖号校验失败: draw_id=%d, prizes=%s, error=%v, trace_id=%s\n",
			in.DrawResultID, strings.Join(in.Prizes, ","), err, in.TraceID)
		return err
	}

	fmt.Printf("[Draw] 收到开奖请求: draw_id=%d, prizes=%s, operator=%s, trace_id=%s\n",
		in.DrawResultID, strings.Join(in.Prizes, ","), in.Operator, in.TraceID)

	tx, err := infmysql.SQLX().BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	draw, err := model.GetDrawForUpdate(ctx, tx, in.DrawResultID)
	if err != nil {
		if strings.Contains(err.Error(), "no rows") {
			return ErrDrawNotFound
		}
		return err
	}

	// 状态机校验：仅待开奖可发布；已开奖/已结算视为幂等成功
	cur := codeToDrawState(draw.Status)
	if cur != state.StatePending {
		fmt.Printf("[Draw] 该期已开奖，跳过重复发布: draw_id=%d, state=%s, trace_id=%s\n",
			in.DrawResultID, cur, in.TraceID)
		resultLabel = "success_idempotent"
		return nil
	}
	if _, err := state.NextState(cur, state.EvtPublish); err != nil {
		return ErrInvalidStateDraw
	}

	if err := model.PublishDraw(ctx, tx, in.DrawResultID, in.Prizes); err != nil {
		return err
	}

	if err := model.CreateOutbox(ctx, tx, "draw_published", fmtDrawKey(in.DrawResultID), map[string]any{
		"event":          "draw_published",
		"draw_result_id": in.DrawResultID,
		"prizes":         in.Prizes,
		"operator":       in.Operator,
		"trace_id":       in.TraceID,
	}); err != nil {
		fmt.Printf("[Draw] 写入 Outbox 失败: draw_id=%d, error=%v, trace_id=%s\n",
			in.DrawResultID, err, in.TraceID)
		return err
	}

	if err := tx.Commit(); err != nil {
		fmt.Printf("[Draw] 提交事务失败: draw_id=%d, error=%v, trace_id=%s\n",
			in.DrawResultID, err, in.TraceID)
		return err
	}

	// 将开奖结果写入 Redis，便于结果页快速查询
	if r := infrds.Client(); r != nil {
		val := map[string]any{
			"draw_result_id": in.DrawResultID,
			"prizes":         in.Prizes,
			"status":         "published",
		}
		if b, e := json.Marshal(val); e == nil {
			_ = r.Set(ctx, infrds.DrawResultKey(in.DrawResultID), b, 10*time.Minute).Err()
		}
	}

	resultLabel = "success"
	fmt.Printf("[Draw] 开奖发布完成: draw_id=%d, prizes=%s, trace_id=%s\n",
		in.DrawResultID, strings.Join(in.Prizes, ","), in.TraceID)
	return nil
}

// validatePrizes 校验奖号列表：5~7个，全数字，1~4位
func validatePrizes(prizes []string) error {
	if len(prizes) < 5 {
		return errors.New("at least 5 prize numbers required")
	}
	if len(prizes) > 7 {
		return errors.New("at most 7 prize numbers allowed")
	}
	for i, p := range prizes {
		p = strings.TrimSpace(p)
		if p == "" || len(p) > 4 {
			return errors.Errorf("prize %d must be 1 to 4 digits", i+1)
		}
		for _, c := range p {
			if c < '0' || c > '9' {
				return errors.Errorf("prize %d must be numeric", i+1)
			}
		}
	}
	return nil
}

// codeToDrawState 数据库数值枚举映射到状态机状态
func codeToDrawState(code int8) state.DrawState {
	switch code {
	case model.DrawStatusPending:
		return state.StatePending
	case model.DrawStatusPublished:
		return state.StatePublished
	case model.DrawStatusSettled:
		return state.StateSettled
	default:
		return state.StatePending
	}
}

func fmtDrawKey(id int64) string {
	return fmt.Sprintf("draw:%d", id)
}
