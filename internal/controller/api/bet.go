package api

import (
	"errors"
	"strings"

	helper "loto-server/internal/common/helper"
	"loto-server/internal/common/response"
	"loto-server/internal/game"
	"loto-server/internal/service"

	beego "github.com/beego/beego/v2/server/web"

	mysqlerr "github.com/go-sql-driver/mysql"
)

var newBetService = service.NewBetService

type BetController struct{ beego.Controller }

// 投注请求参数
type BetRequestParam struct {
	DrawScheduleID int64    `json:"draw_schedule_id"` // 场次（PTM/PT/PTV/PTN/COR）
	BetTypeID      int64    `json:"bet_type_id"`      // 玩法
	PrizeTierID    int64    `json:"prize_tier_id"`    // 奖位区间
	Numbers        []string `json:"numbers"`          // 投注号码
	Amount         string   `json:"amount"`           // 投注金额（十进制字符串）
	/*
		幂等键：客户端生成并随请求传入，用于在网络重试/超时重发/服务端重试时保证“同一业务请求只生效一次”。
		使用约定：
		- 对于“同一次下注”的所有重试，请传相同的 idempotency_key；
		- 业务语义不同（如金额/玩法/号码不同）的请求必须使用不同的 key；
		- 建议生成方式：UUID（推荐）。
		服务端幂等保证（多层防护）：
		1) Redis 进行中锁（约45秒）：并发重复请求直接返回 202，并携带 Retry-After: 1；
		2) MySQL 唯一键：在事务内先插入 idempotency_keys(idempotency_key)，若已存在则返回首次请求的结果；
		3) 结果缓存：首次成功结果会写入 Redis（短期缓存），后续重复可直接读缓存快速返回。
	*/
	IdempotencyKey string `json:"idempotency_key"`
}

// Bet 处理投注接口：POST /api/bet
func (c *BetController) Bet() {
	// 1) 解析入参与基本校验
	// 这里必须要对业务参数严格校验，后续service不再重复校验号码以外的字段
	bp, ok, msg := helper.ParseAndValidateBet(c.Ctx)
	if !ok {
		response.BadRequest(&c.Controller, msg, helper.GetTraceID(c.Ctx))
		return
	}

	svc := newBetService()
	traceID := helper.GetTraceID(c.Ctx)

	// 用户身份由 JWT 认证中间件注入
	userID := int64(0)
	if v := c.Ctx.Input.GetData("user_id"); v != nil {
		if uid, ok := v.(int64); ok {
			userID = uid
		}
	}
	if userID == 0 {
		response.Error(&c.Controller, 401, response.CodeUnauthorized, traceID)
		return
	}

	out, err := svc.PlaceBet(c.Ctx.Request.Context(), service.BetInput{
		UserID:         userID,
		DrawScheduleID: bp.DrawScheduleID,
		BetTypeID:      bp.BetTypeID,
		PrizeTierID:    bp.PrizeTierID,
		Numbers:        bp.Numbers,
		Amount:         bp.Amount,
		IdempotencyKey: bp.IdempotencyKey,
		TraceID:        traceID,
	})
	if err != nil {
		// MySQL 唯一键冲突
		if me, ok := err.(*mysqlerr.MySQLError); ok && me.Number == 1062 {
			response.Conflict(&c.Controller, response.CodeDuplicateKey, traceID)
			return
		}
		// 重复请求进行中
		if errors.Is(err, service.ErrDuplicateInFlight) {
			response.Accepted(&c.Controller, "duplicate request in flight", traceID)
			return
		}
		// 当期已开奖，停止接单
		if errors.Is(err, service.ErrDrawAlreadyClosed) {
			response.Conflict(&c.Controller, response.CodeDrawClosed, traceID)
			return
		}
		// 玩法与奖位没有赔率配置，拒绝接单避免产生无法结算的注单
		if errors.Is(err, service.ErrNoPayoutRule) {
			response.Conflict(&c.Controller, response.CodeNoPayoutRule, traceID)
			return
		}
		// 余额不足
		if errors.Is(err, service.ErrInsufficientBalance) {
			response.ErrorWithMessage(&c.Controller, 400, response.CodeInsufficientBalance, "insufficient balance", traceID)
			return
		}
		// 场次/玩法/奖位字典项不存在
		if errors.Is(err, service.ErrScheduleNotFound) ||
			errors.Is(err, service.ErrBetTypeNotFound) ||
			errors.Is(err, service.ErrPrizeTierNotFound) {
			response.NotFound(&c.Controller, err.Error(), traceID)
			return
		}
		if errors.Is(err, service.ErrScheduleInactive) {
			response.Conflict(&c.Controller, response.CodeInvalidState, traceID)
			return
		}
		// 号码格式不符合玩法要求
		var ve *game.ValidationError
		if errors.As(err, &ve) {
			response.ErrorWithMessage(&c.Controller, 400, response.CodeInvalidNumbers, ve.Reason, traceID)
			return
		}
		// 投注金额验证失败
		errMsg := err.Error()
		if strings.Contains(errMsg, "invalid bet amount") ||
			strings.Contains(errMsg, "bet amount must be positive") ||
			strings.Contains(errMsg, "below minimum limit") ||
			strings.Contains(errMsg, "exceeds maximum limit") {
			response.BadRequest(&c.Controller, errMsg, traceID)
			return
		}
		// 系统错误
		response.InternalError(&c.Controller, traceID)
		return
	}

	// 成功响应
	response.Success(&c.Controller, map[string]interface{}{
		"bet_id":         out.BetID,
		"draw_result_id": out.DrawResultID,
		"remain_amount":  out.RemainAmount,
	}, traceID)
}
