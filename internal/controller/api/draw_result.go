package api

import (
	"encoding/json"
	"errors"
	"strings"

	chelper "loto-server/common/helper"
	helper "loto-server/internal/common/helper"
	"loto-server/internal/common/response"
	"loto-server/internal/service"

	beego "github.com/beego/beego/v2/server/web"
)

var (
	newDrawService = service.NewDrawService
	newSettleService = func() service.SettleService {
		return service.NewSettleService(service.NewMySQLSettleStore())
	}
)

// DrawResultController 人工开奖与结算接口（管理员）
type DrawResultController struct{ beego.Controller }

// 开奖结果请求参数
type DrawPublishRequestParam struct {
	DrawResultID int64 `json:"draw_result_id"`
	// 1~5 位为必填奖号，6/7 位可选；每个奖号为1~4位数字字符串
	Prizes []string `json:"prizes"`
}

// Publish 人工开奖接口：POST /api/admin/draw/publish
// 发布奖号后同步触发该期结算；结算失败不回滚开奖，可通过 /api/admin/draw/settle 重试
func (c *DrawResultController) Publish() {
	dp, ok, msg := helper.ParseAndValidateDrawPublish(c.Ctx)
	if !ok {
		response.BadRequest(&c.Controller, msg, helper.GetTraceID(c.Ctx))
		return
	}

	traceID := helper.GetTraceID(c.Ctx)
	operator := strings.TrimSpace(c.Ctx.Input.Header("X-Operator"))
	if operator == "" {
		operator = "admin"
	}

	if err := newDrawService().PublishResult(c.Ctx.Request.Context(), service.DrawPublishInput{
		DrawResultID: dp.DrawResultID,
		Prizes:       dp.Prizes,
		Operator:     operator,
		TraceID:      traceID,
	}); err != nil {
		if errors.Is(err, service.ErrDrawNotFound) {
			response.NotFound(&c.Controller, "draw result not found", traceID)
			return
		}
		if errors.Is(err, service.ErrInvalidStateDraw) {
			response.Conflict(&c.Controller, response.CodeInvalidStateDraw, traceID)
			return
		}
		if errors.Is(err, service.ErrBadRequest) {
			response.BadRequest(&c.Controller, "invalid request", traceID)
			return
		}
		// 奖号格式校验错误
		errMsg := err.Error()
		if strings.Contains(errMsg, "prize") {
			response.BadRequest(&c.Controller, errMsg, traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	// 开奖成功后同步结算
	summary, err := newSettleService().SettleDraw(c.Ctx.Request.Context(), dp.DrawResultID, traceID)
	if err != nil {
		// 开奖已生效，结算异常单独上报，等待人工重试
		response.Success(&c.Controller, map[string]interface{}{
			"draw_result_id": dp.DrawResultID,
			"published":      true,
			"settled":        false,
			"settle_error":   err.Error(),
		}, traceID)
		return
	}

	response.Success(&c.Controller, map[string]interface{}{
		"draw_result_id": dp.DrawResultID,
		"published":      true,
		"settled":        summary.Failed == 0,
		"processed":      summary.Processed,
		"failed":         summary.Failed,
		"total_paid":     chelper.TrimDecimal(summary.TotalPaid),
	}, traceID)
}

// 结算重试请求参数
type SettleRequestParam struct {
	DrawResultID int64 `json:"draw_result_id"`
}

// Settle 手工触发/重试结算：POST /api/admin/draw/settle
// 幂等：已结算注单不会二次派彩，仅处理仍为待结算的注单
func (c *DrawResultController) Settle() {
	traceID := helper.GetTraceID(c.Ctx)

	var p SettleRequestParam
	if err := json.NewDecoder(c.Ctx.Request.Body).Decode(&p); err != nil {
		response.BadRequest(&c.Controller, "invalid json body", traceID)
		return
	}
	if p.DrawResultID <= 0 {
		response.BadRequest(&c.Controller, "draw_result_id required", traceID)
		return
	}

	summary, err := newSettleService().SettleDraw(c.Ctx.Request.Context(), p.DrawResultID, traceID)
	if err != nil {
		if errors.Is(err, service.ErrDrawNotFound) {
			response.NotFound(&c.Controller, "draw result not found", traceID)
			return
		}
		if errors.Is(err, service.ErrDrawNotPublished) {
			response.Conflict(&c.Controller, response.CodeDrawNotPublished, traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, map[string]interface{}{
		"draw_result_id": p.DrawResultID,
		"settled":        summary.Failed == 0,
		"processed":      summary.Processed,
		"failed":         summary.Failed,
		"total_paid":     chelper.TrimDecimal(summary.TotalPaid),
	}, traceID)
}
