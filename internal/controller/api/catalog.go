package api

import (
	helper "loto-server/internal/common/helper"
	"loto-server/internal/common/response"
	infmysql "loto-server/internal/infra/mysql"
	"loto-server/internal/model"

	beego "github.com/beego/beego/v2/server/web"
)

// CatalogController 玩法字典查询：场次、玩法、奖位与赔率
// 客户端下注前拉取一次即可，数据量小且基本静态
type CatalogController struct{ beego.Controller }

// Catalog 查询全部字典：GET /api/catalog
func (c *CatalogController) Catalog() {
	traceID := helper.GetTraceID(c.Ctx)
	ctx := c.Ctx.Request.Context()
	db := infmysql.SQLX()

	schedules, err := model.ListDrawSchedules(ctx, db, true)
	if err != nil {
		response.InternalError(&c.Controller, traceID)
		return
	}
	betTypes, err := model.ListBetTypes(ctx, db)
	if err != nil {
		response.InternalError(&c.Controller, traceID)
		return
	}
	prizeTiers, err := model.ListPrizeTiers(ctx, db)
	if err != nil {
		response.InternalError(&c.Controller, traceID)
		return
	}
	payoutRules, err := model.ListPayoutRules(ctx, db)
	if err != nil {
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, map[string]interface{}{
		"draw_schedules": schedules,
		"bet_types":      betTypes,
		"prize_tiers":    prizeTiers,
		"payout_rules":   payoutRules,
	}, traceID)
}
