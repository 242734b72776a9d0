package api

import (
	"database/sql"
	"strconv"

	chelper "loto-server/common/helper"
	helper "loto-server/internal/common/helper"
	"loto-server/internal/common/response"
	infmysql "loto-server/internal/infra/mysql"
	"loto-server/internal/model"

	beego "github.com/beego/beego/v2/server/web"
)

// UserController 用户查询接口：余额与注单历史
// 用户身份取自 JWT 认证中间件注入的 user_id，不信任请求参数
type UserController struct{ beego.Controller }

func currentUserID(c *beego.Controller) int64 {
	if v := c.Ctx.Input.GetData("user_id"); v != nil {
		if uid, ok := v.(int64); ok {
			return uid
		}
	}
	return 0
}

// Balance 查询虚拟币余额：GET /api/user/balance
func (c *UserController) Balance() {
	traceID := helper.GetTraceID(c.Ctx)

	userID := currentUserID(&c.Controller)
	if userID == 0 {
		response.Error(&c.Controller, 401, response.CodeUnauthorized, traceID)
		return
	}

	bal, err := model.GetBalance(c.Ctx.Request.Context(), infmysql.SQLX(), userID)
	if err != nil {
		if err == sql.ErrNoRows {
			response.NotFound(&c.Controller, "user not found", traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, map[string]interface{}{
		"user_id": userID,
		"balance": chelper.TrimDecimal(bal),
	}, traceID)
}

// Bets 分页查询注单历史：GET /api/user/bets?limit=20&offset=0
func (c *UserController) Bets() {
	traceID := helper.GetTraceID(c.Ctx)

	userID := currentUserID(&c.Controller)
	if userID == 0 {
		response.Error(&c.Controller, 401, response.CodeUnauthorized, traceID)
		return
	}

	limit, _ := strconv.Atoi(c.Ctx.Input.Query("limit"))
	offset, _ := strconv.Atoi(c.Ctx.Input.Query("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	records, err := model.ListUserBets(c.Ctx.Request.Context(), infmysql.SQLX(), userID, limit, offset)
	if err != nil {
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, map[string]interface{}{
		"bets":   records,
		"limit":  limit,
		"offset": offset,
	}, traceID)
}
