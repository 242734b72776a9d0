package api

import (
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	helper "loto-server/internal/common/helper"
	"loto-server/internal/common/response"
	infmysql "loto-server/internal/infra/mysql"
	infrds "loto-server/internal/infra/redis"
	"loto-server/internal/model"

	beego "github.com/beego/beego/v2/server/web"
	goredis "github.com/redis/go-redis/v9"
)

// ResultsController 开奖结果公开查询接口（无需认证）
type ResultsController struct{ beego.Controller }

// List 查询已开奖结果：GET /api/results?schedule_id=&from=&to=&limit=
// from/to 为 YYYY-MM-DD；schedule_id 为 0 表示全部场次
func (c *ResultsController) List() {
	traceID := helper.GetTraceID(c.Ctx)

	scheduleID, _ := strconv.ParseInt(c.Ctx.Input.Query("schedule_id"), 10, 64)
	limit, _ := strconv.Atoi(c.Ctx.Input.Query("limit"))

	var from, to time.Time
	if s := c.Ctx.Input.Query("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			response.BadRequest(&c.Controller, "from must be YYYY-MM-DD", traceID)
			return
		}
		from = t
	}
	if s := c.Ctx.Input.Query("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			response.BadRequest(&c.Controller, "to must be YYYY-MM-DD", traceID)
			return
		}
		to = t
	}

	rs, err := model.ListPublishedResults(c.Ctx.Request.Context(), infmysql.SQLX(), scheduleID, from, to, limit)
	if err != nil {
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, map[string]interface{}{
		"results": rs,
	}, traceID)
}

// GetDraw 查询单期开奖结果：GET /api/results/:draw_result_id
// Redis 优先，未命中回源数据库并回填缓存
func (c *ResultsController) GetDraw() {
	drawID, err := strconv.ParseInt(c.Ctx.Input.Param(":draw_result_id"), 10, 64)
	if err != nil || drawID <= 0 {
		c.CustomAbort(400, "draw_result_id must be a positive integer")
		return
	}

	ctx := c.Ctx.Request.Context()

	var cached map[string]any
	if r := infrds.Client(); r != nil {
		if bs, e := r.Get(ctx, infrds.DrawResultKey(drawID)).Bytes(); e == nil {
			_ = json.Unmarshal(bs, &cached)
		} else if e != goredis.Nil {
			c.CustomAbort(503, "redis error")
			return
		}
	}

	if cached == nil {
		// DB fallback：从数据库读取，并回填 Redis
		d, err := model.GetDrawResult(ctx, infmysql.SQLX(), drawID)
		if err != nil {
			if err == sql.ErrNoRows {
				c.CustomAbort(404, "draw result not found")
				return
			}
			c.CustomAbort(503, "db error")
			return
		}
		if d.Status < model.DrawStatusPublished {
			c.CustomAbort(404, "draw result not published yet")
			return
		}
		cached = map[string]any{
			"draw_result_id": d.ID,
			"prizes":         d.PrizeNumbers(),
			"status":         statusLabel(d.Status),
		}
		if r := infrds.Client(); r != nil {
			if b, e := json.Marshal(cached); e == nil {
				_ = r.Set(ctx, infrds.DrawResultKey(drawID), b, 10*time.Minute).Err()
			}
		}
	}

	c.Data["json"] = map[string]any{
		"ok":     true,
		"result": cached,
	}
	_ = c.ServeJSON()
}

func statusLabel(code int8) string {
	switch code {
	case model.DrawStatusPublished:
		return "published"
	case model.DrawStatusSettled:
		return "settled"
	default:
		return "pending"
	}
}
