package api

import (
	"time"

	infmysql "loto-server/internal/infra/mysql"
	infrds "loto-server/internal/infra/redis"

	beego "github.com/beego/beego/v2/server/web"
)

// HealthController 提供健康检查端点：/healthz 与 /readyz
type HealthController struct{ beego.Controller }

// Healthz 存活探针：仅返回进程存活
func (c *HealthController) Healthz() {
	c.Ctx.Output.SetStatus(200)
	_ = c.Ctx.Output.Body([]byte("ok"))
}

// Readyz 就绪探针：探测 MySQL 与 Redis 连通性
func (c *HealthController) Readyz() {
	if db := infmysql.SQLX(); db != nil {
		if err := db.PingContext(c.Ctx.Request.Context()); err != nil {
			c.Ctx.Output.SetStatus(503)
			_ = c.Ctx.Output.Body([]byte("db not ready"))
			return
		}
	}
	if infrds.Client() != nil {
		if err := infrds.Ping(c.Ctx.Request.Context(), 2*time.Second); err != nil {
			c.Ctx.Output.SetStatus(503)
			_ = c.Ctx.Output.Body([]byte("redis not ready"))
			return
		}
	}
	c.Ctx.Output.SetStatus(200)
	_ = c.Ctx.Output.Body([]byte("ready"))
}
