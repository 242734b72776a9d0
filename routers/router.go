package routers

import (
	"loto-server/internal/config"
	"loto-server/internal/controller/api"
	"loto-server/internal/metrics"
	"loto-server/internal/middleware"

	beego "github.com/beego/beego/v2/server/web"
)

// init 注册HTTP路由与全局过滤器
func init() {
	cfg := config.Get()

	// 全局过滤器（按执行顺序）
	// 1. Panic Recovery（最先执行，捕获所有 panic）
	beego.InsertFilter("/*", beego.BeforeRouter, middleware.RecoveryFilter)

	// 2. 请求ID注入
	beego.InsertFilter("/*", beego.BeforeRouter, middleware.RequestIDFilter)

	// 3. CORS 处理（如果启用）
	if cfg != nil && cfg.CORS.Enabled {
		beego.InsertFilter("/*", beego.BeforeExec, middleware.CORSFilter)
	}

	// 4. HTTP 指标收集
	beego.InsertFilter("/*", beego.BeforeExec, metrics.HTTPMetricsFilter)
	beego.InsertFilter("/*", beego.FinishRouter, metrics.HTTPMetricsAfter)

	// 健康检查（无需认证）
	beego.Router("/healthz", &api.HealthController{}, "get:Healthz")
	beego.Router("/readyz", &api.HealthController{}, "get:Readyz")

	// ========== 公开 API（无需认证） ==========

	// 注册/登录
	beego.Router("/api/auth/register", &api.AuthController{}, "post:Register")
	beego.Router("/api/auth/login", &api.AuthController{}, "post:Login")

	// 玩法字典与开奖结果查询
	beego.Router("/api/catalog", &api.CatalogController{}, "get:Catalog")
	beego.Router("/api/results", &api.ResultsController{}, "get:List")
	beego.Router("/api/results/:draw_result_id", &api.ResultsController{}, "get:GetDraw")

	// ========== 业务 API（需要用户认证） ==========

	// 投注接口：JWT 认证 + 限流
	beego.InsertFilter("/api/bet", beego.BeforeExec, middleware.UserAuthFilter)
	if cfg != nil && cfg.RateLimit.Enabled {
		beego.InsertFilter("/api/bet", beego.BeforeExec, middleware.RateLimitFilter)
	}
	beego.Router("/api/bet", &api.BetController{}, "post:Bet")

	// 登出：需要有效令牌
	beego.InsertFilter("/api/auth/logout", beego.BeforeExec, middleware.UserAuthFilter)
	beego.Router("/api/auth/logout", &api.AuthController{}, "post:Logout")

	// 用户查询接口：JWT 认证（用户只能查询自己的数据）
	beego.InsertFilter("/api/user/*", beego.BeforeExec, middleware.UserAuthFilter)
	beego.Router("/api/user/balance", &api.UserController{}, "get:Balance")
	beego.Router("/api/user/bets", &api.UserController{}, "get:Bets")

	// ========== 管理 API（需要管理员认证） ==========

	// 开奖与结算接口：管理员认证
	if cfg != nil && cfg.Auth.Admin.Enabled {
		beego.InsertFilter("/api/admin/*", beego.BeforeExec, middleware.AdminAuthFilter)
	}
	beego.Router("/api/admin/draw/publish", &api.DrawResultController{}, "post:Publish")
	beego.Router("/api/admin/draw/settle", &api.DrawResultController{}, "post:Settle")
}
