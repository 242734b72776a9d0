package api

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"loto-server/internal/auth"
	helper "loto-server/internal/common/helper"
	"loto-server/internal/common/response"
	"loto-server/internal/service"

	beego "github.com/beego/beego/v2/server/web"
)

var newAuthService = service.NewAuthService

// AuthController 处理注册/登录/登出：/api/auth/*
type AuthController struct{ beego.Controller }

// 注册请求参数
type RegisterRequestParam struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"` // 明文口令，服务端 bcrypt 加密存储
}

// 登录请求参数
type LoginRequestParam struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register 注册新用户并赠送初始虚拟币：POST /api/auth/register
func (c *AuthController) Register() {
	traceID := helper.GetTraceID(c.Ctx)

	var p RegisterRequestParam
	if err := json.NewDecoder(c.Ctx.Request.Body).Decode(&p); err != nil {
		response.BadRequest(&c.Controller, "invalid json body", traceID)
		return
	}
	if strings.TrimSpace(p.Email) == "" {
		response.BadRequest(&c.Controller, "email required", traceID)
		return
	}
	if len(p.Password) < 6 {
		response.BadRequest(&c.Controller, "password must be at least 6 characters", traceID)
		return
	}

	userID, err := newAuthService().Register(c.Ctx.Request.Context(), service.RegisterInput{
		Name:     p.Name,
		Email:    p.Email,
		Password: p.Password,
		TraceID:  traceID,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Conflict(&c.Controller, response.CodeDuplicateKey, traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, map[string]interface{}{
		"user_id": userID,
	}, traceID)
}

// Login 登录换取访问令牌：POST /api/auth/login
func (c *AuthController) Login() {
	traceID := helper.GetTraceID(c.Ctx)

	var p LoginRequestParam
	if err := json.NewDecoder(c.Ctx.Request.Body).Decode(&p); err != nil {
		response.BadRequest(&c.Controller, "invalid json body", traceID)
		return
	}
	if strings.TrimSpace(p.Email) == "" || p.Password == "" {
		response.BadRequest(&c.Controller, "email and password required", traceID)
		return
	}

	out, err := newAuthService().Login(c.Ctx.Request.Context(), p.Email, p.Password, traceID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(&c.Controller, 401, response.CodeUnauthorized, traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, out, traceID)
}

// Logout 吊销当前令牌（加入黑名单至其自然过期）：POST /api/auth/logout
// 需要用户认证过滤器先行校验令牌
func (c *AuthController) Logout() {
	traceID := helper.GetTraceID(c.Ctx)

	claims, _ := c.Ctx.Input.GetData("jwt_claims").(*auth.JWTClaims)
	if claims == nil {
		response.Error(&c.Controller, 401, response.CodeUnauthorized, traceID)
		return
	}

	authHeader := strings.TrimSpace(c.Ctx.Input.Header("Authorization"))
	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

	expiresAt := time.Now().Add(time.Hour)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := auth.RevokeToken(c.Ctx.Request.Context(), tokenString, expiresAt); err != nil {
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, nil, traceID)
}
