package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	chelper "loto-server/common/helper"
	"loto-server/internal/auth"
	"loto-server/internal/config"
	infmysql "loto-server/internal/infra/mysql"
	"loto-server/internal/model"

	"github.com/pkg/errors"
	decimal "github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	TraceID  string
}

type LoginOutput struct {
	Token   string `json:"token"`
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
	Balance string `json:"balance"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (int64, error)
	Login(ctx context.Context, email, password, traceID string) (*LoginOutput, error)
}

type authService struct{}

func NewAuthService() AuthService { return &authService{} }

// Register 注册用户：bcrypt 加密口令，赠送初始虚拟币
func (s *authService) Register(ctx context.Context, in RegisterInput) (int64, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return 0, errors.New("invalid email")
	}
	if len(in.Password) < 6 {
		return 0, errors.New("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	initial := decimal.NewFromInt(1000)
	if cfg := config.GetCurrent(); cfg != nil {
		if v, e := decimal.NewFromString(cfg.Betting.InitialCredits); e == nil && !v.IsNegative() {
			initial = v
		}
	}

	u := &model.User{
		Name:           strings.TrimSpace(in.Name),
		Email:          email,
		PasswordHash:   string(hash),
		VirtualCredits: initial,
	}
	if err := u.Insert(ctx, infmysql.SQLX()); err != nil {
		if model.IsDuplicateKeyErr(err) {
			return 0, ErrEmailTaken
		}
		return 0, err
	}

	fmt.Printf("[Auth] 用户注册成功: user_id=%d, email=%s, trace_id=%s\n", u.ID, email, in.TraceID)
	return u.ID, nil
}

// Login 校验口令并签发访问令牌
func (s *authService) Login(ctx context.Context, email, password, traceID string) (*LoginOutput, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := model.GetUserByEmail(ctx, infmysql.SQLX(), email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.Status != 1 {
		return nil, errors.New("user disabled")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return nil, err
	}

	fmt.Printf("[Auth] 用户登录成功: user_id=%d, trace_id=%s\n", u.ID, traceID)
	return &LoginOutput{
		Token:   token,
		UserID:  u.ID,
		Name:    u.Name,
		Balance: chelper.TrimDecimal(u.VirtualCredits),
	}, nil
}
