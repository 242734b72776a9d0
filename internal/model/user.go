package model

import (
	"context"
	"time"

	log "loto-server/common/logger"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// User 对应 users 表
// 说明：余额 virtual_credits 使用 DECIMAL(18,2) 存储，Go 层以 decimal.Decimal 表示
// 结算派彩采用相对增量更新（balance = balance + ?），不做读-改-写覆盖
// status: 1=启用 2=禁用
type User struct {
	ID             int64           `db:"id"`              // 用户ID(主键)
	Name           string          `db:"name"`            // 昵称
	Email          string          `db:"email"`           // 邮箱（唯一）
	PasswordHash   string          `db:"password_hash"`   // bcrypt 哈希
	VirtualCredits decimal.Decimal `db:"virtual_credits"` // 虚拟币余额（非负）
	Status         int8            `db:"status"`          // 用户状态 1=启用 2=禁用
	CreatedAt      time.Time       `db:"created_at"`      // 创建时间
	UpdatedAt      time.Time       `db:"updated_at"`      // 更新时间
}

// Insert 注册新用户
func (u *User) Insert(ctx context.Context, exec sqlx.ExtContext) error {
	now := time.Now()
	sqlStr := `INSERT INTO users (name, email, password_hash, virtual_credits, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := exec.ExecContext(ctx, sqlStr, u.Name, u.Email, u.PasswordHash, u.VirtualCredits, 1, now, now)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	u.ID = id
	return nil
}

// GetUserByEmail 按邮箱查询（登录用）
func GetUserByEmail(ctx context.Context, db *sqlx.DB, email string) (*User, error) {
	sqlStr := "SELECT id, name, email, password_hash, virtual_credits, status, created_at, updated_at FROM users WHERE email = ? LIMIT 1"
	var u User
	if err := db.GetContext(ctx, &u, sqlStr, email); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser 非锁查询用户信息（用于查询接口）
func GetUser(ctx context.Context, db *sqlx.DB, userID int64) (*User, error) {
	sqlStr := "SELECT id, name, email, password_hash, virtual_credits, status, created_at, updated_at FROM users WHERE id = ? LIMIT 1"
	var u User
	if err := db.GetContext(ctx, &u, sqlStr, userID); err != nil {
		log.Error("[GetUser] query failed: " + err.Error())
		return nil, err
	}
	return &u, nil
}

// GetUserForUpdate 按 id 加锁查询（FOR UPDATE），请在事务中调用
func GetUserForUpdate(ctx context.Context, exec sqlx.ExtContext, userID int64) (*User, error) {
	sqlStr := "SELECT id, name, email, password_hash, virtual_credits, status, created_at, updated_at FROM users WHERE id = ? FOR UPDATE"
	var u User
	if err := sqlx.GetContext(ctx, exec, &u, sqlStr, userID); err != nil {
		return nil, err
	}
	return &u, nil
}

// IncrementUserBalance 相对增量加钱（结算派彩）
// 与覆盖写不同：并发路径下不会丢失其他事务已提交的余额变更
func IncrementUserBalance(ctx context.Context, exec sqlx.ExtContext, userID int64, amount decimal.Decimal) error {
	now := time.Now()
	sqlStr := "UPDATE users SET virtual_credits = virtual_credits + ?, updated_at = ? WHERE id = ?"
	_, err := exec.ExecContext(ctx, sqlStr, amount, now, userID)
	return err
}

// DebitUserBalance 相对增量扣钱（下注），带余额下限保护
// 返回 false 表示余额不足（受影响行数为0）
func DebitUserBalance(ctx context.Context, exec sqlx.ExtContext, userID int64, amount decimal.Decimal) (bool, error) {
	now := time.Now()
	sqlStr := "UPDATE users SET virtual_credits = virtual_credits - ?, updated_at = ? WHERE id = ? AND virtual_credits >= ?"
	res, err := exec.ExecContext(ctx, sqlStr, amount, now, userID, amount)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// GetBalance 非锁查询余额（用于幂等冲突后的回补读取）
func GetBalance(ctx context.Context, db *sqlx.DB, userID int64) (decimal.Decimal, error) {
	sqlStr := "SELECT virtual_credits FROM users WHERE id = ? LIMIT 1"
	var balance decimal.Decimal
	if err := db.GetContext(ctx, &balance, sqlStr, userID); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}
