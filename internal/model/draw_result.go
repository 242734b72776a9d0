package model

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	"github.com/jmoiron/sqlx"
)

// 开奖期状态
const (
	DrawStatusPending   int8 = 1 // 待开奖
	DrawStatusPublished int8 = 2 // 已开奖
	DrawStatusSettled   int8 = 3 // 已结算
)

var goquDialect = goqu.Dialect("mysql")

// DrawResult 对应 draw_results 表
// 每个 (场次, 开奖日) 一条记录；prize_1..prize_5 必填，prize_6/7 部分场次才有
// status: 1=待开奖 2=已开奖 3=已结算
type DrawResult struct {
	ID             int64          `db:"id"`               // 期ID(主键)
	DrawScheduleID int64          `db:"draw_schedule_id"` // 场次ID
	DrawDate       time.Time      `db:"draw_date"`        // 开奖日（日期，无时分秒）
	Prize1         sql.NullString `db:"prize_1"`          // 头奖号码（4位）
	Prize2         sql.NullString `db:"prize_2"`
	Prize3         sql.NullString `db:"prize_3"`
	Prize4         sql.NullString `db:"prize_4"`
	Prize5         sql.NullString `db:"prize_5"`
	Prize6         sql.NullString `db:"prize_6"` // 可选第6奖
	Prize7         sql.NullString `db:"prize_7"` // 可选第7奖
	Status         int8           `db:"status"`  // 期状态
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// PrizeNumbers 按奖位序展开号码列表（跳过缺失的 6/7 奖）
func (d *DrawResult) PrizeNumbers() []string {
	out := make([]string, 0, 7)
	for _, p := range []sql.NullString{d.Prize1, d.Prize2, d.Prize3, d.Prize4, d.Prize5, d.Prize6, d.Prize7} {
		if p.Valid && p.String != "" {
			out = append(out, p.String)
		}
	}
	return out
}

// GetDrawResult 非锁查询
func GetDrawResult(ctx context.Context, db *sqlx.DB, id int64) (*DrawResult, error) {
	sqlStr := `SELECT id, draw_schedule_id, draw_date, prize_1, prize_2, prize_3, prize_4, prize_5, prize_6, prize_7, status, created_at, updated_at
		FROM draw_results WHERE id = ? LIMIT 1`
	var d DrawResult
	if err := db.GetContext(ctx, &d, sqlStr, id); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDrawForUpdate 加锁查询（FOR UPDATE），请在事务中调用
func GetDrawForUpdate(ctx context.Context, exec sqlx.ExtContext, id int64) (*DrawResult, error) {
	sqlStr := `SELECT id, draw_schedule_id, draw_date, prize_1, prize_2, prize_3, prize_4, prize_5, prize_6, prize_7, status, created_at, updated_at
		FROM draw_results WHERE id = ? FOR UPDATE`
	var d DrawResult
	if err := sqlx.GetContext(ctx, exec, &d, sqlStr, id); err != nil {
		return nil, err
	}
	return &d, nil
}

// FindOrCreateDraw 按 (场次, 开奖日) 找或建当期记录
// 依赖 (draw_schedule_id, draw_date) 唯一索引；插入撞唯一键时回读既存行
func FindOrCreateDraw(ctx context.Context, db *sqlx.DB, scheduleID int64, drawDate time.Time) (*DrawResult, error) {
	day := drawDate.Format("2006-01-02")
	sqlStr := `SELECT id, draw_schedule_id, draw_date, prize_1, prize_2, prize_3, prize_4, prize_5, prize_6, prize_7, status, created_at, updated_at
		FROM draw_results WHERE draw_schedule_id = ? AND draw_date = ? LIMIT 1`
	var d DrawResult
	err := db.GetContext(ctx, &d, sqlStr, scheduleID, day)
	if err == nil {
		return &d, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	now := time.Now()
	ins := "INSERT INTO draw_results (draw_schedule_id, draw_date, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	res, insErr := db.ExecContext(ctx, ins, scheduleID, day, DrawStatusPending, now, now)
	if insErr != nil {
		if IsDuplicateKeyErr(insErr) {
			// 并发创建撞唯一键，回读胜者
			if err := db.GetContext(ctx, &d, sqlStr, scheduleID, day); err != nil {
				return nil, err
			}
			return &d, nil
		}
		return nil, insErr
	}
	id, _ := res.LastInsertId()
	d = DrawResult{ID: id, DrawScheduleID: scheduleID, DrawDate: drawDate, Status: DrawStatusPending, CreatedAt: now, UpdatedAt: now}
	return &d, nil
}

// PublishDraw 写入奖号并置为已开奖（需在事务中持有行锁后调用）
func PublishDraw(ctx context.Context, exec sqlx.ExtContext, id int64, prizes []string) error {
	now := time.Now()
	var p6, p7 interface{}
	if len(prizes) > 5 {
		p6 = prizes[5]
	}
	if len(prizes) > 6 {
		p7 = prizes[6]
	}
	sqlStr := `UPDATE draw_results SET prize_1 = ?, prize_2 = ?, prize_3 = ?, prize_4 = ?, prize_5 = ?,
		prize_6 = ?, prize_7 = ?, status = ?, updated_at = ? WHERE id = ?`
	_, err := exec.ExecContext(ctx, sqlStr, prizes[0], prizes[1], prizes[2], prizes[3], prizes[4],
		p6, p7, DrawStatusPublished, now, id)
	return err
}

// MarkDrawSettled 结算批次收尾时置为已结算
func MarkDrawSettled(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	now := time.Now()
	sqlStr := "UPDATE draw_results SET status = ?, updated_at = ? WHERE id = ?"
	_, err := exec.ExecContext(ctx, sqlStr, DrawStatusSettled, now, id)
	return err
}

// PublishedResult 对外展示的开奖结果（含场次名）
type PublishedResult struct {
	ID           int64          `db:"id" json:"id"`
	ScheduleName string         `db:"schedule_name" json:"schedule_name"`
	DrawDate     time.Time      `db:"draw_date" json:"draw_date"`
	Prize1       string         `db:"prize_1" json:"prize_1"`
	Prize2       string         `db:"prize_2" json:"prize_2"`
	Prize3       string         `db:"prize_3" json:"prize_3"`
	Prize4       string         `db:"prize_4" json:"prize_4"`
	Prize5       string         `db:"prize_5" json:"prize_5"`
	Prize6       sql.NullString `db:"prize_6" json:"prize_6"`
	Prize7       sql.NullString `db:"prize_7" json:"prize_7"`
	Status       int8           `db:"status" json:"status"`
}

// ListPublishedResults 查询已开奖结果，支持按日期/场次过滤
// 查询条件是动态组合的，这里用 goqu 构造而非手拼 SQL
func ListPublishedResults(ctx context.Context, db *sqlx.DB, scheduleID int64, from, to time.Time, limit int) ([]PublishedResult, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	ds := goquDialect.From(goqu.T("draw_results").As("d")).
		Join(goqu.T("draw_schedules").As("s"), goqu.On(goqu.Ex{"s.id": goqu.I("d.draw_schedule_id")})).
		Select(
			goqu.I("d.id"), goqu.I("s.name").As("schedule_name"), goqu.I("d.draw_date"),
			goqu.I("d.prize_1"), goqu.I("d.prize_2"), goqu.I("d.prize_3"), goqu.I("d.prize_4"), goqu.I("d.prize_5"),
			goqu.I("d.prize_6"), goqu.I("d.prize_7"), goqu.I("d.status"),
		).
		Where(goqu.I("d.status").Gte(DrawStatusPublished))
	if scheduleID > 0 {
		ds = ds.Where(goqu.I("d.draw_schedule_id").Eq(scheduleID))
	}
	if !from.IsZero() {
		ds = ds.Where(goqu.I("d.draw_date").Gte(from.Format("2006-01-02")))
	}
	if !to.IsZero() {
		ds = ds.Where(goqu.I("d.draw_date").Lte(to.Format("2006-01-02")))
	}
	ds = ds.Order(goqu.I("d.draw_date").Desc(), goqu.I("d.id").Desc()).Limit(uint(limit))

	sqlStr, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	var rs []PublishedResult
	if err := db.SelectContext(ctx, &rs, sqlStr, args...); err != nil {
		return nil, err
	}
	return rs, nil
}
