package helper

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	beegocontext "github.com/beego/beego/v2/server/web/context"
)

// IsJSONContentType 判断是否为 JSON 请求
func IsJSONContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.Contains(ct, "json")
}

// 金额格式校验：非负，最多两位小数（预编译正则）
var moneyRe = regexp.MustCompile(`^(?:0|[1-9]\d*)(?:\.\d{1,2})?$`)

// IsMoneyFormat 判断金额格式
func IsMoneyFormat(s string) bool {
	return moneyRe.MatchString(strings.TrimSpace(s))
}

// 默认输入保护参数
const (
	defaultJSONMaxBytes int64         = 1 << 20 // 1MB
	defaultParseTimeout time.Duration = 1 * time.Second
)

type deadlineReader struct {
	r        io.Reader
	deadline time.Time
}

func (dr *deadlineReader) Read(p []byte) (int, error) {
	if time.Now().After(dr.deadline) {
		return 0, fmt.Errorf("read timeout")
	}
	return dr.r.Read(p)
}

// jsonBodyReader 在 JSON 分支下为请求体增加大小限制与解析超时保护
func jsonBodyReader(ctx *beegocontext.Context) io.Reader {
	lr := io.LimitReader(ctx.Request.Body, defaultJSONMaxBytes)
	return &deadlineReader{r: lr, deadline: time.Now().Add(defaultParseTimeout)}
}

// GetTraceID 统一提取 trace_id：优先从中间件注入的数据取，其次从常见请求头降级
func GetTraceID(ctx *beegocontext.Context) string {
	if v := ctx.Input.GetData("trace_id"); v != nil {
		return fmt.Sprint(v)
	}
	if h := strings.TrimSpace(ctx.Input.Header("X-Trace-ID")); h != "" {
		return h
	}
	if h := strings.TrimSpace(ctx.Input.Header("Trace-Id")); h != "" {
		return h
	}
	return ""
}

// parseByContentType 按 Content-Type 选择解析函数，减少重复 if/else 分支
func parseByContentType[T any](ctx *beegocontext.Context,
	jsonParser func(io.Reader) (T, bool, string),
	formParser func(*beegocontext.Context) (T, bool, string),
) (T, bool, string) {
	ct := ctx.Input.Header("Content-Type")
	if IsJSONContentType(ct) {
		return jsonParser(jsonBodyReader(ctx))
	}
	return formParser(ctx)
}

// BetParsed 解析后的投注入参（与控制器/服务层解耦）
type BetParsed struct {
	DrawScheduleID int64    `json:"draw_schedule_id"`
	BetTypeID      int64    `json:"bet_type_id"`
	PrizeTierID    int64    `json:"prize_tier_id"`
	Numbers        []string `json:"numbers"`
	Amount         string   `json:"amount"`
	IdempotencyKey string   `json:"idempotency_key"`
}

// ParseBetFromJSON 解析 JSON 到 BetParsed。失败返回 false 与错误消息。
func ParseBetFromJSON(r io.Reader) (BetParsed, bool, string) {
	var out BetParsed
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return BetParsed{}, false, "invalid json body"
	}
	return out, true, ""
}

// ParseBetFromForm 从表单读取字段并做强校验
func ParseBetFromForm(ctx *beegocontext.Context) (BetParsed, bool, string) {
	var out BetParsed
	var err error

	out.DrawScheduleID, err = parseInt64Field(ctx, "draw_schedule_id")
	if err != nil {
		return BetParsed{}, false, "draw_schedule_id must be integer"
	}
	out.BetTypeID, err = parseInt64Field(ctx, "bet_type_id")
	if err != nil {
		return BetParsed{}, false, "bet_type_id must be integer"
	}
	out.PrizeTierID, err = parseInt64Field(ctx, "prize_tier_id")
	if err != nil {
		return BetParsed{}, false, "prize_tier_id must be integer"
	}

	numbersStr := strings.TrimSpace(ctx.Input.Query("numbers"))
	if numbersStr != "" {
		for _, n := range strings.Split(numbersStr, ",") {
			if s := strings.TrimSpace(n); s != "" {
				out.Numbers = append(out.Numbers, s)
			}
		}
	}
	out.Amount = strings.TrimSpace(ctx.Input.Query("amount"))
	out.IdempotencyKey = strings.TrimSpace(ctx.Input.Query("idempotency_key"))
	return out, true, ""
}

func parseInt64Field(ctx *beegocontext.Context, name string) (int64, error) {
	s := strings.TrimSpace(ctx.Input.Query(name))
	if s == "" {
		return 0, fmt.Errorf("%s required", name)
	}
	return strconv.ParseInt(s, 10, 64)
}

// ValidateBet 业务前置校验（细粒度校验在服务层）
func ValidateBet(in *BetParsed) (bool, string) {
	if in.DrawScheduleID <= 0 {
		return false, "draw_schedule_id required"
	}
	if in.BetTypeID <= 0 {
		return false, "bet_type_id required"
	}
	if in.PrizeTierID <= 0 {
		return false, "prize_tier_id required"
	}
	if len(in.Numbers) == 0 {
		return false, "numbers required"
	}
	if !IsMoneyFormat(in.Amount) {
		return false, "amount must be a non-negative number with at most 2 decimals"
	}
	if strings.TrimSpace(in.IdempotencyKey) == "" {
		return false, "idempotency_key required"
	}
	if len(in.IdempotencyKey) > 64 {
		return false, "idempotency_key too long (max 64)"
	}
	return true, ""
}

// ParseAndValidateBet 一步完成解析与校验
func ParseAndValidateBet(ctx *beegocontext.Context) (BetParsed, bool, string) {
	out, ok, msg := parseByContentType(ctx, ParseBetFromJSON, ParseBetFromForm)
	if !ok {
		return out, false, msg
	}
	if ok, msg := ValidateBet(&out); !ok {
		return out, false, msg
	}
	return out, true, ""
}

// DrawPublishParsed 解析后的开奖入参
type DrawPublishParsed struct {
	DrawResultID int64    `json:"draw_result_id"`
	Prizes       []string `json:"prizes"`
}

// ParseDrawPublishFromJSON 解析 JSON 到 DrawPublishParsed
func ParseDrawPublishFromJSON(r io.Reader) (DrawPublishParsed, bool, string) {
	var out DrawPublishParsed
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return DrawPublishParsed{}, false, "invalid json body"
	}
	return out, true, ""
}

// ParseDrawPublishFromForm 从表单读取开奖字段
func ParseDrawPublishFromForm(ctx *beegocontext.Context) (DrawPublishParsed, bool, string) {
	var out DrawPublishParsed
	var err error
	out.DrawResultID, err = parseInt64Field(ctx, "draw_result_id")
	if err != nil {
		return DrawPublishParsed{}, false, "draw_result_id must be integer"
	}
	prizesStr := strings.TrimSpace(ctx.Input.Query("prizes"))
	if prizesStr != "" {
		for _, p := range strings.Split(prizesStr, ",") {
			if s := strings.TrimSpace(p); s != "" {
				out.Prizes = append(out.Prizes, s)
			}
		}
	}
	return out, true, ""
}

// ValidateDrawPublish 开奖入参前置校验（奖号内容的细校验在服务层）
func ValidateDrawPublish(in *DrawPublishParsed) (bool, string) {
	if in.DrawResultID <= 0 {
		return false, "draw_result_id required"
	}
	if len(in.Prizes) < 5 {
		return false, "at least 5 prize numbers required"
	}
	if len(in.Prizes) > 7 {
		return false, "at most 7 prize numbers allowed"
	}
	return true, ""
}

// ParseAndValidateDrawPublish 一步完成解析与校验
func ParseAndValidateDrawPublish(ctx *beegocontext.Context) (DrawPublishParsed, bool, string) {
	out, ok, msg := parseByContentType(ctx, ParseDrawPublishFromJSON, ParseDrawPublishFromForm)
	if !ok {
		return out, false, msg
	}
	if ok, msg := ValidateDrawPublish(&out); !ok {
		return out, false, msg
	}
	return out, true, ""
}
