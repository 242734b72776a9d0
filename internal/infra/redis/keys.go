package redis

// Redis Key 定义与构造器
// 统一管理业务使用的 Redis Key，避免散落的魔法字符串

import "strconv"

const (
	// PrefixBetIdemResult：投注幂等“结果缓存”Key 的前缀。
	// 缓存某个 idempotency key 对应的第一次成功结果（BetOutput JSON），重复请求直接返回。
	PrefixBetIdemResult = "bet:idem:result:"
	// PrefixBetIdemLock：投注幂等“进行中锁”Key 的前缀。
	// 使用 SETNX + TTL 标记 idempotency key 正在处理，吸收瞬时重复请求。
	PrefixBetIdemLock = "bet:idem:lock:"

	// PrefixDrawResult：开奖期结果缓存（公布号码与结算汇总）
	PrefixDrawResult = "draw:result:"
)

// IdemResultKey 幂等“结果缓存”Key：bet:idem:result:{idempotency_key}
func IdemResultKey(k string) string { return PrefixBetIdemResult + k }

// IdemLockKey 幂等“进行中锁”Key：bet:idem:lock:{idempotency_key}
func IdemLockKey(k string) string { return PrefixBetIdemLock + k }

// DrawResultKey 开奖结果缓存 Key：draw:result:{draw_result_id}
func DrawResultKey(drawResultID int64) string {
	return PrefixDrawResult + strconv.FormatInt(drawResultID, 10)
}
