package game

import (
	"fmt"
	"strconv"
	"strings"
)

// 投注格式校验：落库前的入口网关
// 形状规则与 family.go 描述表对齐，保证校验口径与算奖口径一致

// ValidationError 投注格式错误（用户可修正），Reason 为可读原因
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NormalizeTokens 规范化投注号码列表：去空白、丢弃空项
func NormalizeTokens(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ValidateBetInput 按玩法族校验投注号码形状，通过返回 nil
// 未识别玩法直接放行（显式逃生口：算奖侧对未识别玩法恒为0命中，不会误派彩）
// 对格式错误只返回 *ValidationError，不会 panic
func ValidateBetInput(betTypeName string, rawTokens []string) error {
	tokens := NormalizeTokens(rawTokens)
	if len(tokens) == 0 {
		return invalid("numbers betted cannot be empty")
	}

	d, ok := Classify(betTypeName)
	if !ok {
		return nil
	}

	if len(tokens) != d.Tokens {
		if d.Tokens == 1 {
			return invalid("%s: expected a single value, got %d", strings.ToUpper(betTypeName), len(tokens))
		}
		return invalid("%s: expected exactly %d values separated by comma, got %d",
			strings.ToUpper(betTypeName), d.Tokens, len(tokens))
	}

	for _, t := range tokens {
		if d.Digits == 0 {
			// grupo 形式：1~25 的整数
			if !isValidGrupo(t) {
				return invalid("%s: %q is not a valid group (must be 1-25)", strings.ToUpper(betTypeName), t)
			}
			continue
		}
		if !isDigitsOfLen(t, d.Digits) {
			return invalid("%s: %q must be a %d-digit number", strings.ToUpper(betTypeName), t, d.Digits)
		}
	}
	return nil
}

func isDigitsOfLen(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isValidGrupo(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 25
}
