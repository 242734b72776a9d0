package game

import "strconv"

// 号码萃取：从开奖号码（至多4位的数字串）提取各语义键
// 开奖号码第6/7名可能缺席或位数不足，位数不够时返回 ok=false 表示"不适用"
// 注意：返回值保持字符串形式，匹配时做精确字符串比较（grupo 不补零）

// Unidade 返回号码的最后1位
// 例："4360" -> "0"
func Unidade(prizeNumber string) (string, bool) {
	if len(prizeNumber) < 1 {
		return "", false
	}
	return prizeNumber[len(prizeNumber)-1:], true
}

// Dezena 返回号码的最后2位
// 例："4360" -> "60"
func Dezena(prizeNumber string) (string, bool) {
	if len(prizeNumber) < 2 {
		return "", false
	}
	return prizeNumber[len(prizeNumber)-2:], true
}

// Centena 返回号码的最后3位
// 例："4360" -> "360"
func Centena(prizeNumber string) (string, bool) {
	if len(prizeNumber) < 3 {
		return "", false
	}
	return prizeNumber[len(prizeNumber)-3:], true
}

// Milhar 返回号码的最后4位
// 例："4360" -> "4360"
func Milhar(prizeNumber string) (string, bool) {
	if len(prizeNumber) < 4 {
		return "", false
	}
	return prizeNumber[len(prizeNumber)-4:], true
}

// Grupo 按尾部 dezena 计算分组（25组划分 00-99）
// 规则：dezena "00" 属于第25组（回卷边界），其余取 ceil(dezena/4)
// 例："4360" -> dezena 60 -> grupo "15"；"1200" -> dezena 00 -> grupo "25"
func Grupo(prizeNumber string) (string, bool) {
	dz, ok := Dezena(prizeNumber)
	if !ok {
		return "", false
	}
	return grupoFromDezena(dz)
}

// GrupoEsq 按号码左侧 dezena（前2位）计算分组，GRUPO ESQ 变体使用
// 仅对完整4位号码有意义
func GrupoEsq(prizeNumber string) (string, bool) {
	if len(prizeNumber) < 4 {
		return "", false
	}
	return grupoFromDezena(prizeNumber[:2])
}

// GrupoMeio 按号码中间 dezena（第2-3位）计算分组，GRUPO MEIO 变体使用
func GrupoMeio(prizeNumber string) (string, bool) {
	if len(prizeNumber) < 4 {
		return "", false
	}
	return grupoFromDezena(prizeNumber[1:3])
}

func grupoFromDezena(dz string) (string, bool) {
	if dz == "00" {
		return "25", true
	}
	n, err := strconv.Atoi(dz)
	if err != nil {
		return "", false
	}
	// 整数向上取整：每4个 dezena 一组
	return strconv.Itoa((n + 3) / 4), true
}
