package game

import "strings"

// 玩法分族：校验与算奖共用同一张描述表，精确匹配分发
// 历史实现中两边各自用名字前缀启发式分类，名字互为前缀时会漂移错配，
// 这里收敛为单一数据源，表中没有的玩法一律视为未识别（校验放行、算奖0命中）

// Family 玩法族
type Family int8

const (
	FamilyUnknown       Family = iota
	FamilySimple               // 单号精确匹配：grupo/dezena/centena/milhar/unidade
	FamilyInverted             // 倒转：投注号码的去重排列集合命中即算
	FamilyMilharCentena        // milhar+centena 双通道各自计数求和
	FamilyCombo                // 组合玩法：C(命中数, k) 作为命中倍数
	FamilyPasseVai             // passe 单向：首奖分组+2~5奖分组
	FamilyPasseVaiVem          // passe 双向：允许两组角色互换
)

// ExtractFunc 萃取函数签名，ok=false 表示号码位数不足不适用
type ExtractFunc func(string) (string, bool)

// Descriptor 玩法描述：校验侧消费 Tokens/Digits，算奖侧消费 Family/Extract/K
type Descriptor struct {
	Family  Family
	Extract ExtractFunc // 萃取函数；passe 族固定按 Grupo 读取
	Tokens  int         // 期望的投注号码个数
	Digits  int         // 每个号码的固定位数；0 表示 grupo 形式（整数 1~25）
	K       int         // 组合子集大小，仅 FamilyCombo 使用
}

// 玩法描述表（权威清单）
// 名称与库表 bet_types.name 一致，大写规范化后精确匹配
var betFamilies = map[string]Descriptor{
	// 单号玩法
	"GRUPO":      {Family: FamilySimple, Extract: Grupo, Tokens: 1, Digits: 0},
	"GRUPO ESQ":  {Family: FamilySimple, Extract: GrupoEsq, Tokens: 1, Digits: 0},
	"GRUPO MEIO": {Family: FamilySimple, Extract: GrupoMeio, Tokens: 1, Digits: 0},
	"DEZENA":     {Family: FamilySimple, Extract: Dezena, Tokens: 1, Digits: 2},
	"CENTENA":    {Family: FamilySimple, Extract: Centena, Tokens: 1, Digits: 3},
	"MILHAR":     {Family: FamilySimple, Extract: Milhar, Tokens: 1, Digits: 4},
	"UNIDADE":    {Family: FamilySimple, Extract: Unidade, Tokens: 1, Digits: 1},

	// 倒转玩法（排列命中）
	"CENTENA INV": {Family: FamilyInverted, Extract: Centena, Tokens: 1, Digits: 3},
	"MILHAR INV":  {Family: FamilyInverted, Extract: Milhar, Tokens: 1, Digits: 4},

	// milhar+centena 双通道
	"MILHAR E CT": {Family: FamilyMilharCentena, Tokens: 1, Digits: 4},

	// 组合玩法：grupo 元组
	"DUQUE GP":     {Family: FamilyCombo, Extract: Grupo, Tokens: 2, Digits: 0, K: 2},
	"TERNO GP":     {Family: FamilyCombo, Extract: Grupo, Tokens: 3, Digits: 0, K: 3},
	"QUADRA GP":    {Family: FamilyCombo, Extract: Grupo, Tokens: 4, Digits: 0, K: 4},
	"QUINA GP 8/5": {Family: FamilyCombo, Extract: Grupo, Tokens: 5, Digits: 0, K: 5},
	"SENA GP 10/6": {Family: FamilyCombo, Extract: Grupo, Tokens: 6, Digits: 0, K: 6},

	// 组合玩法：dezena 元组
	"DUQUE DEZ":      {Family: FamilyCombo, Extract: Dezena, Tokens: 2, Digits: 2, K: 2},
	"TERNO DEZ":      {Family: FamilyCombo, Extract: Dezena, Tokens: 3, Digits: 2, K: 3},
	"TERNO DEZ SECO": {Family: FamilyCombo, Extract: Dezena, Tokens: 3, Digits: 2, K: 3},

	// passe
	"PASSE VAI":     {Family: FamilyPasseVai, Extract: Grupo, Tokens: 2, Digits: 0},
	"PASSE VAI VEM": {Family: FamilyPasseVaiVem, Extract: Grupo, Tokens: 2, Digits: 0},
}

// Classify 按规范化名称精确查表
// ok=false 表示未识别玩法：校验侧放行（入口网关的显式逃生口），算奖侧判0命中
func Classify(betTypeName string) (Descriptor, bool) {
	name := strings.ToUpper(strings.TrimSpace(betTypeName))
	d, ok := betFamilies[name]
	return d, ok
}
