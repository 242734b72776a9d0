package game

// 算奖核心：对单注计算命中次数（hit count）
// 三种命中语义并存，不可合并成布尔输赢：
//   - passe 族：二元命中（0或1）
//   - milhar+centena 双通道：两路各自计数后求和
//   - 组合族：C(命中元素数, k)，同局多组同时命中会放大派彩倍数

// PrizeWindow 奖位窗口 [Start, End]，1-based 闭区间
type PrizeWindow struct {
	Start int
	End   int
}

// Evaluate 计算一注的命中次数
// tokens 为规范化后的投注号码；drawn 为完整的开奖序列（至多7个名次，按顺序）
// 除 passe 族按固定名次读取外，先按奖位窗口切片再逐名次匹配
// 未识别玩法恒为0命中：不报错，视为必输（由调用方记日志）
func Evaluate(tokens []string, betTypeName string, window PrizeWindow, drawn []string) int {
	tokens = NormalizeTokens(tokens)
	if len(tokens) == 0 {
		return 0
	}

	d, ok := Classify(betTypeName)
	if !ok {
		return 0
	}

	inWindow := sliceWindow(drawn, window)

	switch d.Family {
	case FamilySimple:
		return countExact(tokens[0], d.Extract, inWindow)

	case FamilyInverted:
		return countInverted(tokens[0], d.Extract, inWindow)

	case FamilyMilharCentena:
		return countMilharCentena(tokens[0], inWindow)

	case FamilyCombo:
		return countCombo(tokens, d.Extract, d.K, inWindow)

	case FamilyPasseVai, FamilyPasseVaiVem:
		// passe 族无视奖位窗口，固定读首奖与2~5奖
		return evalPasse(tokens, drawn, d.Family == FamilyPasseVaiVem)
	}
	return 0
}

// sliceWindow 取窗口内的开奖号码，越界部分收缩（第6/7奖可能缺席）
func sliceWindow(drawn []string, w PrizeWindow) []string {
	start := w.Start - 1
	if start < 0 {
		start = 0
	}
	end := w.End
	if end > len(drawn) {
		end = len(drawn)
	}
	if start >= end {
		return nil
	}
	return drawn[start:end]
}

// countExact 单号玩法：窗口内每个号码经萃取后与投注号码精确比对
func countExact(token string, extract ExtractFunc, nums []string) int {
	hits := 0
	for _, n := range nums {
		if v, ok := extract(n); ok && v == token {
			hits++
		}
	}
	return hits
}

// countInverted 倒转玩法：命中投注号码任一去重排列即算
func countInverted(token string, extract ExtractFunc, nums []string) int {
	perms := make(map[string]struct{})
	for _, p := range Permutations(token) {
		perms[p] = struct{}{}
	}
	hits := 0
	for _, n := range nums {
		if v, ok := extract(n); ok {
			if _, hit := perms[v]; hit {
				hits++
			}
		}
	}
	return hits
}

// countMilharCentena 双通道：milhar 全号命中数 + 尾部 centena 命中数
// 两路独立计分后相加，同一个开奖号码可以两路都贡献
func countMilharCentena(token string, nums []string) int {
	if len(token) < 3 {
		return 0
	}
	bettedMilhar := ""
	if len(token) == 4 {
		bettedMilhar = token
	}
	bettedCentena := token[len(token)-3:]

	hits := 0
	for _, n := range nums {
		if m, ok := Milhar(n); ok && bettedMilhar != "" && m == bettedMilhar {
			hits++
		}
		if c, ok := Centena(n); ok && c == bettedCentena {
			hits++
		}
	}
	return hits
}

// countCombo 组合玩法：窗口内萃取值去重成集合，与投注元素求交
// 命中次数 = C(交集大小, k)，即可赢的 k 元子集个数（派彩倍数，非布尔）
func countCombo(tokens []string, extract ExtractFunc, k int, nums []string) int {
	drawnSet := make(map[string]struct{})
	for _, n := range nums {
		if v, ok := extract(n); ok {
			drawnSet[v] = struct{}{}
		}
	}
	matches := 0
	for _, t := range tokens {
		if _, ok := drawnSet[t]; ok {
			matches++
		}
	}
	return Combinations(matches, k)
}

// evalPasse passe 玩法：两个 grupo (g1, g2)
// vai：首奖分组==g1 且 g2 出现在2~5奖分组中
// vai-e-vem：额外允许 g1/g2 角色互换
// 结果恒为0或1，不做组合放大
func evalPasse(tokens []string, drawn []string, bothWays bool) int {
	if len(tokens) != 2 || len(drawn) == 0 {
		return 0
	}
	g1, g2 := tokens[0], tokens[1]

	first, ok := Grupo(drawn[0])
	if !ok {
		return 0
	}

	end := 5
	if end > len(drawn) {
		end = len(drawn)
	}
	others := make(map[string]struct{})
	for _, n := range drawn[1:end] {
		if g, ok := Grupo(n); ok {
			others[g] = struct{}{}
		}
	}

	_, hasG2 := others[g2]
	vai := first == g1 && hasG2
	if vai {
		return 1
	}
	if bothWays {
		_, hasG1 := others[g1]
		if first == g2 && hasG1 {
			return 1
		}
	}
	return 0
}
