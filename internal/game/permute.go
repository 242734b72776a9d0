package game

// 排列与组合辅助：倒转玩法与组合玩法使用
// 输入规模受玩法约束（号码至多4位、组合元素至多6个），递归实现足够

// Permutations 生成字符串全部去重的字符排列
// 每层递归对同一字符值只固定一次，重复数字不会产生重复排列：
// "112" -> ["112" "121" "211"]（3个，而非 3! = 6 个）
func Permutations(s string) []string {
	if len(s) <= 1 {
		return []string{s}
	}
	var perms []string
	for i := 0; i < len(s); i++ {
		// 同一字符值在本层只处理第一次出现
		if indexByte(s, s[i]) != i {
			continue
		}
		rest := s[:i] + s[i+1:]
		for _, sub := range Permutations(rest) {
			perms = append(perms, string(s[i])+sub)
		}
	}
	return perms
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

// Factorial 阶乘，负数返回 -1
func Factorial(n int) int {
	if n < 0 {
		return -1
	}
	if n == 0 {
		return 1
	}
	return n * Factorial(n-1)
}

// Combinations 组合数 C(n, k)，k>n 或 k<0 时为 0
func Combinations(n, k int) int {
	if k > n || k < 0 {
		return 0
	}
	return Factorial(n) / (Factorial(k) * Factorial(n-k))
}
