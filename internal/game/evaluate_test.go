package game

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEvaluateSimple(t *testing.T) {
	drawn := []string{"4360", "1215", "0004", "9960", "1200"}

	// grupo 15 命中第1奖（dezena 60）和第4奖（dezena 60）
	if got := Evaluate([]string{"15"}, "GRUPO", PrizeWindow{1, 5}, drawn); got != 2 {
		t.Fatalf("GRUPO hits = %d, want 2", got)
	}
	// 窗口只看首奖
	if got := Evaluate([]string{"15"}, "GRUPO", PrizeWindow{1, 1}, drawn); got != 1 {
		t.Fatalf("GRUPO first prize hits = %d, want 1", got)
	}
	// dezena 精确匹配
	if got := Evaluate([]string{"60"}, "DEZENA", PrizeWindow{1, 5}, drawn); got != 2 {
		t.Fatalf("DEZENA hits = %d, want 2", got)
	}
	if got := Evaluate([]string{"360"}, "CENTENA", PrizeWindow{1, 5}, drawn); got != 1 {
		t.Fatalf("CENTENA hits = %d, want 1", got)
	}
	if got := Evaluate([]string{"4360"}, "MILHAR", PrizeWindow{1, 5}, drawn); got != 1 {
		t.Fatalf("MILHAR hits = %d, want 1", got)
	}
}

func TestEvaluateUnidadeVsMilhar(t *testing.T) {
	// "0004"：milhar 是 "0004" ≠ "4"，但 unidade 是 "4"
	drawn := []string{"0004"}
	if got := Evaluate([]string{"4"}, "MILHAR", PrizeWindow{1, 1}, drawn); got != 0 {
		t.Fatalf("MILHAR token 4 hits = %d, want 0", got)
	}
	if got := Evaluate([]string{"4"}, "UNIDADE", PrizeWindow{1, 1}, drawn); got != 1 {
		t.Fatalf("UNIDADE token 4 hits = %d, want 1", got)
	}
}

func TestEvaluateWindowSlicing(t *testing.T) {
	drawn := []string{"1111", "2222", "3333", "4444", "5555", "6666", "7777"}
	// 仅第6奖
	if got := Evaluate([]string{"66"}, "DEZENA", PrizeWindow{6, 6}, drawn); got != 1 {
		t.Fatalf("window [6,6] hits = %d, want 1", got)
	}
	// 第6/7奖缺席时窗口收缩为空，不报错
	short := drawn[:5]
	if got := Evaluate([]string{"66"}, "DEZENA", PrizeWindow{6, 6}, short); got != 0 {
		t.Fatalf("empty window hits = %d, want 0", got)
	}
	if got := Evaluate([]string{"77"}, "DEZENA", PrizeWindow{6, 7}, short); got != 0 {
		t.Fatalf("out-of-range window hits = %d, want 0", got)
	}
}

func TestEvaluateInverted(t *testing.T) {
	// 投注 "360" 的排列集合含 "036"，开奖 centena "036" 命中
	drawn := []string{"9036", "4360"}
	if got := Evaluate([]string{"360"}, "CENTENA INV", PrizeWindow{1, 2}, drawn); got != 2 {
		t.Fatalf("CENTENA INV hits = %d, want 2", got)
	}
	// 重复数字不会多计：投注 "112"，"211" 命中1次
	drawn = []string{"0211"}
	if got := Evaluate([]string{"112"}, "CENTENA INV", PrizeWindow{1, 1}, drawn); got != 1 {
		t.Fatalf("CENTENA INV repeated-digit hits = %d, want 1", got)
	}
	if got := Evaluate([]string{"1234"}, "MILHAR INV", PrizeWindow{1, 1}, []string{"4321"}); got != 1 {
		t.Fatalf("MILHAR INV hits = %d, want 1", got)
	}
}

func TestEvaluateMilharCentenaDualChannel(t *testing.T) {
	// "4360"：milhar 通道命中第1奖，centena 通道命中第1奖与第2奖（"9360"）
	drawn := []string{"4360", "9360"}
	if got := Evaluate([]string{"4360"}, "MILHAR E CT", PrizeWindow{1, 2}, drawn); got != 3 {
		t.Fatalf("MILHAR E CT hits = %d, want 3 (1 milhar + 2 centena)", got)
	}
	// 两通道都不中
	if got := Evaluate([]string{"1111"}, "MILHAR E CT", PrizeWindow{1, 2}, drawn); got != 0 {
		t.Fatalf("MILHAR E CT miss hits = %d, want 0", got)
	}
}

func TestEvaluateComboGrupo(t *testing.T) {
	// 5个开奖号码的分组去重后 = {1, 2, 3}
	// dezena 01..04 -> grupo 1, 05..08 -> 2, 09..12 -> 3
	drawn := []string{"0001", "0005", "0009", "0002", "0006"}

	// 投注 {1,2}，交集2个，C(2,2)=1
	if got := Evaluate([]string{"1", "2"}, "DUQUE GP", PrizeWindow{1, 5}, drawn); got != 1 {
		t.Fatalf("DUQUE GP hits = %d, want 1", got)
	}
	// 投注 {1,2,3}，交集3个，C(3,2)=3 —— 命中倍数而非布尔
	if got := Evaluate([]string{"1", "2", "3"}, "DUQUE GP", PrizeWindow{1, 5}, drawn); got != 3 {
		t.Fatalf("DUQUE GP multiplier hits = %d, want 3", got)
	}
	// 只命中1个，凑不齐2元组
	if got := Evaluate([]string{"1", "20"}, "DUQUE GP", PrizeWindow{1, 5}, drawn); got != 0 {
		t.Fatalf("DUQUE GP partial hits = %d, want 0", got)
	}
	if got := Evaluate([]string{"1", "2", "3"}, "TERNO GP", PrizeWindow{1, 5}, drawn); got != 1 {
		t.Fatalf("TERNO GP hits = %d, want 1", got)
	}
}

func TestEvaluateComboDezena(t *testing.T) {
	drawn := []string{"0011", "0022", "0033", "0044", "0055"}
	if got := Evaluate([]string{"11", "22"}, "DUQUE DEZ", PrizeWindow{1, 5}, drawn); got != 1 {
		t.Fatalf("DUQUE DEZ hits = %d, want 1", got)
	}
	// 重复 dezena 去重后只算一个元素
	dup := []string{"0011", "1011", "9911", "0022", "0033"}
	if got := Evaluate([]string{"11", "22"}, "DUQUE DEZ", PrizeWindow{1, 5}, dup); got != 1 {
		t.Fatalf("DUQUE DEZ dedup hits = %d, want 1", got)
	}
	if got := Evaluate([]string{"11", "22", "33"}, "TERNO DEZ", PrizeWindow{1, 5}, drawn); got != 1 {
		t.Fatalf("TERNO DEZ hits = %d, want 1", got)
	}
}

func TestEvaluatePasse(t *testing.T) {
	// 首奖 "0001" -> grupo 1；第2~5奖分组含 {2, 3, 4, 5}
	drawn := []string{"0001", "0005", "0009", "0013", "0017"}

	// vai：g1==首奖分组 且 g2 在 2~5 奖中
	if got := Evaluate([]string{"1", "2"}, "PASSE VAI", PrizeWindow{1, 5}, drawn); got != 1 {
		t.Fatalf("PASSE VAI hits = %d, want 1", got)
	}
	// vai 方向固定：角色互换不算
	if got := Evaluate([]string{"2", "1"}, "PASSE VAI", PrizeWindow{1, 5}, drawn); got != 0 {
		t.Fatalf("PASSE VAI swapped hits = %d, want 0", got)
	}
	// vai-e-vem：互换也算
	if got := Evaluate([]string{"2", "1"}, "PASSE VAI VEM", PrizeWindow{1, 5}, drawn); got != 1 {
		t.Fatalf("PASSE VAI VEM swapped hits = %d, want 1", got)
	}
	// 完全不中
	if got := Evaluate([]string{"20", "21"}, "PASSE VAI VEM", PrizeWindow{1, 5}, drawn); got != 0 {
		t.Fatalf("PASSE VAI VEM miss hits = %d, want 0", got)
	}
	// passe 无视奖位窗口：窗口 [1,1] 仍读 2~5 奖
	if got := Evaluate([]string{"1", "2"}, "PASSE VAI", PrizeWindow{1, 1}, drawn); got != 1 {
		t.Fatalf("PASSE VAI ignores window, hits = %d, want 1", got)
	}
	// 结果恒为0或1，不做组合放大
	both := []string{"0001", "0005", "0005", "0005", "0005"}
	if got := Evaluate([]string{"1", "2"}, "PASSE VAI", PrizeWindow{1, 5}, both); got != 1 {
		t.Fatalf("PASSE VAI binary hits = %d, want 1", got)
	}
}

func TestEvaluateUnknownFamily(t *testing.T) {
	drawn := []string{"4360"}
	if got := Evaluate([]string{"anything"}, "PALPITAO", PrizeWindow{1, 1}, drawn); got != 0 {
		t.Fatalf("unknown family hits = %d, want 0", got)
	}
}

func TestPayout(t *testing.T) {
	wager := decimal.RequireFromString("10.00")
	rate := decimal.RequireFromString("18.00")

	amt := Payout(wager, rate, 1)
	if amt.String() != "180" && !amt.Equal(decimal.RequireFromString("180.00")) {
		t.Fatalf("Payout = %s, want 180.00", amt.String())
	}

	// 1000 次累加无精度漂移
	total := decimal.Zero
	for i := 0; i < 1000; i++ {
		total = total.Add(Payout(wager, rate, 1))
	}
	if !total.Equal(decimal.RequireFromString("180000.00")) {
		t.Fatalf("sum of 1000 payouts = %s, want 180000.00", total.String())
	}

	// 命中次数是乘数
	if got := Payout(wager, rate, 3); !got.Equal(decimal.RequireFromString("540.00")) {
		t.Fatalf("Payout hits=3 = %s, want 540.00", got.String())
	}
	if got := Payout(wager, rate, 0); !got.IsZero() {
		t.Fatalf("Payout hits=0 = %s, want 0", got.String())
	}
}
