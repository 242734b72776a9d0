package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"loto-server/internal/config"
	"loto-server/internal/model"

	decimal "github.com/shopspring/decimal"
)

// fakeSettleStore 内存版 SettleStore，用于确定性验证结算流程
type fakeSettleStore struct {
	draws    map[int64]*model.DrawResult
	bets     []model.BetForSettle
	rules    []model.PayoutRule
	statuses map[int64]int8            // bet_id -> 状态
	won      map[int64]decimal.Decimal // bet_id -> 派彩
	balances map[int64]decimal.Decimal // user_id -> 余额
	failIDs  map[int64]bool            // 模拟单注结算故障
	logs     []*model.SettlementLog
	settled  map[int64]bool
}

func newFakeStore() *fakeSettleStore {
	return &fakeSettleStore{
		draws:    map[int64]*model.DrawResult{},
		statuses: map[int64]int8{},
		won:      map[int64]decimal.Decimal{},
		balances: map[int64]decimal.Decimal{},
		failIDs:  map[int64]bool{},
		settled:  map[int64]bool{},
	}
}

func (f *fakeSettleStore) GetDraw(ctx context.Context, id int64) (*model.DrawResult, error) {
	d, ok := f.draws[id]
	if !ok {
		return nil, fmt.Errorf("sql: no rows in result set")
	}
	return d, nil
}

func (f *fakeSettleStore) ListPendingBets(ctx context.Context, id int64) ([]model.BetForSettle, error) {
	var out []model.BetForSettle
	for _, b := range f.bets {
		if b.DrawResultID == id && f.statuses[b.ID] == model.BetStatusPending {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeSettleStore) ListPayoutRules(ctx context.Context) ([]model.PayoutRule, error) {
	return f.rules, nil
}

func (f *fakeSettleStore) SettleWin(ctx context.Context, bet model.BetForSettle, amountWon decimal.Decimal, traceID string) (bool, error) {
	if f.failIDs[bet.ID] {
		return false, fmt.Errorf("simulated store failure")
	}
	if f.statuses[bet.ID] != model.BetStatusPending {
		return false, nil
	}
	f.statuses[bet.ID] = model.BetStatusWon
	f.won[bet.ID] = amountWon
	f.balances[bet.UserID] = f.balances[bet.UserID].Add(amountWon)
	return true, nil
}

func (f *fakeSettleStore) SettleLoss(ctx context.Context, bet model.BetForSettle, traceID string) (bool, error) {
	if f.failIDs[bet.ID] {
		return false, fmt.Errorf("simulated store failure")
	}
	if f.statuses[bet.ID] != model.BetStatusPending {
		return false, nil
	}
	f.statuses[bet.ID] = model.BetStatusLost
	return true, nil
}

func (f *fakeSettleStore) RecordSettlement(ctx context.Context, log *model.SettlementLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeSettleStore) MarkSettled(ctx context.Context, id int64) error {
	f.settled[id] = true
	if d, ok := f.draws[id]; ok {
		d.Status = model.DrawStatusSettled
	}
	return nil
}

func ns(s string) sql.NullString { return sql.NullString{String: s, Valid: s != ""} }

func publishedDraw(id int64, prizes ...string) *model.DrawResult {
	d := &model.DrawResult{ID: id, Status: model.DrawStatusPublished}
	p := make([]string, 7)
	copy(p, prizes)
	d.Prize1, d.Prize2, d.Prize3, d.Prize4, d.Prize5 = ns(p[0]), ns(p[1]), ns(p[2]), ns(p[3]), ns(p[4])
	d.Prize6, d.Prize7 = ns(p[5]), ns(p[6])
	return d
}

func (f *fakeSettleStore) addBet(id, userID int64, betType string, start, end int, numbers string, wagered string) {
	f.bets = append(f.bets, model.BetForSettle{
		ID: id, UserID: userID, DrawResultID: 1,
		BetTypeID: id, PrizeTierID: 1,
		BetTypeName: betType, StartPrize: start, EndPrize: end,
		NumbersBetted: numbers,
		AmountWagered: decimal.RequireFromString(wagered),
	})
	f.statuses[id] = model.BetStatusPending
	f.rules = append(f.rules, model.PayoutRule{BetTypeID: id, PrizeTierID: 1, Rate: decimal.RequireFromString("18.00")})
}

func TestSettleDrawWinCreditsBalance(t *testing.T) {
	st := newFakeStore()
	st.draws[1] = publishedDraw(1, "1234", "5678", "9012", "3456", "7890")
	st.addBet(10, 100, "MILHAR", 1, 1, "1234", "10.00")

	svc := NewSettleService(st)
	sum, err := svc.SettleDraw(context.Background(), 1, "t1")
	if err != nil {
		t.Fatalf("settle error: %v", err)
	}
	if sum.Processed != 1 || sum.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	want := decimal.RequireFromString("180.00")
	if !sum.TotalPaid.Equal(want) {
		t.Fatalf("total paid = %s, want %s", sum.TotalPaid, want)
	}
	if st.statuses[10] != model.BetStatusWon {
		t.Fatalf("bet status = %d, want won", st.statuses[10])
	}
	if !st.balances[100].Equal(want) {
		t.Fatalf("balance = %s, want %s", st.balances[100], want)
	}
	if !st.settled[1] {
		t.Fatalf("draw should be marked settled")
	}
}

func TestSettleDrawLoserMarkedLost(t *testing.T) {
	st := newFakeStore()
	st.draws[1] = publishedDraw(1, "1234", "5678", "9012", "3456", "7890")
	st.addBet(10, 100, "MILHAR", 1, 1, "9999", "10.00")

	svc := NewSettleService(st)
	sum, err := svc.SettleDraw(context.Background(), 1, "t1")
	if err != nil {
		t.Fatalf("settle error: %v", err)
	}
	if sum.Processed != 1 {
		t.Fatalf("processed = %d, want 1", sum.Processed)
	}
	if !sum.TotalPaid.IsZero() {
		t.Fatalf("total paid = %s, want 0", sum.TotalPaid)
	}
	if st.statuses[10] != model.BetStatusLost {
		t.Fatalf("bet status = %d, want lost", st.statuses[10])
	}
}

func TestSettleDrawMissingRuleForcesLost(t *testing.T) {
	st := newFakeStore()
	st.draws[1] = publishedDraw(1, "1234", "5678", "9012", "3456", "7890")
	st.addBet(10, 100, "MILHAR", 1, 1, "1234", "10.00")
	// 抹掉赔率规则：即便命中也必须按未中处理
	st.rules = nil

	svc := NewSettleService(st)
	sum, err := svc.SettleDraw(context.Background(), 1, "t1")
	if err != nil {
		t.Fatalf("settle error: %v", err)
	}
	if sum.Processed != 1 || !sum.TotalPaid.IsZero() {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if st.statuses[10] != model.BetStatusLost {
		t.Fatalf("bet status = %d, want lost", st.statuses[10])
	}
	if !st.balances[100].IsZero() {
		t.Fatalf("balance should be untouched, got %s", st.balances[100])
	}
}

func TestSettleDrawSecondRunIsNoop(t *testing.T) {
	st := newFakeStore()
	st.draws[1] = publishedDraw(1, "1234", "5678", "9012", "3456", "7890")
	st.addBet(10, 100, "MILHAR", 1, 1, "1234", "10.00")

	svc := NewSettleService(st)
	if _, err := svc.SettleDraw(context.Background(), 1, "t1"); err != nil {
		t.Fatalf("first run error: %v", err)
	}
	sum, err := svc.SettleDraw(context.Background(), 1, "t2")
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}
	if sum.Processed != 0 || !sum.TotalPaid.IsZero() {
		t.Fatalf("second run should settle nothing, got %+v", sum)
	}
	// 余额只派一次
	if !st.balances[100].Equal(decimal.RequireFromString("180.00")) {
		t.Fatalf("balance = %s, want 180.00", st.balances[100])
	}
}

func TestSettleDrawFaultIsolation(t *testing.T) {
	st := newFakeStore()
	st.draws[1] = publishedDraw(1, "1234", "5678", "9012", "3456", "7890")
	st.addBet(10, 100, "MILHAR", 1, 1, "1234", "10.00")
	st.addBet(11, 101, "MILHAR", 1, 1, "5678", "10.00")
	st.addBet(12, 102, "MILHAR", 1, 1, "9999", "10.00")
	st.failIDs[10] = true

	svc := NewSettleService(st)
	sum, err := svc.SettleDraw(context.Background(), 1, "t1")
	if err != nil {
		t.Fatalf("settle error: %v", err)
	}
	if sum.Processed != 2 || sum.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	// 故障注单保持待结算，等下批重试
	if st.statuses[10] != model.BetStatusPending {
		t.Fatalf("failed bet should stay pending, got %d", st.statuses[10])
	}
	if st.statuses[12] != model.BetStatusLost {
		t.Fatalf("loser should be settled despite sibling failure")
	}
	// 有失败时不应标记整期已结算
	if st.settled[1] {
		t.Fatalf("draw must not be marked settled while bets remain pending")
	}

	// 故障修复后的重试批次只处理遗留注单
	st.failIDs = map[int64]bool{}
	sum2, err := svc.SettleDraw(context.Background(), 1, "t2")
	if err != nil {
		t.Fatalf("retry error: %v", err)
	}
	if sum2.Processed != 1 || sum2.Failed != 0 {
		t.Fatalf("retry summary: %+v", sum2)
	}
	if !st.settled[1] {
		t.Fatalf("draw should be settled after retry")
	}
}

func TestSettleDrawNotFound(t *testing.T) {
	svc := NewSettleService(newFakeStore())
	if _, err := svc.SettleDraw(context.Background(), 42, "t1"); err != ErrDrawNotFound {
		t.Fatalf("err = %v, want ErrDrawNotFound", err)
	}
}

func TestSettleDrawNotPublished(t *testing.T) {
	st := newFakeStore()
	st.draws[1] = &model.DrawResult{ID: 1, Status: model.DrawStatusPending}
	svc := NewSettleService(st)
	if _, err := svc.SettleDraw(context.Background(), 1, "t1"); err != ErrDrawNotPublished {
		t.Fatalf("err = %v, want ErrDrawNotPublished", err)
	}
}

func TestSettleDrawWindowSemantics(t *testing.T) {
	st := newFakeStore()
	// 头奖 1234，第5奖 1239：尾数 9 只在 5 奖位
	st.draws[1] = publishedDraw(1, "1234", "5678", "9012", "3456", "1239")
	// 奖位档 1~1 只看头奖
	st.addBet(10, 100, "UNIDADE", 1, 1, "9", "10.00")
	// 奖位档 1~5 全奖位
	st.addBet(11, 101, "UNIDADE", 1, 5, "9", "10.00")

	svc := NewSettleService(st)
	sum, err := svc.SettleDraw(context.Background(), 1, "t1")
	if err != nil {
		t.Fatalf("settle error: %v", err)
	}
	if st.statuses[10] != model.BetStatusLost {
		t.Fatalf("head-prize-only bet should lose")
	}
	if st.statuses[11] != model.BetStatusWon {
		t.Fatalf("full-window bet should win")
	}
	if !sum.TotalPaid.Equal(decimal.RequireFromString("180.00")) {
		t.Fatalf("total paid = %s, want 180.00", sum.TotalPaid)
	}
}

func TestSettleDrawExactArithmeticAtScale(t *testing.T) {
	st := newFakeStore()
	st.draws[1] = publishedDraw(1, "1234", "5678", "9012", "3456", "7890")
	for i := int64(0); i < 1000; i++ {
		st.addBet(100+i, 1000+i, "MILHAR", 1, 1, "1234", "10.00")
	}

	svc := NewSettleService(st)
	sum, err := svc.SettleDraw(context.Background(), 1, "t1")
	if err != nil {
		t.Fatalf("settle error: %v", err)
	}
	if sum.Processed != 1000 {
		t.Fatalf("processed = %d, want 1000", sum.Processed)
	}
	want := decimal.RequireFromString("180000.00")
	if !sum.TotalPaid.Equal(want) {
		t.Fatalf("total paid = %s, want %s", sum.TotalPaid, want)
	}
}

func TestSettleDrawBatchCapDefersRemainder(t *testing.T) {
	cfg := &config.Config{}
	cfg.Betting.SettleBatchCap = 2
	config.SetCurrent(cfg)
	t.Cleanup(func() { config.SetCurrent(&config.Config{}) })

	st := newFakeStore()
	st.draws[1] = publishedDraw(1, "1234", "5678", "9012", "3456", "7890")
	st.addBet(10, 100, "MILHAR", 1, 1, "9999", "10.00")
	st.addBet(11, 101, "MILHAR", 1, 1, "9999", "10.00")
	st.addBet(12, 102, "MILHAR", 1, 1, "9999", "10.00")

	svc := NewSettleService(st)
	sum, err := svc.SettleDraw(context.Background(), 1, "t1")
	if err != nil {
		t.Fatalf("first run error: %v", err)
	}
	if sum.Processed != 2 || sum.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if st.settled[1] {
		t.Fatalf("draw must stay published while bets remain pending")
	}

	// 去掉上限后重跑：处理剩余注单并终结开奖
	config.SetCurrent(&config.Config{})
	sum, err = svc.SettleDraw(context.Background(), 1, "t2")
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}
	if sum.Processed != 1 {
		t.Fatalf("processed = %d, want 1", sum.Processed)
	}
	if !st.settled[1] {
		t.Fatalf("draw should be marked settled after remainder is processed")
	}
}

func TestTxTimeoutsFollowConfig(t *testing.T) {
	config.SetCurrent(&config.Config{})
	t.Cleanup(func() { config.SetCurrent(&config.Config{}) })

	if got := betTxTimeout(); got != defaultTxTimeout {
		t.Fatalf("betTxTimeout = %v, want default %v", got, defaultTxTimeout)
	}
	if got := idemResultTTL(); got != defaultIdemResultTTL {
		t.Fatalf("idemResultTTL = %v, want default %v", got, defaultIdemResultTTL)
	}
	if got := settleTxTimeout(); got != defaultSettleTxTimeout {
		t.Fatalf("settleTxTimeout = %v, want default %v", got, defaultSettleTxTimeout)
	}

	cfg := &config.Config{}
	cfg.Betting.BetTimeoutSec = 7
	cfg.Betting.IdemTTLSec = 120
	config.SetCurrent(cfg)

	if got := betTxTimeout(); got != 7*time.Second {
		t.Fatalf("betTxTimeout = %v, want 7s", got)
	}
	if got := idemResultTTL(); got != 120*time.Second {
		t.Fatalf("idemResultTTL = %v, want 120s", got)
	}
	if got := settleTxTimeout(); got != 7*time.Second {
		t.Fatalf("settleTxTimeout = %v, want 7s", got)
	}
}
