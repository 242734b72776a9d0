package helper

import (
	"strings"
	"testing"
)

func TestIsMoneyFormat(t *testing.T) {
	valid := []string{"0.50", "1", "100", "10.5", "999999.99"}
	for _, s := range valid {
		if !IsMoneyFormat(s) {
			t.Fatalf("%q should be valid money format", s)
		}
	}
	invalid := []string{"", "-1", "1.234", "abc", "1,50", "1.2.3"}
	for _, s := range invalid {
		if IsMoneyFormat(s) {
			t.Fatalf("%q should be invalid money format", s)
		}
	}
}

func TestValidateBet(t *testing.T) {
	base := func() BetParsed {
		return BetParsed{
			DrawScheduleID: 1,
			BetTypeID:      2,
			PrizeTierID:    3,
			Numbers:        []string{"1234"},
			Amount:         "10.00",
			IdempotencyKey: "k-1",
		}
	}

	if ok, msg := ValidateBet(&BetParsed{}); ok {
		t.Fatalf("empty input should fail, got ok (msg=%s)", msg)
	}

	in := base()
	if ok, msg := ValidateBet(&in); !ok {
		t.Fatalf("valid input rejected: %s", msg)
	}

	in = base()
	in.Numbers = nil
	if ok, _ := ValidateBet(&in); ok {
		t.Fatalf("missing numbers should fail")
	}

	in = base()
	in.Amount = "-5"
	if ok, _ := ValidateBet(&in); ok {
		t.Fatalf("negative amount should fail")
	}

	in = base()
	in.IdempotencyKey = ""
	if ok, _ := ValidateBet(&in); ok {
		t.Fatalf("missing idempotency_key should fail")
	}

	in = base()
	in.IdempotencyKey = strings.Repeat("x", 65)
	if ok, _ := ValidateBet(&in); ok {
		t.Fatalf("oversized idempotency_key should fail")
	}
}

func TestValidateDrawPublish(t *testing.T) {
	in := DrawPublishParsed{
		DrawResultID: 7,
		Prizes:       []string{"1234", "56", "789", "1", "2222"},
	}
	if ok, msg := ValidateDrawPublish(&in); !ok {
		t.Fatalf("valid input rejected: %s", msg)
	}

	in.DrawResultID = 0
	if ok, _ := ValidateDrawPublish(&in); ok {
		t.Fatalf("missing draw_result_id should fail")
	}

	in.DrawResultID = 7
	in.Prizes = in.Prizes[:4]
	if ok, _ := ValidateDrawPublish(&in); ok {
		t.Fatalf("four prizes should fail")
	}

	in.Prizes = []string{"1", "2", "3", "4", "5", "6", "7", "8"}
	if ok, _ := ValidateDrawPublish(&in); ok {
		t.Fatalf("eight prizes should fail")
	}
}

func TestParseBetFromJSON(t *testing.T) {
	body := `{"draw_schedule_id":1,"bet_type_id":2,"prize_tier_id":3,"numbers":["12","34"],"amount":"5.00","idempotency_key":"abc"}`
	out, ok, msg := ParseBetFromJSON(strings.NewReader(body))
	if !ok {
		t.Fatalf("parse failed: %s", msg)
	}
	if out.DrawScheduleID != 1 || out.BetTypeID != 2 || out.PrizeTierID != 3 {
		t.Fatalf("ids mismatch: %+v", out)
	}
	if len(out.Numbers) != 2 || out.Numbers[0] != "12" {
		t.Fatalf("numbers mismatch: %+v", out.Numbers)
	}

	if _, ok, _ := ParseBetFromJSON(strings.NewReader("{not json")); ok {
		t.Fatalf("malformed json should fail")
	}
}
