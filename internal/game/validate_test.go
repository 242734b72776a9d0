package game

import "testing"

func TestValidateBetInput(t *testing.T) {
	cases := []struct {
		name    string
		betType string
		tokens  []string
		wantOK  bool
	}{
		{"grupo ok", "GRUPO", []string{"15"}, true},
		{"grupo lowercase name", "grupo", []string{"15"}, true},
		{"grupo out of range", "GRUPO", []string{"26"}, false},
		{"grupo zero", "GRUPO", []string{"0"}, false},
		{"grupo too many tokens", "GRUPO", []string{"1", "2"}, false},
		{"grupo esq variant", "GRUPO ESQ", []string{"7"}, true},
		{"dezena ok", "DEZENA", []string{"60"}, true},
		{"dezena wrong length", "DEZENA", []string{"360"}, false},
		{"centena ok", "CENTENA", []string{"360"}, true},
		{"centena inv ok", "CENTENA INV", []string{"123"}, true},
		{"milhar ok", "MILHAR", []string{"4360"}, true},
		{"milhar inv wrong length", "MILHAR INV", []string{"436"}, false},
		{"milhar e ct ok", "MILHAR E CT", []string{"4360"}, true},
		{"unidade ok", "UNIDADE", []string{"7"}, true},
		{"unidade non-digit", "UNIDADE", []string{"a"}, false},
		{"duque gp ok", "DUQUE GP", []string{"1", "25"}, true},
		{"duque gp count mismatch", "DUQUE GP", []string{"1"}, false},
		{"terno gp ok", "TERNO GP", []string{"1", "2", "3"}, true},
		{"quadra gp ok", "QUADRA GP", []string{"1", "2", "3", "4"}, true},
		{"quina ok", "QUINA GP 8/5", []string{"1", "2", "3", "4", "5"}, true},
		{"sena ok", "SENA GP 10/6", []string{"1", "2", "3", "4", "5", "6"}, true},
		{"sena bad group", "SENA GP 10/6", []string{"1", "2", "3", "4", "5", "30"}, false},
		{"duque dez ok", "DUQUE DEZ", []string{"11", "22"}, true},
		{"terno dez ok", "TERNO DEZ", []string{"11", "22", "33"}, true},
		{"terno dez seco ok", "TERNO DEZ SECO", []string{"11", "22", "33"}, true},
		{"terno dez wrong digits", "TERNO DEZ", []string{"1", "22", "33"}, false},
		{"passe vai ok", "PASSE VAI", []string{"4", "17"}, true},
		{"passe vai vem ok", "PASSE VAI VEM", []string{"4", "17"}, true},
		{"passe wrong count", "PASSE VAI", []string{"4"}, false},
		{"unknown type passes through", "PALPITAO", []string{"whatever"}, true},
		{"empty tokens always rejected", "PALPITAO", []string{" ", ""}, false},
	}

	for _, c := range cases {
		err := ValidateBetInput(c.betType, c.tokens)
		if c.wantOK && err != nil {
			t.Fatalf("%s: unexpected reject: %v", c.name, err)
		}
		if !c.wantOK {
			if err == nil {
				t.Fatalf("%s: expected reject, got ok", c.name)
			}
			if _, isVE := err.(*ValidationError); !isVE {
				t.Fatalf("%s: error is not *ValidationError: %T", c.name, err)
			}
		}
	}
}

func TestValidateNormalizesTokens(t *testing.T) {
	// 空白项被丢弃后按剩余项校验
	if err := ValidateBetInput("DUQUE GP", []string{" 1 ", "", "2"}); err != nil {
		t.Fatalf("expected ok after normalization, got %v", err)
	}
}
