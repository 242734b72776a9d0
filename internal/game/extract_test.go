package game

import "testing"

func TestExtractors(t *testing.T) {
	cases := []struct {
		fn   ExtractFunc
		in   string
		want string
		ok   bool
	}{
		{Unidade, "4360", "0", true},
		{Unidade, "7", "7", true},
		{Unidade, "", "", false},
		{Dezena, "4360", "60", true},
		{Dezena, "7", "", false},
		{Centena, "4360", "360", true},
		{Centena, "60", "", false},
		{Milhar, "4360", "4360", true},
		{Milhar, "360", "", false},
		{Grupo, "4360", "15", true},
		{Grupo, "1200", "25", true},
		{Grupo, "7", "", false},
	}
	for _, c := range cases {
		got, ok := c.fn(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("extract(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestGrupoBoundaries(t *testing.T) {
	// "00" 回卷到第25组，"01".."04" 是第1组，"99" 是第25组
	cases := map[string]string{
		"00": "25",
		"01": "1",
		"04": "1",
		"05": "2",
		"96": "24",
		"97": "25",
		"99": "25",
	}
	for dz, want := range cases {
		got, ok := Grupo("00" + dz)
		if !ok || got != want {
			t.Fatalf("Grupo(dezena %s) = (%q, %v), want %q", dz, got, ok, want)
		}
	}
}

func TestGrupoVariants(t *testing.T) {
	// "4360": esquerda dezena 43 -> grupo 11, meio dezena 36 -> grupo 9
	if g, ok := GrupoEsq("4360"); !ok || g != "11" {
		t.Fatalf("GrupoEsq(4360) = (%q, %v)", g, ok)
	}
	if g, ok := GrupoMeio("4360"); !ok || g != "9" {
		t.Fatalf("GrupoMeio(4360) = (%q, %v)", g, ok)
	}
	// 不足4位不适用
	if _, ok := GrupoEsq("360"); ok {
		t.Fatalf("GrupoEsq(360) should not apply")
	}
}
