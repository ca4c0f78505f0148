package numword

import "testing"

func TestCardinal(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "zero"},
		{1, "one"},
		{13, "thirteen"},
		{20, "twenty"},
		{21, "twenty-one"},
		{99, "ninety-nine"},
		{100, "one hundred"},
		{101, "one hundred one"},
		{115, "one hundred fifteen"},
		{321, "three hundred twenty-one"},
		{1000, "one thousand"},
		{1001, "one thousand one"},
		{42000, "forty-two thousand"},
		{1_000_000, "one million"},
		{2_000_346, "two million three hundred forty-six"},
		{1_000_000_000, "one billion"},
		{-7, "minus seven"},
		{-1200, "minus one thousand two hundred"},
	}
	for _, tt := range tests {
		if got := Cardinal(tt.n); got != tt.want {
			t.Errorf("Cardinal(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestWords(t *testing.T) {
	tests := []struct {
		token string
		want  string
		ok    bool
	}{
		{"45", "forty-five", true},
		{"3.14", "three point one four", true},
		{"0.5", "zero point five", true},
		{"10.05", "ten point zero five", true},
		{"", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{".5", "", false},
		{"5.", "", false},
	}
	for _, tt := range tests {
		got, ok := Words(tt.token)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Words(%q) = (%q, %v), want (%q, %v)", tt.token, got, ok, tt.want, tt.ok)
		}
	}
}

func TestWords_Deterministic(t *testing.T) {
	first, _ := Words("12345")
	second, _ := Words("12345")
	if first != second {
		t.Error("Words should be deterministic")
	}
}
