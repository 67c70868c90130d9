package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"   ", ""},
		{"Khám Tổng Quát", "kham tong quat"},
		{"  Xét   Nghiệm\tMáu \n", "xet nghiem mau"},
		{"Đo Điện Tim", "do dien tim"},
		{"Siêu âm ĐẦU dò", "sieu am dau do"},
		{"CT Scan", "ct scan"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.input))
		})
	}
}

func TestNormalize_FoldsAccents(t *testing.T) {
	assert.Equal(t, Normalize("kham tong quat"), Normalize("Khám Tổng Quát"))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Khám Tổng Quát Cơ Bản",
		"  Gói   xét nghiệm   ĐƯỜNG huyết ",
		"İstanbul Ölçüm",
		"ﬁ ligature and ÅNGSTRÖM",
		"already normal",
		"",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestTokenize_DropsShortTokens(t *testing.T) {
	assert.Equal(t, []string{"bc", "de"}, Tokenize("a bc de"))
}

func TestTokenize_KeepsOrderAndDuplicates(t *testing.T) {
	assert.Equal(t, []string{"mau", "xet", "mau"}, Tokenize("Máu x Xét MÁU"))
}

func TestTokenize_Empty(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("a b c"))
}

func TestTokenizeMin_CountsRunes(t *testing.T) {
	// "đo" is two runes even though it is three bytes before folding
	assert.Equal(t, []string{"do"}, TokenizeMin("Đo", 2))
	assert.Equal(t, []string{"kham"}, TokenizeMin("kham do", 3))
}
