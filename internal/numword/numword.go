// Package numword converts numeric tokens to their English word form.
// It backs the number_to_word perturbation operator: integers become
// cardinal text ("321" -> "three hundred twenty-one") and decimals are
// spelled digit-by-digit after "point" ("3.14" -> "three point one four").
package numword

import (
	"strconv"
	"strings"
)

const growConvert = 64 // estimated bytes for a full cardinal conversion

var ones = [...]string{
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight",
	"nine", "ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen",
	"sixteen", "seventeen", "eighteen", "nineteen",
}

var tens = [...]string{
	"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy",
	"eighty", "ninety",
}

var magnitudes = []struct {
	value int64
	word  string
}{
	{1_000_000_000_000, "trillion"},
	{1_000_000_000, "billion"},
	{1_000_000, "million"},
	{1_000, "thousand"},
}

// Cardinal converts n to English cardinal text.
func Cardinal(n int64) string {
	if n == 0 {
		return ones[0]
	}

	negative := n < 0
	if negative {
		n = -n
	}

	var b strings.Builder
	b.Grow(growConvert)

	if negative {
		b.WriteString("minus")
	}

	for _, mag := range magnitudes {
		count := n / mag.value
		if count > 0 {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			writeGroup(&b, count)
			b.WriteByte(' ')
			b.WriteString(mag.word)
			n %= mag.value
		}
	}

	if n > 0 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		writeGroup(&b, n)
	}

	return b.String()
}

// writeGroup writes a number in [1, 999] as English text into b.
func writeGroup(b *strings.Builder, n int64) {
	h := n / 100
	if h > 0 {
		b.WriteString(ones[h])
		b.WriteString(" hundred")
	}

	r := n % 100
	if r == 0 {
		return
	}
	if h > 0 {
		b.WriteByte(' ')
	}

	if r < 20 {
		b.WriteString(ones[r])
		return
	}

	t := r / 10
	o := r % 10
	b.WriteString(tens[t])
	if o > 0 {
		b.WriteByte('-')
		b.WriteString(ones[o])
	}
}

// Words converts a numeric token, integer or decimal, to English text.
// Decimal fractions are spelled digit-by-digit after "point". Returns
// ok=false when the token is not a plain number or overflows int64.
func Words(token string) (string, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	dot := strings.IndexByte(token, '.')
	if dot == -1 {
		val, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return "", false
		}
		return Cardinal(val), true
	}

	whole := token[:dot]
	frac := token[dot+1:]
	if whole == "" || frac == "" || !allDigits(whole) || !allDigits(frac) {
		return "", false
	}

	wholeVal, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return "", false
	}

	var b strings.Builder
	b.Grow(growConvert)
	b.WriteString(Cardinal(wholeVal))
	b.WriteString(" point")
	for i := 0; i < len(frac); i++ {
		b.WriteByte(' ')
		b.WriteString(ones[frac[i]-'0'])
	}
	return b.String(), true
}

// allDigits reports whether s consists entirely of ASCII digits.
// An empty string returns false.
func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
