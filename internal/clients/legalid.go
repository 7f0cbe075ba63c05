package clients

import "strings"

// ValidateLegalID checks a CPF number and returns its 11 normalized digits.
// Formatting characters are ignored, so "111.444.777-35" is accepted.
func ValidateLegalID(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if len(digits) != 11 {
		return "", ErrLegalIDLength
	}
	if strings.Count(digits, digits[:1]) == len(digits) {
		return "", ErrLegalIDRepeated
	}
	if checkDigit(digits[:9], 10) != int(digits[9]-'0') {
		return "", ErrLegalIDChecksum
	}
	if checkDigit(digits[:10], 11) != int(digits[10]-'0') {
		return "", ErrLegalIDChecksum
	}
	return digits, nil
}

// checkDigit computes a mod-11 verifier with descending weights starting at weight.
func checkDigit(digits string, weight int) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (weight - i)
	}
	rem := (sum * 10) % 11
	if rem == 10 {
		return 0
	}
	return rem
}
