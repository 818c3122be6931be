package extract

import "strings"

var amountReplacer = strings.NewReplacer(",", "", "USD ", "")

// NormalizeAmount strips thousands separators and the "USD " currency prefix
// from a rendered figure: "USD 1,234,567" -> "1234567"
func NormalizeAmount(s string) string {
	return strings.TrimSpace(amountReplacer.Replace(s))
}
