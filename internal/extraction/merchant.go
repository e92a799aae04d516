package extraction

import (
	"log/slog"
	"unicode/utf8"
)

// nameWindow is how many leading lines are searched for the merchant name
const nameWindow = 10

// Matchers holds the caller-supplied substrings used to recognize merchant details.
// Address and phone detection is substring based and only as good as the hints given.
type Matchers struct {
	// NameKeywords accept a leading line as the merchant name regardless of its shape.
	NameKeywords []string
	// AddressHints mark a line as the merchant address.
	AddressHints []string
	// PhoneHints mark a line as the merchant phone number.
	PhoneHints []string
}

// DefaultMatchers returns matchers with the built-in name keyword and no address or phone hints
func DefaultMatchers() Matchers {
	return Matchers{
		NameKeywords: []string{"FAST FOOD"},
	}
}

func extractMerchantInfo(lines []string, m Matchers, logger *slog.Logger) MerchantInfo {
	var info MerchantInfo

	for i := 0; i < len(lines) && i < nameWindow; i++ {
		line := lines[i]
		if reNameSkipAmount.MatchString(line) || reNameSkipDate.MatchString(line) {
			continue
		}
		if containsAny(line, m.NameKeywords) || looksLikeName(line) {
			info.Name = line
			logger.Debug("found merchant name", "line", i, "name", line)
			break
		}
	}

	// the whole receipt is scanned; the last matching line wins
	for _, line := range lines {
		if containsAny(line, m.AddressHints) {
			info.Address = line
			logger.Debug("found merchant address", "address", line)
		}
		if containsAny(line, m.PhoneHints) {
			info.Phone = line
			logger.Debug("found merchant phone", "phone", line)
		}
	}

	return info
}

func looksLikeName(line string) bool {
	n := utf8.RuneCountInString(line)
	return n > 3 && n < 50 && !reDigit.MatchString(line)
}
