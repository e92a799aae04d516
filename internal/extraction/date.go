package extraction

// extractDate returns the first date-shaped substring in line order.
// Within a line the patterns are tried in declaration order. The match is not validated.
func extractDate(lines []string) string {
	for _, line := range lines {
		for _, pattern := range datePatterns {
			if m := pattern.FindStringSubmatch(line); m != nil {
				return m[1]
			}
		}
	}
	return ""
}
