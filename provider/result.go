package provider

// ParsedResult is the terminal success value of one call. VisibleText is
// the normalized answer, optionally prefixed with a thinking section and a
// deduplicated citation list; RawText is the untouched response body kept
// for diagnostics and raw-mode display. Token estimates are character
// counts divided by four, matching the builder's clamping arithmetic.
type ParsedResult struct {
	VisibleText string
	RawText     string

	InputTokenEstimate  int
	OutputTokenEstimate int
}

// TokenEstimate is the shared cheap token approximation.
func TokenEstimate(text string) int {
	return len(text) / 4
}
