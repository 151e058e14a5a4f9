package analysis

import (
	"encoding/json"
	"strings"
)

// Report is the structured result extracted from one ultrasound photo.
type Report struct {
	Weeks          string `json:"weeks"`
	WeightStatus   string `json:"weight_status"`
	Message        string `json:"message"`
	SuggestedColor string `json:"suggested_color"`
}

// FallbackReport is the canned reply used when the model output cannot be
// parsed: ask for a clearer photo instead of surfacing a failure.
func FallbackReport() *Report {
	return &Report{
		Weeks:          "?",
		WeightStatus:   "未知",
		Message:        "媽咪好！我看不太清楚，可以再傳一次清晰的照片嗎？",
		SuggestedColor: "#ffcccc",
	}
}

// ParseReport decodes the model's JSON output into a Report. Models are told
// to emit bare JSON but regularly wrap it in markdown fences anyway, so the
// fences are stripped first. A reply that still fails to parse yields the
// fallback report and ok=false.
func ParseReport(text string) (report *Report, ok bool) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var r Report
	if err := json.Unmarshal([]byte(cleaned), &r); err != nil {
		return FallbackReport(), false
	}
	return &r, true
}
