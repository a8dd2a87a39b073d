// Package sentiment defines the aggregated sentiment produced by the
// text-analysis collaborator.
package sentiment

// Category is the 5-way sentiment classification.
type Category string

// Sentiment classifications, from worst to best.
const (
	VeryNegative Category = "very_negative"
	Negative     Category = "negative"
	Neutral      Category = "neutral"
	Positive     Category = "positive"
	VeryPositive Category = "very_positive"
)

// ParseCategory maps a free-form label to a Category, defaulting to Neutral
// for anything unrecognized.
func ParseCategory(s string) Category {
	switch Category(s) {
	case VeryNegative, Negative, Neutral, Positive, VeryPositive:
		return Category(s)
	default:
		return Neutral
	}
}

// Aggregated is the sentiment verdict over a batch of news articles.
type Aggregated struct {
	OverallCategory     Category `json:"overall_category"`
	OverallScore        float64  `json:"overall_score"` // -1.0 to 1.0
	Confidence          float64  `json:"confidence"`    // 0.0 to 1.0
	SampleSize          int      `json:"sample_size"`
	KeyThemes           []string `json:"key_themes"`
	Summary             string   `json:"summary"`
	BrandSafetyConcerns []string `json:"brand_safety_concerns"`
}
