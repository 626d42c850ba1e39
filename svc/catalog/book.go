package catalog

// Status selects one of the curated book lists.
type Status string

const (
	StatusSelected    Status = "selected"
	StatusRecommended Status = "recommended"
	StatusSuggested   Status = "suggested"
)

// ParseStatus returns the status named s. Unknown names report false.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusSelected, StatusRecommended, StatusSuggested:
		return st, true
	default:
		return "", false
	}
}

// Book is a catalog record as served by the endpoints.
type Book struct {
	ID                   string   `json:"id"`
	Author               string   `json:"author"`
	Title                string   `json:"title"`
	SubTitle             string   `json:"subTitle"`
	ImageLink            string   `json:"imageLink"`
	AudioLink            string   `json:"audioLink"`
	TotalRating          float64  `json:"totalRating"`
	AverageRating        float64  `json:"averageRating"`
	KeyIdeas             float64  `json:"keyIdeas"`
	Type                 string   `json:"type"`
	Status               string   `json:"status"`
	SubscriptionRequired bool     `json:"subscriptionRequired"`
	Summary              string   `json:"summary"`
	Tags                 []string `json:"tags"`
	BookDescription      string   `json:"bookDescription"`
	AuthorDescription    string   `json:"authorDescription"`
}

// ForYouPage is the personalised landing page content.
type ForYouPage struct {
	Selected    *Book  `json:"selected"`
	Recommended []Book `json:"recommended"`
	Suggested   []Book `json:"suggested"`
}
