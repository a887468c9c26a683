package models

// SystemType is the camera system family inferred from the questionnaire
type SystemType string

const (
	SystemIP     SystemType = "ip"
	SystemAnalog SystemType = "analog"
)

// Bucket says how strongly a suggestion should be pushed to the visitor
type Bucket string

const (
	BucketRequired    Bucket = "required"
	BucketRecommended Bucket = "recommended"
	BucketOptional    Bucket = "optional"
)

// QuestionnaireAnswers are the project builder wizard answers.
// They live for one wizard session and are never stored in SiteData.
type QuestionnaireAnswers struct {
	Priority               string `json:"priority"`               // price | quality | scalable
	InternetType           string `json:"internetType"`           // none | fiber | dsl | mobile ...
	RecorderSameAsInternet string `json:"recorderSameAsInternet"` // yes | no
	AvgDistance            string `json:"avgDistance"`            // 0-30 | 30-70 | 70-100 | 100+
	CableDifficulty        string `json:"cableDifficulty"`        // easy | medium | hard
	SmartAlerts            bool   `json:"smartAlerts"`
	WantUps                bool   `json:"wantUps"`
	NightMode              string `json:"nightMode"` // bw | color
}

// Suggestion is one recommender output line
type Suggestion struct {
	ProductID  string `json:"productId"`
	Quantity   int    `json:"quantity"`
	ReasonText string `json:"reasonText"`
	Bucket     Bucket `json:"bucket"`
}

// RecommendRequest is the request body for POST /api/recommend
type RecommendRequest struct {
	Answers         QuestionnaireAnswers `json:"answers"`
	Cart            Cart                 `json:"cart"`
	IncludeOptional bool                 `json:"includeOptional"`
}

// RecommendResponse is the response body for POST /api/recommend
type RecommendResponse struct {
	OK           bool         `json:"ok"`
	System       SystemType   `json:"system"`
	CamerasCount int          `json:"camerasCount"`
	Suggestions  []Suggestion `json:"suggestions"`
	Cart         Cart         `json:"cart"`
}
