package review

import "time"

// Request is a single file submitted for review.
type Request struct {
	Code     string `json:"code"`
	FileName string `json:"fileName"`
}

// ReviewResults holds the model's free-text answer.
type ReviewResults struct {
	ComprehensiveReview string `json:"comprehensive_review"`
}

// Result is the successful outcome of a review.
type Result struct {
	FileName      string        `json:"fileName"`
	ReviewResults ReviewResults `json:"reviewResults"`
}

// NewResult wraps the model's text for fileName.
func NewResult(fileName, text string) Result {
	return Result{
		FileName:      fileName,
		ReviewResults: ReviewResults{ComprehensiveReview: text},
	}
}

// Text returns the review body.
func (r Result) Text() string {
	return r.ReviewResults.ComprehensiveReview
}

// RepoInfo contains repository metadata.
type RepoInfo struct {
	Root   string `json:"root"`
	Head   string `json:"head,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// Summary counts what happened during a batch run.
type Summary struct {
	Visited  int `json:"visited"`
	Reviewed int `json:"reviewed"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
}

// Timing contains performance metrics.
type Timing struct {
	LLMMs   int64 `json:"llmMs"`
	TotalMs int64 `json:"totalMs"`
}

// Report is the ordered collection of successful reviews from one batch run.
type Report struct {
	Tool        string    `json:"tool"`
	Version     string    `json:"version"`
	RunID       string    `json:"runId"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generatedAt"`
	Repo        RepoInfo  `json:"repo"`
	Summary     Summary   `json:"summary"`
	Reviews     []Result  `json:"reviews"`
	Timing      Timing    `json:"timing"`
}

// Add appends a successful review.
func (r *Report) Add(res Result) {
	r.Reviews = append(r.Reviews, res)
	r.Summary.Reviewed = len(r.Reviews)
}

// Empty reports whether no file was reviewed successfully.
func (r *Report) Empty() bool {
	return r == nil || len(r.Reviews) == 0
}
