package analysis

// Report is the response body shared by every analysis endpoint.
type Report struct {
	Title            string      `json:"title"`
	Words            []WordCount `json:"words"`
	Sentences        []string    `json:"sentences"`
	TotalWords       int         `json:"total_words"`
	TotalUniqueWords int         `json:"total_unique_words"`
	TotalSentences   int         `json:"total_sentences"`
}

// NewReport pairs a title with an analysis result.
func NewReport(title string, r Result) Report {
	words := r.UniqueWords
	if words == nil {
		words = []WordCount{}
	}
	sentences := r.Sentences
	if sentences == nil {
		sentences = []string{}
	}
	return Report{
		Title:            title,
		Words:            words,
		Sentences:        sentences,
		TotalWords:       r.TotalWords,
		TotalUniqueWords: r.TotalUniqueWords,
		TotalSentences:   r.TotalSentences,
	}
}
