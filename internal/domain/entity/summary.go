package entity

import "strings"

// MinSentenceRunes is the shortest trimmed sentence the segmenter keeps.
const MinSentenceRunes = 20

// Sentence is a segmented sentence with its normalized tokens.
// Index is dense from 0 over the sentences that survived filtering.
type Sentence struct {
	Index  int
	Raw    string
	Tokens []string
}

// RankedSentence pairs a sentence index with its relevance score.
type RankedSentence struct {
	Index int
	Score float64
}

// Method selects the summarization strategy.
type Method string

const (
	MethodTFIDF       Method = "tfidf"
	MethodTextRank    Method = "textrank"
	MethodAbstractive Method = "abstractive"
)

// DefaultMethod is used when a request names no method or an unknown one.
const DefaultMethod = MethodTextRank

// LookupMethod resolves a method name case-insensitively.
func LookupMethod(name string) (Method, bool) {
	switch m := Method(strings.ToLower(strings.TrimSpace(name))); m {
	case MethodTFIDF, MethodTextRank, MethodAbstractive:
		return m, true
	default:
		return "", false
	}
}

// ParseMethod is LookupMethod with the DefaultMethod fallback.
func ParseMethod(name string) Method {
	if m, ok := LookupMethod(name); ok {
		return m
	}
	return DefaultMethod
}

// Extractive reports whether the method selects sentences verbatim.
func (m Method) Extractive() bool {
	return m == MethodTFIDF || m == MethodTextRank
}

func (m Method) String() string { return string(m) }

// SummaryResult is the outcome of one summarization call.
//
// Error is non-empty exactly when no summary was produced; in that case every
// other field holds its zero value.
type SummaryResult struct {
	Summary          string   `json:"summary"`
	Sentences        []string `json:"sentences"`
	SentenceCount    int      `json:"sentence_count"`
	CompressionRatio float64  `json:"compression_ratio"`
	Error            string   `json:"error,omitempty"`
	Method           Method   `json:"method,omitempty"`
}

// Failed reports whether the result carries an error.
func (r SummaryResult) Failed() bool {
	return r.Error != ""
}

// FailedResult builds the zeroed result for err.
func FailedResult(err error) SummaryResult {
	return SummaryResult{Sentences: []string{}, Error: err.Error()}
}
