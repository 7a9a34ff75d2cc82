// Package prediction turns raw classifier scores into a decoded cover label
// with a softmax confidence.
package prediction

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/SyedDaiam9101/cover-service/internal/labels"
)

// DefaultLinkBase is the catalogue URL prefix for a cover identifier.
const DefaultLinkBase = "http://nilf.it/"

var (
	// ErrScoreLength is returned when the score vector is empty or does not
	// line up with the label table.
	ErrScoreLength = errors.New("score vector does not match label table")
	// ErrMalformedLabel is returned when the winning label record has fewer
	// than identifier, title and author fields.
	ErrMalformedLabel = errors.New("malformed label record")
	// ErrShortIdentifier is returned when an identifier is too short to derive a link.
	ErrShortIdentifier = errors.New("identifier too short for link")
	// ErrNonFiniteScore is returned when the classifier emits NaN or an infinity.
	ErrNonFiniteScore = errors.New("non-finite classifier score")
)

// Prediction is the decoded result of one classification.
type Prediction struct {
	Index       int     `json:"index"`
	Identifier  string  `json:"identifier"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Confidence  string  `json:"confidence"`
	Probability float64 `json:"probability"`
	Link        string  `json:"link,omitempty"`
}

// Interpret picks the highest score (first one wins on ties), decodes its
// label record and computes its softmax probability.
func Interpret(scores []float32, table *labels.Table) (*Prediction, error) {
	if len(scores) == 0 || len(scores) != table.Len() {
		return nil, fmt.Errorf("%w: %d scores, %d labels", ErrScoreLength, len(scores), table.Len())
	}

	for i, s := range scores {
		if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
			return nil, fmt.Errorf("%w: score %d is %v", ErrNonFiniteScore, i, s)
		}
	}

	idx := ArgMax(scores)
	record, _ := table.Record(idx)

	fields := strings.Split(record, "\t")
	if len(fields) < 3 {
		return nil, fmt.Errorf("%w: record %d has %d fields", ErrMalformedLabel, idx, len(fields))
	}

	p := Softmax(scores, idx)
	return &Prediction{
		Index:       idx,
		Identifier:  fields[0],
		Title:       fields[1],
		Author:      fields[2],
		Confidence:  FormatPercent(p),
		Probability: p,
	}, nil
}

// ArgMax returns the index of the largest score, the lowest index on ties.
// NaN scores never win.
func ArgMax(scores []float32) int {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] || (math.IsNaN(float64(scores[best])) && !math.IsNaN(float64(scores[i]))) {
			best = i
		}
	}
	return best
}

// Softmax returns exp(scores[i]) / sum(exp(scores[j])). The max score is
// subtracted before exponentiating so large logits cannot overflow.
func Softmax(scores []float32, i int) float64 {
	maxScore := math.Inf(-1)
	for _, s := range scores {
		if float64(s) > maxScore {
			maxScore = float64(s)
		}
	}

	var sum float64
	for _, s := range scores {
		sum += math.Exp(float64(s) - maxScore)
	}
	return math.Exp(float64(scores[i])-maxScore) / sum
}

// FormatPercent renders a probability as a percentage with one decimal, e.g. "87.3%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

// Link builds the catalogue URL from characters 4 through 9 of the identifier.
func Link(base, identifier string) (string, error) {
	r := []rune(identifier)
	if len(r) < 10 {
		return "", fmt.Errorf("%w: %q", ErrShortIdentifier, identifier)
	}
	return base + string(r[4:10]), nil
}

// Display renders the prediction the way the capture app shows it.
func Display(p *Prediction) string {
	return fmt.Sprintf("%s\nby %s\n%s\nconfidence %s",
		strings.ToUpper(p.Title), strings.ToUpper(p.Author), p.Link, p.Confidence)
}
