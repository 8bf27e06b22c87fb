// Package textscan scores free text (chat, SMS, call transcripts) against the
// scam lexicon.
package textscan

import (
	"math"
	"strings"

	"github.com/mikey/upi-risk-engine/internal/core"
	"github.com/mikey/upi-risk-engine/internal/patterns"
	"github.com/mikey/upi-risk-engine/internal/utils"
)

// Hits beyond this many add nothing more to a category.
const saturationHits = 4

// Analyzer scores text with the lexicon
type Analyzer struct {
	lexicon *patterns.Lexicon
	tp      *utils.TextProcessor
}

// NewAnalyzer creates a new text analyzer
func NewAnalyzer(lexicon *patterns.Lexicon, tp *utils.TextProcessor) *Analyzer {
	return &Analyzer{
		lexicon: lexicon,
		tp:      tp,
	}
}

// Analyze scores text in [0,1]. Keywords match as substrings of the
// case-folded text, not on word boundaries.
func (a *Analyzer) Analyze(text string) core.TextAnalysis {
	result := core.TextAnalysis{
		Matches:        []core.KeywordMatch{},
		CategoryCounts: map[string]int{},
	}
	if strings.TrimSpace(text) == "" || a.lexicon.TotalWeight() <= 0 {
		return result
	}

	folded := a.tp.Fold(text)
	var raw float64
	for _, cat := range a.lexicon.Categories() {
		hits := 0
		for _, kw := range cat.Keywords {
			n := strings.Count(folded, kw)
			if n == 0 {
				continue
			}
			hits += n
			result.Matches = append(result.Matches, core.KeywordMatch{
				Category: cat.Name,
				Keyword:  kw,
				Weight:   cat.Weight,
				Hits:     n,
			})
		}
		if hits == 0 {
			continue
		}
		result.CategoryCounts[cat.Name] = hits
		raw += cat.Weight * saturate(hits)
	}

	// No evidence means no risk, rather than the sigmoid's floor.
	if raw == 0 {
		return result
	}

	result.Score = reshape(raw / a.lexicon.TotalWeight())
	return result
}

// saturate gives diminishing returns: ln(h+1)/ln(5), capped at 1
func saturate(hits int) float64 {
	return math.Min(1, math.Log(float64(hits)+1)/math.Log(saturationHits+1))
}

// reshape spreads normalized scores around 0.5 with a logistic curve
func reshape(normalized float64) float64 {
	return 1 / (1 + math.Exp(-5*(normalized-0.5)))
}
