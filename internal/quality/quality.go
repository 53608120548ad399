// Package quality rates how complete an import is.
//
// Both numbers produced here are heuristics. The quality score summarises
// which expected fields and documents were recovered and how strongly the
// documents were classified; it says nothing about whether the extracted
// content is legally correct. Consumers should present it as a hint.
package quality

import (
	"unicode/utf8"

	"github.com/a3tai/mcp-casefile-import/internal/casefile"
)

// Quality score weights
const (
	CaptionPoints       = 15
	CaseNumberPoints    = 15
	ClaimValuePoints    = 10
	PartiesPoints       = 20
	MinPartiesForPoints = 2
	PointsPerDocument   = 5
	MaxDocumentPoints   = 30
	ConfidencePoints    = 10
	MaxScore            = 100
)

// Label thresholds (inclusive lower bounds)
const (
	ExcellentThreshold  = 80
	GoodThreshold       = 60
	AcceptableThreshold = 40
)

// Document confidence weights
const (
	BaseConfidence         = 0.5
	ConfidencePerMatch     = 0.1
	MaxMatchConfidence     = 0.3
	LongTextBonus          = 0.1
	LongTextRunes          = 500
	VeryLongTextBonus      = 0.1
	VeryLongTextRunes      = 1000
	MaxDocumentConfidence  = 1.0
	MinDocumentConfidence  = 0.0
	confidenceRoundingBase = 1e6
)

// Score computes the 0..100 quality score of an import. A nil cover sheet
// contributes nothing.
func Score(cover *casefile.CoverSheet, docs []casefile.Document) int {
	score := 0

	if cover != nil {
		if cover.Caption != "" {
			score += CaptionPoints
		}
		if cover.CaseNumber != "" {
			score += CaseNumberPoints
		}
		if cover.ClaimValue > 0 {
			score += ClaimValuePoints
		}
		if len(cover.Parties) >= MinPartiesForPoints {
			score += PartiesPoints
		}
	}

	if len(docs) > 0 {
		score += min(len(docs)*PointsPerDocument, MaxDocumentPoints)

		var sum float64
		for _, d := range docs {
			sum += clampConfidence(d.Confidence)
		}
		score += int(round(sum / float64(len(docs)) * ConfidencePoints))
	}

	return max(0, min(score, MaxScore))
}

// LabelFor maps a score to its label
func LabelFor(score int) casefile.QualityLabel {
	switch {
	case score >= ExcellentThreshold:
		return casefile.QualityExcellent
	case score >= GoodThreshold:
		return casefile.QualityGood
	case score >= AcceptableThreshold:
		return casefile.QualityAcceptable
	default:
		return casefile.QualityPoor
	}
}

// DocumentConfidence rates how strongly the first page of a document was
// classified. extraMatches is the number of rules other than the winning
// one that also match the page.
func DocumentConfidence(text string, extraMatches int) float64 {
	c := BaseConfidence
	if extraMatches > 0 {
		c += min(float64(extraMatches)*ConfidencePerMatch, MaxMatchConfidence)
	}

	n := utf8.RuneCountInString(text)
	if n > LongTextRunes {
		c += LongTextBonus
	}
	if n > VeryLongTextRunes {
		c += VeryLongTextBonus
	}

	return clampConfidence(round(c))
}

func clampConfidence(c float64) float64 {
	return max(MinDocumentConfidence, min(c, MaxDocumentConfidence))
}

// round removes float noise such as 0.7999999999 so that scores derived
// from confidences are stable.
func round(c float64) float64 {
	return float64(int64(c*confidenceRoundingBase+0.5)) / confidenceRoundingBase
}
