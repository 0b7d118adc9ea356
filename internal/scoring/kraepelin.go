package scoring

import (
	"fmt"
	"math"
	"strings"

	"career-assess/internal/domain"
)

const (
	BandHigh   = "tinggi"
	BandMedium = "sedang"
	BandLow    = "rendah"

	highThreshold   = 75.0
	mediumThreshold = 50.0
)

// ScoreKraepelin sums the chosen option scores per aspect and normalizes each
// total against the best achievable score for that aspect.
func ScoreKraepelin(questions []domain.Question, answers domain.AnswerSet) (domain.AptitudeResult, error) {
	if err := checkComplete(questions, answers); err != nil {
		return domain.AptitudeResult{}, err
	}

	totals := make(map[domain.Aspect]int, len(domain.Aspects))
	maxima := make(map[domain.Aspect]int, len(domain.Aspects))
	for _, q := range questions {
		chosen := q.Options[answers[q.ID].Option]
		totals[optionAspect(q, chosen)] += chosen.Score

		best := make(map[domain.Aspect]int)
		for _, opt := range q.Options {
			a := optionAspect(q, opt)
			if opt.Score > best[a] {
				best[a] = opt.Score
			}
		}
		for a, score := range best {
			maxima[a] += score
		}
	}

	scores := make([]domain.AspectScore, 0, len(domain.Aspects))
	for _, aspect := range domain.Aspects {
		s := domain.AspectScore{Aspect: aspect, Total: totals[aspect], Max: maxima[aspect]}
		if s.Max > 0 {
			s.Percent = math.Round(float64(s.Total)/float64(s.Max)*1000) / 10
		}
		s.Band = band(s.Percent)
		scores = append(scores, s)
	}

	return domain.AptitudeResult{
		Aspects: scores,
		Summary: SummarizeAptitude(scores),
	}, nil
}

// SummarizeAptitude describes the normalized aspect profile. The output only
// depends on the scores, iterated in canonical aspect order.
func SummarizeAptitude(scores []domain.AspectScore) string {
	if len(scores) == 0 {
		return "Belum ada data aspek yang dapat diringkas."
	}

	uniform := true
	strongest, weakest := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s.Band != scores[0].Band {
			uniform = false
		}
		if s.Percent > strongest.Percent {
			strongest = s
		}
		if s.Percent < weakest.Percent {
			weakest = s
		}
	}

	labels := make([]string, len(scores))
	for i, s := range scores {
		labels[i] = s.Aspect.Label()
	}

	if uniform {
		switch scores[0].Band {
		case BandHigh:
			return fmt.Sprintf("Kinerja tinggi dan merata pada seluruh aspek (%s).", strings.Join(labels, ", "))
		case BandMedium:
			return fmt.Sprintf("Kinerja sedang dan merata pada seluruh aspek (%s).", strings.Join(labels, ", "))
		default:
			return fmt.Sprintf("Kinerja masih rendah pada seluruh aspek (%s); latihan rutin disarankan.", strings.Join(labels, ", "))
		}
	}

	return fmt.Sprintf(
		"Aspek terkuat adalah %s (%.1f%%, %s), sedangkan %s perlu dikembangkan (%.1f%%, %s).",
		strongest.Aspect.Label(), strongest.Percent, strongest.Band,
		weakest.Aspect.Label(), weakest.Percent, weakest.Band,
	)
}

func band(percent float64) string {
	switch {
	case percent >= highThreshold:
		return BandHigh
	case percent >= mediumThreshold:
		return BandMedium
	default:
		return BandLow
	}
}

func optionAspect(q domain.Question, opt domain.Option) domain.Aspect {
	if opt.Aspect != "" {
		return opt.Aspect
	}
	return q.Aspect
}
