package scoring

import (
	"fmt"
	"sort"
	"strings"

	"career-assess/internal/domain"
)

const (
	dominantLimit      = 3
	noPreferenceDetect = "Tidak ada preferensi dominan yang terdeteksi."
)

// ScorePAPI tallies the chosen dimension of every pair and ranks the dominant ones.
func ScorePAPI(questions []domain.Question, answers domain.AnswerSet) (domain.PreferenceResult, error) {
	if err := checkComplete(questions, answers); err != nil {
		return domain.PreferenceResult{}, err
	}

	tally := make(map[domain.Dimension]int, len(domain.Dimensions))
	for _, info := range domain.Dimensions {
		tally[info.Code] = 0
	}
	for _, q := range questions {
		tally[domain.Dimension(answers[q.ID].Code)]++
	}

	dominant := RankDimensions(tally, dominantLimit)
	return domain.PreferenceResult{
		Tally:    tally,
		Dominant: dominant,
		Summary:  SummarizePreference(dominant),
	}, nil
}

// RankDimensions sorts by count descending, ties by canonical order, and keeps
// up to limit dimensions with a nonzero count.
func RankDimensions(tally map[domain.Dimension]int, limit int) []domain.DimensionScore {
	ranked := make([]domain.DimensionScore, 0, len(domain.Dimensions))
	for _, info := range domain.Dimensions {
		if tally[info.Code] > 0 {
			ranked = append(ranked, domain.DimensionScore{DimensionInfo: info, Count: tally[info.Code]})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// SummarizePreference names the dominant dimensions.
func SummarizePreference(dominant []domain.DimensionScore) string {
	if len(dominant) == 0 {
		return noPreferenceDetect
	}
	if len(dominant) == 1 {
		d := dominant[0]
		return fmt.Sprintf("Preferensi kerja paling menonjol: %s (%s). %s", d.Name, d.Code, d.Description)
	}
	parts := make([]string, len(dominant))
	for i, d := range dominant {
		parts[i] = fmt.Sprintf("%s (%s)", d.Name, d.Code)
	}
	return fmt.Sprintf("Preferensi kerja paling menonjol: %s.", strings.Join(parts, ", "))
}
