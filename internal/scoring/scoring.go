// Package scoring turns a complete answer set into an instrument result.
// Every function here is pure: no session, storage or clock dependency.
package scoring

import (
	"errors"
	"fmt"

	"career-assess/internal/domain"
)

var (
	ErrIncompleteAnswers   = errors.New("incomplete answer set")
	ErrUnhandledInstrument = errors.New("unhandled instrument in scoring dispatch")
)

// Score dispatches to the scoring function of the instrument.
// The switch must list every value of domain.Instruments().
func Score(instrument domain.Instrument, questions []domain.Question, answers domain.AnswerSet) (domain.ResultPayload, error) {
	switch instrument {
	case domain.InstrumentMBTI:
		res, err := ScoreMBTI(questions, answers)
		if err != nil {
			return domain.ResultPayload{}, err
		}
		return domain.ResultPayload{MBTI: &res}, nil
	case domain.InstrumentKraepelin:
		res, err := ScoreKraepelin(questions, answers)
		if err != nil {
			return domain.ResultPayload{}, err
		}
		return domain.ResultPayload{Kraepelin: &res}, nil
	case domain.InstrumentPAPI:
		res, err := ScorePAPI(questions, answers)
		if err != nil {
			return domain.ResultPayload{}, err
		}
		return domain.ResultPayload{PAPI: &res}, nil
	default:
		return domain.ResultPayload{}, fmt.Errorf("%w: %q", ErrUnhandledInstrument, string(instrument))
	}
}

// Missing returns the ids of questions without an answer, in question order.
func Missing(questions []domain.Question, answers domain.AnswerSet) []string {
	var missing []string
	for _, q := range questions {
		if _, ok := answers[q.ID]; !ok {
			missing = append(missing, q.ID)
		}
	}
	return missing
}

// checkComplete enforces that every question has exactly one valid answer.
func checkComplete(questions []domain.Question, answers domain.AnswerSet) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrIncompleteAnswers)
	}
	if missing := Missing(questions, answers); len(missing) > 0 {
		return fmt.Errorf("%w: %d of %d questions unanswered", ErrIncompleteAnswers, len(missing), len(questions))
	}
	if len(answers) != len(questions) {
		return fmt.Errorf("%w: %d answers for %d questions", domain.ErrInvalidAnswer, len(answers), len(questions))
	}
	for _, q := range questions {
		if !q.Accepts(answers[q.ID]) {
			return fmt.Errorf("%w: question %s", domain.ErrInvalidAnswer, q.ID)
		}
	}
	return nil
}
