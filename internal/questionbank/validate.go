package questionbank

import (
	"fmt"
	"strings"

	"career-assess/internal/domain"
)

// normalizeQuestion fills inherited option tags and rejects malformed questions.
func normalizeQuestion(q *domain.Question) error {
	q.ID = strings.TrimSpace(q.ID)
	if q.ID == "" {
		return fmt.Errorf("%w: %s question without id", ErrInvalidPool, q.Instrument)
	}
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: question %s has no text", ErrInvalidPool, q.ID)
	}

	switch q.Instrument {
	case domain.InstrumentMBTI:
		return checkDichotomy(q)
	case domain.InstrumentKraepelin:
		return checkAptitude(q)
	case domain.InstrumentPAPI:
		return checkForcedChoice(q)
	default:
		return q.Instrument.Validate()
	}
}

func checkDichotomy(q *domain.Question) error {
	if len(q.Options) != 2 {
		return fmt.Errorf("%w: question %s needs exactly 2 options, has %d", ErrInvalidPool, q.ID, len(q.Options))
	}
	first, second := q.Options[0].Trait, q.Options[1].Trait
	pair, ok := domain.PairOf(first)
	if !ok || !pair.Has(second) || first == second {
		return fmt.Errorf("%w: question %s options %q/%q are not an opposing pair", ErrInvalidPool, q.ID, first, second)
	}
	return nil
}

func checkAptitude(q *domain.Question) error {
	if !domain.IsValidAspect(q.Aspect) {
		return fmt.Errorf("%w: question %s has unknown aspect %q", ErrInvalidPool, q.ID, q.Aspect)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: question %s needs at least 2 options", ErrInvalidPool, q.ID)
	}
	for i := range q.Options {
		opt := &q.Options[i]
		if opt.Aspect == "" {
			opt.Aspect = q.Aspect
		}
		if !domain.IsValidAspect(opt.Aspect) {
			return fmt.Errorf("%w: question %s option %d has unknown aspect %q", ErrInvalidPool, q.ID, i, opt.Aspect)
		}
		if opt.Score < 0 {
			return fmt.Errorf("%w: question %s option %d has negative score", ErrInvalidPool, q.ID, i)
		}
	}
	return nil
}

func checkForcedChoice(q *domain.Question) error {
	if len(q.Options) != 2 {
		return fmt.Errorf("%w: question %s needs exactly 2 statements, has %d", ErrInvalidPool, q.ID, len(q.Options))
	}
	for i, opt := range q.Options {
		if domain.DimensionIndex(opt.Dimension) < 0 {
			return fmt.Errorf("%w: question %s statement %d has unknown dimension %q", ErrInvalidPool, q.ID, i, opt.Dimension)
		}
	}
	if q.Options[0].Dimension == q.Options[1].Dimension {
		return fmt.Errorf("%w: question %s pairs dimension %q with itself", ErrInvalidPool, q.ID, q.Options[0].Dimension)
	}
	return nil
}
