package questionbank

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"career-assess/internal/domain"
)

var ErrInvalidPool = errors.New("invalid question pool")

// Pool is the master question set of one instrument.
type Pool struct {
	Instrument  domain.Instrument
	SelectCount int
	Questions   []domain.Question
	// Stratified pools guarantee an even share of the selection per stratum.
	Stratified bool
}

// PoolStats summarizes a pool for diagnostics.
type PoolStats struct {
	Instrument  domain.Instrument `json:"instrument"`
	PoolSize    int               `json:"pool_size"`
	SelectCount int               `json:"select_count"`
	Strata      map[string]int    `json:"strata,omitempty"`
}

// Bank hands out randomized question subsets. It keeps no session state and
// is safe for concurrent use.
type Bank struct {
	mu    sync.Mutex
	rng   *rand.Rand
	pools map[domain.Instrument]*pool
}

type pool struct {
	Pool
	strataOrder []string
	strata      map[string][]int
}

type Option func(*Bank)

// WithRand fixes the randomness source, mostly for tests.
func WithRand(r *rand.Rand) Option {
	return func(b *Bank) {
		if r != nil {
			b.rng = r
		}
	}
}

// New validates the pools and builds a Bank.
func New(pools []Pool, opts ...Option) (*Bank, error) {
	seed := uint64(time.Now().UnixNano())
	b := &Bank{
		rng:   rand.New(rand.NewPCG(seed, seed>>1|1)),
		pools: make(map[domain.Instrument]*pool, len(pools)),
	}
	for _, opt := range opts {
		opt(b)
	}
	for _, p := range pools {
		if err := p.Instrument.Validate(); err != nil {
			return nil, err
		}
		if _, dup := b.pools[p.Instrument]; dup {
			return nil, fmt.Errorf("%w: duplicate pool for %s", ErrInvalidPool, p.Instrument)
		}
		built, err := buildPool(p)
		if err != nil {
			return nil, err
		}
		b.pools[p.Instrument] = built
	}
	return b, nil
}

// Select returns a fresh, independently randomized ordered subset for the instrument.
func (b *Bank) Select(instrument domain.Instrument) ([]domain.Question, error) {
	if err := instrument.Validate(); err != nil {
		return nil, err
	}
	p, ok := b.pools[instrument]
	if !ok {
		return nil, fmt.Errorf("%w: no pool loaded for %s", domain.ErrUnknownInstrument, instrument)
	}

	b.mu.Lock()
	var picked []int
	if p.Stratified {
		picked = b.pickStratified(p)
	} else {
		picked = b.rng.Perm(len(p.Questions))[:p.SelectCount]
	}
	b.rng.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	b.mu.Unlock()

	out := make([]domain.Question, 0, len(picked))
	for _, idx := range picked {
		out = append(out, cloneQuestion(p.Questions[idx]))
	}
	return out, nil
}

// Count returns the fixed selection length of an instrument.
func (b *Bank) Count(instrument domain.Instrument) (int, error) {
	if err := instrument.Validate(); err != nil {
		return 0, err
	}
	p, ok := b.pools[instrument]
	if !ok {
		return 0, fmt.Errorf("%w: no pool loaded for %s", domain.ErrUnknownInstrument, instrument)
	}
	return p.SelectCount, nil
}

// Stats lists every loaded pool in canonical instrument order.
func (b *Bank) Stats() []PoolStats {
	var out []PoolStats
	for _, inst := range domain.Instruments() {
		p, ok := b.pools[inst]
		if !ok {
			continue
		}
		st := PoolStats{Instrument: inst, PoolSize: len(p.Questions), SelectCount: p.SelectCount}
		if p.Stratified {
			st.Strata = make(map[string]int, len(p.strata))
			for key, idx := range p.strata {
				st.Strata[key] = len(idx)
			}
		}
		out = append(out, st)
	}
	return out
}

// pickStratified gives every stratum count/k questions and spreads the
// remainder over randomly chosen strata that still have capacity.
func (b *Bank) pickStratified(p *pool) []int {
	k := len(p.strataOrder)
	base := p.SelectCount / k
	remainder := p.SelectCount % k

	quota := make(map[string]int, k)
	var spare []string
	for _, key := range p.strataOrder {
		quota[key] = base
		if len(p.strata[key]) > base {
			spare = append(spare, key)
		}
	}
	b.rng.Shuffle(len(spare), func(i, j int) { spare[i], spare[j] = spare[j], spare[i] })
	for i := 0; i < remainder; i++ {
		quota[spare[i]]++
	}

	picked := make([]int, 0, p.SelectCount)
	for _, key := range p.strataOrder {
		members := append([]int(nil), p.strata[key]...)
		b.rng.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
		picked = append(picked, members[:quota[key]]...)
	}
	return picked
}

func buildPool(p Pool) (*pool, error) {
	if p.SelectCount <= 0 {
		return nil, fmt.Errorf("%w: %s select count must be positive", ErrInvalidPool, p.Instrument)
	}
	if len(p.Questions) < p.SelectCount {
		return nil, fmt.Errorf("%w: %s has %d questions, needs %d", ErrInvalidPool, p.Instrument, len(p.Questions), p.SelectCount)
	}

	built := &pool{Pool: p, strata: make(map[string][]int)}
	built.Questions = make([]domain.Question, len(p.Questions))
	seen := make(map[string]struct{}, len(p.Questions))
	for i, q := range p.Questions {
		q = cloneQuestion(q)
		q.Instrument = p.Instrument
		if err := normalizeQuestion(&q); err != nil {
			return nil, err
		}
		if _, dup := seen[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question id %q in %s", ErrInvalidPool, q.ID, p.Instrument)
		}
		seen[q.ID] = struct{}{}
		built.Questions[i] = q
		if p.Stratified {
			key := q.Stratum()
			if key == "" {
				return nil, fmt.Errorf("%w: question %s has no stratum", ErrInvalidPool, q.ID)
			}
			built.strata[key] = append(built.strata[key], i)
		}
	}

	if p.Stratified {
		built.strataOrder = strataOrder(p.Instrument, built.strata)
		if err := checkStrataCapacity(built); err != nil {
			return nil, err
		}
	}
	return built, nil
}

func checkStrataCapacity(p *pool) error {
	k := len(p.strataOrder)
	if k == 0 {
		return fmt.Errorf("%w: %s is stratified but has no strata", ErrInvalidPool, p.Instrument)
	}
	base := p.SelectCount / k
	if base == 0 {
		return fmt.Errorf("%w: %s selects %d questions for %d strata", ErrInvalidPool, p.Instrument, p.SelectCount, k)
	}
	spare := 0
	for _, key := range p.strataOrder {
		size := len(p.strata[key])
		if size < base {
			return fmt.Errorf("%w: stratum %s of %s has %d questions, needs %d", ErrInvalidPool, key, p.Instrument, size, base)
		}
		if size > base {
			spare++
		}
	}
	if spare < p.SelectCount%k {
		return fmt.Errorf("%w: %s cannot place %d remainder questions", ErrInvalidPool, p.Instrument, p.SelectCount%k)
	}
	return nil
}

// strataOrder keeps the canonical order for known strata so selection is
// reproducible under a fixed seed.
func strataOrder(instrument domain.Instrument, strata map[string][]int) []string {
	var canonical []string
	switch instrument {
	case domain.InstrumentKraepelin:
		for _, a := range domain.Aspects {
			canonical = append(canonical, string(a))
		}
	case domain.InstrumentMBTI:
		for _, pair := range domain.TraitPairs {
			canonical = append(canonical, pair.String())
		}
	}
	var out []string
	used := make(map[string]struct{}, len(strata))
	for _, key := range canonical {
		if _, ok := strata[key]; ok {
			out = append(out, key)
			used[key] = struct{}{}
		}
	}
	var extra []string
	for key := range strata {
		if _, ok := used[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func cloneQuestion(q domain.Question) domain.Question {
	q.Options = append([]domain.Option(nil), q.Options...)
	return q
}
