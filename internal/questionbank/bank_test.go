package questionbank

import (
	"errors"
	"strings"
	"testing"

	"career-assess/internal/domain"
)

func loadTestBank(t *testing.T) *Bank {
	t.Helper()
	bank, err := LoadDefault(nil, WithRand(NewSeededRand(42)))
	if err != nil {
		t.Fatalf("load default bank: %v", err)
	}
	return bank
}

func TestLoadDefault_SelectsFixedLengthForEveryInstrument(t *testing.T) {
	bank := loadTestBank(t)
	for _, inst := range domain.Instruments() {
		t.Run(inst.String(), func(t *testing.T) {
			questions, err := bank.Select(inst)
			if err != nil {
				t.Fatalf("select: %v", err)
			}
			if len(questions) != 20 {
				t.Fatalf("expected 20 questions, got %d", len(questions))
			}
			seen := make(map[string]struct{}, len(questions))
			for _, q := range questions {
				if q.Instrument != inst {
					t.Fatalf("question %s tagged %s, expected %s", q.ID, q.Instrument, inst)
				}
				if _, dup := seen[q.ID]; dup {
					t.Fatalf("question %s selected twice", q.ID)
				}
				seen[q.ID] = struct{}{}
			}
		})
	}
}

func TestSelect_KraepelinIsStratifiedByAspect(t *testing.T) {
	bank := loadTestBank(t)
	for round := 0; round < 25; round++ {
		questions, err := bank.Select(domain.InstrumentKraepelin)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		perAspect := make(map[domain.Aspect]int)
		for _, q := range questions {
			perAspect[q.Aspect]++
		}
		for _, aspect := range domain.Aspects {
			if perAspect[aspect] != 5 {
				t.Fatalf("round %d: expected 5 %s questions, got %d (%v)", round, aspect, perAspect[aspect], perAspect)
			}
		}
	}
}

func TestSelect_MBTICoversEveryPair(t *testing.T) {
	bank := loadTestBank(t)
	questions, err := bank.Select(domain.InstrumentMBTI)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	perPair := make(map[string]int)
	for _, q := range questions {
		perPair[q.Stratum()]++
	}
	for _, pair := range domain.TraitPairs {
		if perPair[pair.String()] != 5 {
			t.Fatalf("expected 5 questions for %s, got %d", pair, perPair[pair.String()])
		}
	}
}

func TestSelect_IsRandomizedAcrossCalls(t *testing.T) {
	bank := loadTestBank(t)
	for _, inst := range domain.Instruments() {
		first, err := bank.Select(inst)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		differs := false
		for attempt := 0; attempt < 5 && !differs; attempt++ {
			next, err := bank.Select(inst)
			if err != nil {
				t.Fatalf("select: %v", err)
			}
			if len(next) != len(first) {
				t.Fatalf("length changed between calls: %d vs %d", len(first), len(next))
			}
			differs = joinIDs(first) != joinIDs(next)
		}
		if !differs {
			t.Fatalf("%s: expected independent selections to differ", inst)
		}
	}
}

func TestSelect_ReturnsCopies(t *testing.T) {
	bank := loadTestBank(t)
	questions, err := bank.Select(domain.InstrumentPAPI)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	id := questions[0].ID
	questions[0].Options[0].Label = "mutated"

	for i := 0; i < 10; i++ {
		again, _ := bank.Select(domain.InstrumentPAPI)
		for _, q := range again {
			if q.ID == id && q.Options[0].Label == "mutated" {
				t.Fatalf("selection shares option slices with the pool")
			}
		}
	}
}

func TestSelect_UnknownInstrument(t *testing.T) {
	bank := loadTestBank(t)
	if _, err := bank.Select(domain.Instrument("disc")); !errors.Is(err, domain.ErrUnknownInstrument) {
		t.Fatalf("expected ErrUnknownInstrument, got %v", err)
	}
	if _, err := bank.Count(domain.Instrument("")); !errors.Is(err, domain.ErrUnknownInstrument) {
		t.Fatalf("expected ErrUnknownInstrument for empty id, got %v", err)
	}
}

func TestLoadDefault_SelectCountOverride(t *testing.T) {
	bank, err := LoadDefault(map[domain.Instrument]int{domain.InstrumentKraepelin: 8})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	questions, err := bank.Select(domain.InstrumentKraepelin)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(questions) != 8 {
		t.Fatalf("expected 8 questions, got %d", len(questions))
	}
	perAspect := make(map[domain.Aspect]int)
	for _, q := range questions {
		perAspect[q.Aspect]++
	}
	for _, aspect := range domain.Aspects {
		if perAspect[aspect] != 2 {
			t.Fatalf("expected 2 %s questions, got %d", aspect, perAspect[aspect])
		}
	}
}

func TestStats_ReportsStrata(t *testing.T) {
	bank := loadTestBank(t)
	stats := bank.Stats()
	if len(stats) != 3 {
		t.Fatalf("expected 3 pools, got %d", len(stats))
	}
	if stats[1].Instrument != domain.InstrumentKraepelin || stats[1].Strata["speed"] != 7 {
		t.Fatalf("unexpected kraepelin stats: %+v", stats[1])
	}
	if stats[2].Strata != nil {
		t.Fatalf("papi pool should not report strata")
	}
}

func TestParsePool_RejectsMalformedPools(t *testing.T) {
	cases := map[string]string{
		"duplicate id": `
instrument: papi
select: 1
questions:
  - {id: q1, text: a, options: [{label: x, dimension: N}, {label: y, dimension: G}]}
  - {id: q1, text: b, options: [{label: x, dimension: A}, {label: y, dimension: L}]}
`,
		"not an opposing pair": `
instrument: mbti
select: 1
questions:
  - {id: q1, text: a, options: [{label: x, trait: E}, {label: y, trait: S}]}
`,
		"unknown dimension": `
instrument: papi
select: 1
questions:
  - {id: q1, text: a, options: [{label: x, dimension: Q}, {label: y, dimension: G}]}
`,
		"stratum too small": `
instrument: kraepelin
select: 4
questions:
  - {id: q1, aspect: speed, text: a, options: [{label: "1", score: 1}, {label: "2", score: 0}]}
  - {id: q2, aspect: speed, text: b, options: [{label: "1", score: 1}, {label: "2", score: 0}]}
  - {id: q3, aspect: speed, text: c, options: [{label: "1", score: 1}, {label: "2", score: 0}]}
  - {id: q4, aspect: stamina, text: d, options: [{label: "1", score: 1}, {label: "2", score: 0}]}
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			pool, err := ParsePool([]byte(doc))
			if err == nil {
				_, err = New([]Pool{pool})
			}
			if !errors.Is(err, ErrInvalidPool) {
				t.Fatalf("expected ErrInvalidPool, got %v", err)
			}
		})
	}
}

func TestParsePool_UnknownInstrument(t *testing.T) {
	_, err := ParsePool([]byte("instrument: disc\nselect: 1\nquestions: []\n"))
	if !errors.Is(err, domain.ErrUnknownInstrument) {
		t.Fatalf("expected ErrUnknownInstrument, got %v", err)
	}
}

func TestNew_OptionAspectDefaultsToQuestionAspect(t *testing.T) {
	bank, err := New([]Pool{{
		Instrument:  domain.InstrumentKraepelin,
		SelectCount: 1,
		Questions: []domain.Question{{
			ID: "k1", Text: "1 + 1", Aspect: domain.AspectSpeed,
			Options: []domain.Option{{Label: "2", Score: 1}, {Label: "3"}},
		}},
	}})
	if err != nil {
		t.Fatalf("new bank: %v", err)
	}
	questions, err := bank.Select(domain.InstrumentKraepelin)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	for _, opt := range questions[0].Options {
		if opt.Aspect != domain.AspectSpeed {
			t.Fatalf("expected inherited aspect, got %q", opt.Aspect)
		}
	}
}

func joinIDs(questions []domain.Question) string {
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return strings.Join(ids, ",")
}
