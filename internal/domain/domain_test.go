package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseInstrument(t *testing.T) {
	cases := map[string]Instrument{
		"mbti":        InstrumentMBTI,
		" Kraepelin ": InstrumentKraepelin,
		"PAPI":        InstrumentPAPI,
	}
	for raw, want := range cases {
		got, err := ParseInstrument(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %s, got %s", raw, want, got)
		}
	}

	for _, raw := range []string{"", "disc", "mbti2"} {
		if _, err := ParseInstrument(raw); !errors.Is(err, ErrUnknownInstrument) {
			t.Fatalf("parse %q: expected ErrUnknownInstrument, got %v", raw, err)
		}
	}
}

func TestInstruments_ReturnsCopy(t *testing.T) {
	list := Instruments()
	list[0] = "tampered"
	if Instruments()[0] != InstrumentMBTI {
		t.Fatalf("Instruments must not expose the internal slice")
	}
}

func TestQuestion_ValueForOption(t *testing.T) {
	mbti := Question{ID: "m1", Instrument: InstrumentMBTI, Options: []Option{
		{Label: "a", Trait: TraitExtraversion},
		{Label: "b", Trait: TraitIntroversion},
	}}
	v, err := mbti.ValueForOption(1)
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v.Code != "I" || v.Option != 1 {
		t.Fatalf("unexpected value: %+v", v)
	}
	if !mbti.Accepts(v) {
		t.Fatalf("question should accept its own option")
	}
	if mbti.Accepts(AnswerValue{Code: "T"}) {
		t.Fatalf("question must reject a trait from another pair")
	}

	if _, err := mbti.ValueForOption(2); !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("expected ErrInvalidAnswer, got %v", err)
	}
	if _, err := mbti.ValueForOption(-1); !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("expected ErrInvalidAnswer for negative index, got %v", err)
	}

	kraepelin := Question{ID: "k1", Instrument: InstrumentKraepelin, Aspect: AspectSpeed, Options: []Option{
		{Label: "x", Score: 0}, {Label: "y", Score: 3}, {Label: "z", Score: 5},
	}}
	v, err = kraepelin.ValueForOption(2)
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v.Code != "" || v.Option != 2 {
		t.Fatalf("kraepelin answers carry only the option index, got %+v", v)
	}
	if kraepelin.Accepts(AnswerValue{Option: 3}) {
		t.Fatalf("out of range option accepted")
	}
}

func TestQuestion_Stratum(t *testing.T) {
	k := Question{Instrument: InstrumentKraepelin, Aspect: AspectStamina}
	if k.Stratum() != "stamina" {
		t.Fatalf("expected aspect stratum, got %q", k.Stratum())
	}
	m := Question{Instrument: InstrumentMBTI, Options: []Option{{Trait: TraitPerceiving}, {Trait: TraitJudging}}}
	if m.Stratum() != "JP" {
		t.Fatalf("expected pair stratum JP, got %q", m.Stratum())
	}
	p := Question{Instrument: InstrumentPAPI, Options: []Option{{Dimension: "N"}, {Dimension: "G"}}}
	if p.Stratum() != "" {
		t.Fatalf("papi questions are not stratified, got %q", p.Stratum())
	}
}

func TestNewProfileAssessment(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := Result{
		ID:          "r1",
		UserID:      "u1",
		Instrument:  InstrumentMBTI,
		CompletedAt: at,
		Payload: ResultPayload{MBTI: &DichotomyResult{
			TypeCode:    "INTJ",
			Title:       "Arsitek",
			Description: "Pemikir strategis.",
		}},
	}
	pa, err := NewProfileAssessment(r)
	if err != nil {
		t.Fatalf("projection: %v", err)
	}
	if pa.ResultID != "r1" || pa.Code != "INTJ" || pa.Title != "Arsitek" || !pa.CompletedAt.Equal(at) {
		t.Fatalf("unexpected projection: %+v", pa)
	}

	papi := Result{ID: "r2", Instrument: InstrumentPAPI, Payload: ResultPayload{PAPI: &PreferenceResult{Summary: "-"}}}
	pa, err = NewProfileAssessment(papi)
	if err != nil {
		t.Fatalf("projection: %v", err)
	}
	if pa.Code != "" || pa.Title == "" {
		t.Fatalf("papi without dominants should still get a title, got %+v", pa)
	}
}

func TestNewProfileAssessment_MissingPayload(t *testing.T) {
	if _, err := NewProfileAssessment(Result{ID: "r1", Instrument: InstrumentKraepelin}); err == nil {
		t.Fatalf("expected error for result without payload")
	}
	if _, err := NewProfileAssessment(Result{ID: "r1", Instrument: "disc"}); !errors.Is(err, ErrUnknownInstrument) {
		t.Fatalf("expected ErrUnknownInstrument, got %v", err)
	}
}

func TestPapiDimensions_CanonicalOrder(t *testing.T) {
	seen := make(map[Dimension]bool, len(Dimensions))
	for i, info := range Dimensions {
		if seen[info.Code] {
			t.Fatalf("duplicate dimension %s", info.Code)
		}
		seen[info.Code] = true
		if DimensionIndex(info.Code) != i {
			t.Fatalf("index mismatch for %s", info.Code)
		}
	}
	if DimensionIndex("Q") != -1 {
		t.Fatalf("unknown dimension should have index -1")
	}
}
