package domain

// TraitCode es una de las ocho letras del indicador de tipo.
type TraitCode string

const (
	TraitExtraversion TraitCode = "E"
	TraitIntroversion TraitCode = "I"
	TraitSensing      TraitCode = "S"
	TraitIntuition    TraitCode = "N"
	TraitThinking     TraitCode = "T"
	TraitFeeling      TraitCode = "F"
	TraitJudging      TraitCode = "J"
	TraitPerceiving   TraitCode = "P"
)

// TraitPair agrupa dos letras opuestas. First gana los empates.
type TraitPair struct {
	First  TraitCode
	Second TraitCode
}

func (p TraitPair) String() string {
	return string(p.First) + string(p.Second)
}

// Has indica si el codigo pertenece al par.
func (p TraitPair) Has(code TraitCode) bool {
	return code == p.First || code == p.Second
}

// TraitPairs devuelve los cuatro pares en el orden de las letras del tipo.
var TraitPairs = [4]TraitPair{
	{First: TraitExtraversion, Second: TraitIntroversion},
	{First: TraitSensing, Second: TraitIntuition},
	{First: TraitThinking, Second: TraitFeeling},
	{First: TraitJudging, Second: TraitPerceiving},
}

// PairOf devuelve el par al que pertenece el codigo.
func PairOf(code TraitCode) (TraitPair, bool) {
	for _, pair := range TraitPairs {
		if pair.Has(code) {
			return pair, true
		}
	}
	return TraitPair{}, false
}

// IsValidTrait indica si el codigo es una de las ocho letras.
func IsValidTrait(code TraitCode) bool {
	_, ok := PairOf(code)
	return ok
}
