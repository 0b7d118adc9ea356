package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidAnswer = errors.New("invalid answer")

// Question es polimorfica segun el instrumento:
//   - mbti: dos opciones, cada una con un Trait.
//   - kraepelin: N opciones con Score y Aspect.
//   - papi: dos enunciados (opciones), cada uno con una Dimension.
type Question struct {
	ID         string     `json:"id" yaml:"id"`
	Instrument Instrument `json:"instrument" yaml:"-"`
	Text       string     `json:"text" yaml:"text"`
	Aspect     Aspect     `json:"aspect,omitempty" yaml:"aspect,omitempty"`
	Options    []Option   `json:"options" yaml:"options"`
}

type Option struct {
	Label     string    `json:"label" yaml:"label"`
	Trait     TraitCode `json:"-" yaml:"trait,omitempty"`
	Score     int       `json:"-" yaml:"score,omitempty"`
	Aspect    Aspect    `json:"-" yaml:"aspect,omitempty"`
	Dimension Dimension `json:"-" yaml:"dimension,omitempty"`
}

// AnswerValue guarda la seleccion del usuario. En mbti y papi importa Code
// (trait o dimension); en kraepelin importa Option (indice de la opcion).
type AnswerValue struct {
	Code   string `json:"code,omitempty"`
	Option int    `json:"option"`
}

// AnswerSet mapea question ID -> seleccion.
type AnswerSet map[string]AnswerValue

func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Stratum devuelve la categoria usada para el muestreo estratificado.
// Vacio significa que la pregunta no participa de estratos.
func (q Question) Stratum() string {
	switch q.Instrument {
	case InstrumentKraepelin:
		return string(q.Aspect)
	case InstrumentMBTI:
		if len(q.Options) > 0 {
			if pair, ok := PairOf(q.Options[0].Trait); ok {
				return pair.String()
			}
		}
	}
	return ""
}

// ValueForOption traduce el indice elegido al valor que espera el scoring del instrumento.
func (q Question) ValueForOption(index int) (AnswerValue, error) {
	if index < 0 || index >= len(q.Options) {
		return AnswerValue{}, fmt.Errorf("%w: option %d out of range for question %s", ErrInvalidAnswer, index, q.ID)
	}
	opt := q.Options[index]
	switch q.Instrument {
	case InstrumentMBTI:
		return AnswerValue{Code: string(opt.Trait), Option: index}, nil
	case InstrumentPAPI:
		return AnswerValue{Code: string(opt.Dimension), Option: index}, nil
	default:
		return AnswerValue{Option: index}, nil
	}
}

// Accepts indica si el valor corresponde a alguna opcion de la pregunta.
func (q Question) Accepts(value AnswerValue) bool {
	switch q.Instrument {
	case InstrumentMBTI:
		for _, opt := range q.Options {
			if string(opt.Trait) == value.Code {
				return true
			}
		}
		return false
	case InstrumentPAPI:
		for _, opt := range q.Options {
			if string(opt.Dimension) == value.Code {
				return true
			}
		}
		return false
	default:
		return value.Option >= 0 && value.Option < len(q.Options)
	}
}
