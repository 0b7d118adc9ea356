package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Instrument identifica uno de los tests psicometricos soportados.
// El conjunto es cerrado: cualquier valor fuera de Instruments() es invalido.
type Instrument string

const (
	// InstrumentMBTI es el indicador de tipo basado en cuatro dicotomias.
	InstrumentMBTI Instrument = "mbti"
	// InstrumentKraepelin es el test cronometrado de aptitud y concentracion.
	InstrumentKraepelin Instrument = "kraepelin"
	// InstrumentPAPI es el inventario de preferencias de eleccion forzada (20 dimensiones).
	InstrumentPAPI Instrument = "papi"
)

var ErrUnknownInstrument = errors.New("unknown instrument")

var instruments = []Instrument{InstrumentMBTI, InstrumentKraepelin, InstrumentPAPI}

// Instruments devuelve todas las variantes en orden canonico.
func Instruments() []Instrument {
	out := make([]Instrument, len(instruments))
	copy(out, instruments)
	return out
}

// ParseInstrument normaliza y valida un identificador. Nunca cae en un default.
func ParseInstrument(raw string) (Instrument, error) {
	candidate := Instrument(strings.ToLower(strings.TrimSpace(raw)))
	if err := candidate.Validate(); err != nil {
		return "", err
	}
	return candidate, nil
}

func (i Instrument) Validate() error {
	for _, known := range instruments {
		if i == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownInstrument, string(i))
}

// DisplayName devuelve el nombre visible del instrumento.
func (i Instrument) DisplayName() string {
	switch i {
	case InstrumentMBTI:
		return "Tes Kepribadian MBTI"
	case InstrumentKraepelin:
		return "Tes Konsentrasi Kraepelin"
	case InstrumentPAPI:
		return "Tes Preferensi Kerja PAPI"
	default:
		return string(i)
	}
}

func (i Instrument) String() string {
	return string(i)
}
