package domain

import (
	"fmt"
	"time"
)

// Result es el registro inmutable de un intento completado.
type Result struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	Instrument  Instrument    `json:"instrument"`
	CompletedAt time.Time     `json:"completed_at"`
	Payload     ResultPayload `json:"payload"`
}

// ResultPayload contiene exactamente uno de los resultados especificos.
type ResultPayload struct {
	MBTI      *DichotomyResult  `json:"mbti,omitempty"`
	Kraepelin *AptitudeResult   `json:"kraepelin,omitempty"`
	PAPI      *PreferenceResult `json:"papi,omitempty"`
}

// DichotomyResult es la salida del indicador de tipo.
type DichotomyResult struct {
	Tally       map[TraitCode]int `json:"tally"`
	TypeCode    string            `json:"type_code"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
}

// AspectScore agrega el desempeno de un aspecto del test kraepelin.
type AspectScore struct {
	Aspect  Aspect  `json:"aspect"`
	Total   int     `json:"total"`
	Max     int     `json:"max"`
	Percent float64 `json:"percent"`
	Band    string  `json:"band"`
}

// AptitudeResult es la salida del test kraepelin.
type AptitudeResult struct {
	Aspects []AspectScore `json:"aspects"`
	Summary string        `json:"summary"`
}

// DimensionScore es una dimension dominante anotada.
type DimensionScore struct {
	DimensionInfo
	Count int `json:"count"`
}

// PreferenceResult es la salida del inventario papi.
type PreferenceResult struct {
	Tally    map[Dimension]int `json:"tally"`
	Dominant []DimensionScore  `json:"dominant"`
	Summary  string            `json:"summary"`
}

// Headline devuelve el codigo/titulo corto y el resumen para la proyeccion en el perfil.
func (r Result) Headline() (code, title, summary string, err error) {
	switch r.Instrument {
	case InstrumentMBTI:
		if r.Payload.MBTI == nil {
			break
		}
		p := r.Payload.MBTI
		return p.TypeCode, p.Title, p.Description, nil
	case InstrumentKraepelin:
		if r.Payload.Kraepelin == nil {
			break
		}
		return "", InstrumentKraepelin.DisplayName(), r.Payload.Kraepelin.Summary, nil
	case InstrumentPAPI:
		if r.Payload.PAPI == nil {
			break
		}
		p := r.Payload.PAPI
		code := ""
		title := "Tidak ada preferensi dominan"
		if len(p.Dominant) > 0 {
			code = string(p.Dominant[0].Code)
			title = p.Dominant[0].Name
		}
		return code, title, p.Summary, nil
	default:
		return "", "", "", r.Instrument.Validate()
	}
	return "", "", "", fmt.Errorf("result %s has no %s payload", r.ID, r.Instrument)
}
