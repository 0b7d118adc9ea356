package domain

import "time"

// ProfileAssessment es la copia denormalizada de un resultado en el perfil del candidato.
// La fuente de verdad sigue siendo la tabla de resultados.
type ProfileAssessment struct {
	ResultID    string     `json:"result_id"`
	Instrument  Instrument `json:"instrument"`
	Code        string     `json:"code,omitempty"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	CompletedAt time.Time  `json:"completed_at"`
}

// CandidateProfile es la proyeccion que consume el CV builder.
type CandidateProfile struct {
	UserID      string                           `json:"user_id"`
	Assessments map[Instrument]ProfileAssessment `json:"assessments"`
	UpdatedAt   time.Time                        `json:"updated_at"`
}

// NewProfileAssessment construye la proyeccion a partir de un resultado.
func NewProfileAssessment(r Result) (ProfileAssessment, error) {
	code, title, summary, err := r.Headline()
	if err != nil {
		return ProfileAssessment{}, err
	}
	return ProfileAssessment{
		ResultID:    r.ID,
		Instrument:  r.Instrument,
		Code:        code,
		Title:       title,
		Summary:     summary,
		CompletedAt: r.CompletedAt,
	}, nil
}
