package domain

// SessionState es el estado de una sesion de evaluacion.
type SessionState string

const (
	SessionNotStarted SessionState = "not_started"
	SessionInProgress SessionState = "in_progress"
	SessionSubmitting SessionState = "submitting"
	SessionCompleted  SessionState = "completed"
	SessionAbandoned  SessionState = "abandoned"
)

// Terminal indica si la sesion ya no acepta transiciones.
func (s SessionState) Terminal() bool {
	return s == SessionCompleted || s == SessionAbandoned
}

// SessionSnapshot es una vista de solo lectura para la capa de presentacion.
type SessionSnapshot struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	Instrument     Instrument   `json:"instrument"`
	State          SessionState `json:"state"`
	Index          int          `json:"index"`
	Total          int          `json:"total"`
	Remaining      int          `json:"remaining"`
	Answered       int          `json:"answered"`
	Current        *Question    `json:"current,omitempty"`
	CurrentAnswer  *AnswerValue `json:"current_answer,omitempty"`
	ResultID       string       `json:"result_id,omitempty"`
	PersistPending bool         `json:"persist_pending"`
}
