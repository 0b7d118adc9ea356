package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"career-assess/internal/domain"
	"career-assess/internal/scoring"
)

// QuestionSource entrega la seleccion aleatoria de preguntas de un instrumento.
type QuestionSource interface {
	Select(instrument domain.Instrument) ([]domain.Question, error)
}

// StartGate autoriza el inicio de un intento.
type StartGate interface {
	MayStart(ctx context.Context, userID string, instrument domain.Instrument) (StartDecision, error)
}

// ResultSink recibe el resultado calculado y devuelve su id persistido.
type ResultSink interface {
	Persist(ctx context.Context, result domain.Result) (string, error)
}

type SessionEventKind string

const (
	SessionEventStarted       SessionEventKind = "started"
	SessionEventAutoAdvanced  SessionEventKind = "auto_advanced"
	SessionEventSubmitFailed  SessionEventKind = "submit_failed"
	SessionEventCompleted     SessionEventKind = "completed"
	SessionEventPersistFailed SessionEventKind = "persist_failed"
	SessionEventAbandoned     SessionEventKind = "abandoned"
)

// SessionEvent se emite fuera del lock de la sesion.
type SessionEvent struct {
	Kind       SessionEventKind
	SessionID  string
	UserID     string
	Instrument domain.Instrument
	Index      int
	ResultID   string
	Err        error
}

type SessionConfig struct {
	// QuestionSeconds es la cantidad de ticks por pregunta.
	QuestionSeconds int
	TickInterval    time.Duration
	PersistTimeout  time.Duration
	Scheduler       Scheduler
	Listener        func(SessionEvent)
	Now             func() time.Time
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.QuestionSeconds <= 0 {
		c.QuestionSeconds = 15
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.PersistTimeout <= 0 {
		c.PersistTimeout = 5 * time.Second
	}
	if c.Scheduler == nil {
		c.Scheduler = NewRealScheduler()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// AssessmentSession es la maquina de estados de un intento. Todas las
// transiciones se serializan con mu; el timer es el unico actor autonomo.
type AssessmentSession struct {
	mu sync.Mutex

	id         string
	userID     string
	instrument domain.Instrument
	gate       StartGate
	bank       QuestionSource
	sink       ResultSink
	cfg        SessionConfig
	logger     *zap.Logger

	state      domain.SessionState
	starting   bool
	questions  []domain.Question
	answers    domain.AnswerSet
	index      int
	remaining  int
	generation uint64
	cancel     Cancel
	result     *domain.Result
	resultID   string
	persisting bool
	persistErr error
	touched    time.Time
}

func NewAssessmentSession(
	id, userID string,
	instrument domain.Instrument,
	gate StartGate,
	bank QuestionSource,
	sink ResultSink,
	cfg SessionConfig,
	logger *zap.Logger,
) *AssessmentSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	if id == "" {
		id = uuid.NewString()
	}
	cfg = cfg.withDefaults()
	return &AssessmentSession{
		id:         id,
		userID:     userID,
		instrument: instrument,
		gate:       gate,
		bank:       bank,
		sink:       sink,
		cfg:        cfg,
		logger:     logger.With(zap.String("session_id", id), zap.String("instrument", instrument.String())),
		state:      domain.SessionNotStarted,
		answers:    make(domain.AnswerSet),
		touched:    cfg.Now(),
	}
}

func (s *AssessmentSession) ID() string                    { return s.id }
func (s *AssessmentSession) UserID() string                { return s.userID }
func (s *AssessmentSession) Instrument() domain.Instrument { return s.instrument }

func (s *AssessmentSession) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastActivity es el ultimo momento en que el usuario actuo sobre la sesion.
func (s *AssessmentSession) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// Result devuelve el resultado calculado, si la sesion ya fue completada.
func (s *AssessmentSession) Result() (domain.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.Result{}, false
	}
	return *s.result, true
}

// Start consulta al gatekeeper, pide la seleccion al banco y arma el timer de la primera pregunta.
func (s *AssessmentSession) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != domain.SessionNotStarted || s.starting {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, state)
	}
	s.starting = true
	s.mu.Unlock()

	questions, err := s.prepare(ctx)

	s.mu.Lock()
	s.starting = false
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.questions = questions
	s.index = 0
	s.state = domain.SessionInProgress
	s.touched = s.cfg.Now()
	s.armTimerLocked()
	ev := s.eventLocked(SessionEventStarted, nil)
	s.mu.Unlock()

	s.logger.Info("assessment session started", zap.String("user_id", s.userID), zap.Int("questions", len(questions)))
	s.emit(ev)
	return nil
}

func (s *AssessmentSession) prepare(ctx context.Context) ([]domain.Question, error) {
	decision, err := s.gate.MayStart(ctx, s.userID, s.instrument)
	if err != nil {
		return nil, err
	}
	if decision != StartAllowed {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyAttempted, s.instrument)
	}
	questions, err := s.bank.Select(s.instrument)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: empty selection for %s", ErrInvalidTransition, s.instrument)
	}
	return questions, nil
}

// Answer registra o sobrescribe la respuesta de la pregunta actual.
func (s *AssessmentSession) Answer(questionID string, value domain.AnswerValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, err := s.currentLocked(questionID)
	if err != nil {
		return err
	}
	if !q.Accepts(value) {
		return fmt.Errorf("%w: value does not belong to question %s", domain.ErrInvalidAnswer, q.ID)
	}
	s.answers[q.ID] = value
	s.touched = s.cfg.Now()
	return nil
}

// AnswerOption registra la opcion elegida por indice.
func (s *AssessmentSession) AnswerOption(questionID string, option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, err := s.currentLocked(questionID)
	if err != nil {
		return err
	}
	value, err := q.ValueForOption(option)
	if err != nil {
		return err
	}
	s.answers[q.ID] = value
	s.touched = s.cfg.Now()
	return nil
}

func (s *AssessmentSession) currentLocked(questionID string) (domain.Question, error) {
	if s.state != domain.SessionInProgress {
		return domain.Question{}, fmt.Errorf("%w: answer while %s", ErrInvalidTransition, s.state)
	}
	q := s.questions[s.index]
	if q.ID != questionID {
		return domain.Question{}, fmt.Errorf("%w: question %s is not the current question", domain.ErrInvalidAnswer, questionID)
	}
	return q, nil
}

// Tick descuenta una unidad del timer; al llegar a cero se comporta como Next.
func (s *AssessmentSession) Tick() {
	s.tick(0, false)
}

func (s *AssessmentSession) tick(generation uint64, fromTimer bool) {
	s.mu.Lock()
	if s.state != domain.SessionInProgress || (fromTimer && generation != s.generation) {
		s.mu.Unlock()
		return
	}
	s.remaining--
	if s.remaining > 0 {
		s.mu.Unlock()
		return
	}
	events, result, _ := s.advanceLocked(true)
	s.mu.Unlock()

	s.emit(events...)
	if result != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PersistTimeout)
		defer cancel()
		// el error queda en la sesion y en el evento persist_failed
		_, _ = s.persist(ctx, *result)
	}
}

// Next avanza a la siguiente pregunta; en la ultima pasa a Submitting.
func (s *AssessmentSession) Next(ctx context.Context) error {
	s.mu.Lock()
	if s.state != domain.SessionInProgress {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: next while %s", ErrInvalidTransition, state)
	}
	s.touched = s.cfg.Now()
	events, result, err := s.advanceLocked(false)
	s.mu.Unlock()

	s.emit(events...)
	if err != nil {
		return err
	}
	if result != nil {
		_, err = s.persist(ctx, *result)
	}
	return err
}

// Previous retrocede una pregunta y reinicia su timer. En la primera no hace nada.
func (s *AssessmentSession) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.SessionInProgress {
		return fmt.Errorf("%w: previous while %s", ErrInvalidTransition, s.state)
	}
	s.touched = s.cfg.Now()
	if s.index == 0 {
		return nil
	}
	s.index--
	s.armTimerLocked()
	return nil
}

// Submit califica las respuestas acumuladas desde cualquier posicion.
// Si faltan respuestas la sesion vuelve a InProgress en la primera pregunta sin responder.
func (s *AssessmentSession) Submit(ctx context.Context) (domain.Result, error) {
	s.mu.Lock()
	if s.state != domain.SessionInProgress {
		state := s.state
		s.mu.Unlock()
		return domain.Result{}, fmt.Errorf("%w: submit while %s", ErrInvalidTransition, state)
	}
	s.touched = s.cfg.Now()
	events, result, err := s.submitLocked()
	s.mu.Unlock()

	s.emit(events...)
	if err != nil {
		return domain.Result{}, err
	}
	id, err := s.persist(ctx, *result)
	out := *result
	if id != "" {
		out.ID = id
	}
	return out, err
}

// RetryPersist vuelve a entregar el resultado ya calculado tras una falla de persistencia.
func (s *AssessmentSession) RetryPersist(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.state != domain.SessionCompleted || s.result == nil {
		state := s.state
		s.mu.Unlock()
		return "", fmt.Errorf("%w: retry persist while %s", ErrInvalidTransition, state)
	}
	if s.resultID != "" {
		id := s.resultID
		s.mu.Unlock()
		return id, nil
	}
	if s.persisting {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: persistence already in flight", ErrInvalidTransition)
	}
	s.persisting = true
	s.touched = s.cfg.Now()
	result := *s.result
	s.mu.Unlock()

	return s.persist(ctx, result)
}

// Abandon cierra la sesion sin persistir nada.
func (s *AssessmentSession) Abandon() error {
	s.mu.Lock()
	if s.state != domain.SessionInProgress {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: abandon while %s", ErrInvalidTransition, state)
	}
	s.stopTimerLocked()
	s.state = domain.SessionAbandoned
	ev := s.eventLocked(SessionEventAbandoned, nil)
	s.mu.Unlock()

	s.logger.Info("assessment session abandoned", zap.String("user_id", s.userID), zap.Int("index", ev.Index))
	s.emit(ev)
	return nil
}

// Snapshot devuelve una vista de solo lectura del estado actual.
func (s *AssessmentSession) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.SessionSnapshot{
		ID:             s.id,
		UserID:         s.userID,
		Instrument:     s.instrument,
		State:          s.state,
		Index:          s.index,
		Total:          len(s.questions),
		Remaining:      s.remaining,
		Answered:       len(s.answers),
		ResultID:       s.resultID,
		PersistPending: s.state == domain.SessionCompleted && s.resultID == "",
	}
	if s.state == domain.SessionInProgress && s.index < len(s.questions) {
		q := s.questions[s.index]
		q.Options = append([]domain.Option(nil), q.Options...)
		snap.Current = &q
		if answer, ok := s.answers[q.ID]; ok {
			snap.CurrentAnswer = &answer
		}
	}
	return snap
}

// PersistError devuelve el ultimo error de persistencia, si lo hubo.
func (s *AssessmentSession) PersistError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistErr
}

func (s *AssessmentSession) advanceLocked(auto bool) ([]SessionEvent, *domain.Result, error) {
	if s.index < len(s.questions)-1 {
		s.index++
		s.armTimerLocked()
		if auto {
			return []SessionEvent{s.eventLocked(SessionEventAutoAdvanced, nil)}, nil, nil
		}
		return nil, nil, nil
	}
	return s.submitLocked()
}

func (s *AssessmentSession) submitLocked() ([]SessionEvent, *domain.Result, error) {
	s.state = domain.SessionSubmitting
	s.stopTimerLocked()

	payload, err := scoring.Score(s.instrument, s.questions, s.answers)
	if err != nil {
		s.state = domain.SessionInProgress
		if idx := s.firstUnansweredLocked(); idx >= 0 {
			s.index = idx
		}
		s.armTimerLocked()
		return []SessionEvent{s.eventLocked(SessionEventSubmitFailed, err)}, nil, err
	}

	result := domain.Result{
		ID:          uuid.NewString(),
		UserID:      s.userID,
		Instrument:  s.instrument,
		CompletedAt: s.cfg.Now().UTC(),
		Payload:     payload,
	}
	s.result = &result
	s.state = domain.SessionCompleted
	s.persisting = true
	return nil, &result, nil
}

func (s *AssessmentSession) persist(ctx context.Context, result domain.Result) (string, error) {
	id, err := s.sink.Persist(ctx, result)

	s.mu.Lock()
	s.persisting = false
	var ev SessionEvent
	if err != nil {
		s.persistErr = err
		ev = s.eventLocked(SessionEventPersistFailed, err)
	} else {
		s.resultID = id
		s.persistErr = nil
		ev = s.eventLocked(SessionEventCompleted, nil)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("failed to persist assessment result", zap.String("user_id", s.userID), zap.String("result_id", result.ID), zap.Error(err))
	} else {
		s.logger.Info("assessment session completed", zap.String("user_id", s.userID), zap.String("result_id", id))
	}
	s.emit(ev)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *AssessmentSession) firstUnansweredLocked() int {
	for i, q := range s.questions {
		if _, ok := s.answers[q.ID]; !ok {
			return i
		}
	}
	return -1
}

// armTimerLocked reemplaza el timer vigente por uno nuevo para la pregunta actual.
// Un callback de una generacion anterior se ignora.
func (s *AssessmentSession) armTimerLocked() {
	s.stopTimerLocked()
	generation := s.generation
	s.remaining = s.cfg.QuestionSeconds
	s.cancel = s.cfg.Scheduler.Every(s.cfg.TickInterval, func() {
		s.tick(generation, true)
	})
}

func (s *AssessmentSession) stopTimerLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
}

func (s *AssessmentSession) eventLocked(kind SessionEventKind, err error) SessionEvent {
	return SessionEvent{
		Kind:       kind,
		SessionID:  s.id,
		UserID:     s.userID,
		Instrument: s.instrument,
		Index:      s.index,
		ResultID:   s.resultID,
		Err:        err,
	}
}

func (s *AssessmentSession) emit(events ...SessionEvent) {
	if s.cfg.Listener == nil {
		return
	}
	for _, ev := range events {
		s.cfg.Listener(ev)
	}
}
