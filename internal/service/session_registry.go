package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"career-assess/internal/domain"
)

type SessionManagerConfig struct {
	Session SessionConfig
	// ClaimTTL calcula la vida maxima de una reserva segun el largo de la seleccion.
	ClaimTTL func(questions int) time.Duration
	IdleTTL  time.Duration
	// Listener recibe todos los eventos de las sesiones, despues del registro interno.
	Listener func(SessionEvent)
}

type sessionKey struct {
	userID     string
	instrument domain.Instrument
}

// SessionManager crea sesiones y las mantiene accesibles por id mientras estan vivas.
// Una sesion sale del registro al completarse con exito o al ser abandonada.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*AssessmentSession
	active   map[sessionKey]string

	gate    StartGate
	bank    QuestionSource
	sink    ResultSink
	claimer SessionClaimer
	cfg     SessionManagerConfig
	logger  *zap.Logger
}

func NewSessionManager(gate StartGate, bank QuestionSource, sink ResultSink, claimer SessionClaimer, cfg SessionManagerConfig, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if claimer == nil {
		claimer = NewMemorySessionClaimer()
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	cfg.Session = cfg.Session.withDefaults()
	return &SessionManager{
		sessions: make(map[string]*AssessmentSession),
		active:   make(map[sessionKey]string),
		gate:     gate,
		bank:     bank,
		sink:     sink,
		claimer:  claimer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start abre una sesion nueva para (usuario, instrumento).
func (m *SessionManager) Start(ctx context.Context, userID string, instrument domain.Instrument) (*AssessmentSession, error) {
	if err := instrument.Validate(); err != nil {
		return nil, err
	}
	key := sessionKey{userID: userID, instrument: instrument}
	id := uuid.NewString()

	m.mu.Lock()
	if existing, ok := m.active[key]; ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: session %s", ErrSessionInProgress, existing)
	}
	m.active[key] = id
	m.mu.Unlock()

	ok, err := m.claimer.Claim(ctx, userID, instrument, id, m.claimTTL(instrument))
	if err != nil || !ok {
		m.unreserve(key, id)
		if err != nil {
			return nil, fmt.Errorf("claim session: %w", err)
		}
		return nil, fmt.Errorf("%w: %s", ErrSessionInProgress, instrument)
	}

	cfg := m.cfg.Session
	cfg.Listener = m.onEvent
	sess := NewAssessmentSession(id, userID, instrument, m.gate, m.bank, m.sink, cfg, m.logger)

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	if err := sess.Start(ctx); err != nil {
		m.retire(id)
		return nil, err
	}
	return sess, nil
}

// Get devuelve la sesion solo a su duenio.
func (m *SessionManager) Get(userID, sessionID string) (*AssessmentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[sessionID]
	if !ok || sess.UserID() != userID {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return sess, nil
}

// Active devuelve la cantidad de sesiones registradas.
func (m *SessionManager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep abandona las sesiones en curso inactivas y descarta las completadas
// cuyo resultado nunca se pudo persistir.
func (m *SessionManager) Sweep(now time.Time) int {
	m.mu.Lock()
	candidates := make([]*AssessmentSession, 0, len(m.sessions))
	for _, sess := range m.sessions {
		candidates = append(candidates, sess)
	}
	m.mu.Unlock()

	swept := 0
	for _, sess := range candidates {
		if now.Sub(sess.LastActivity()) < m.cfg.IdleTTL {
			continue
		}
		switch sess.State() {
		case domain.SessionInProgress:
			if err := sess.Abandon(); err == nil {
				swept++
			}
		case domain.SessionCompleted, domain.SessionAbandoned:
			if result, ok := sess.Result(); ok && sess.Snapshot().PersistPending {
				m.logger.Error("discarding session with unpersisted result",
					zap.String("session_id", sess.ID()),
					zap.String("user_id", sess.UserID()),
					zap.String("result_id", result.ID),
					zap.Error(sess.PersistError()),
				)
			}
			m.retire(sess.ID())
			swept++
		}
	}
	if swept > 0 {
		m.logger.Info("idle sessions swept", zap.Int("count", swept))
	}
	return swept
}

// StartSweeper ejecuta Sweep periodicamente hasta cancelar el handle.
func (m *SessionManager) StartSweeper(scheduler Scheduler, interval time.Duration) Cancel {
	if scheduler == nil {
		scheduler = NewRealScheduler()
	}
	return scheduler.Every(interval, func() {
		m.Sweep(time.Now())
	})
}

// Close abandona todas las sesiones en curso.
func (m *SessionManager) Close() {
	m.mu.Lock()
	candidates := make([]*AssessmentSession, 0, len(m.sessions))
	for _, sess := range m.sessions {
		candidates = append(candidates, sess)
	}
	m.mu.Unlock()

	for _, sess := range candidates {
		if sess.State() == domain.SessionInProgress {
			_ = sess.Abandon()
		}
	}
}

func (m *SessionManager) onEvent(ev SessionEvent) {
	fields := []zap.Field{
		zap.String("session_id", ev.SessionID),
		zap.String("user_id", ev.UserID),
		zap.String("instrument", ev.Instrument.String()),
		zap.Int("index", ev.Index),
	}
	switch ev.Kind {
	case SessionEventCompleted, SessionEventAbandoned:
		m.retire(ev.SessionID)
	case SessionEventSubmitFailed, SessionEventPersistFailed:
		m.logger.Warn("session event", append(fields, zap.String("kind", string(ev.Kind)), zap.Error(ev.Err))...)
	default:
		m.logger.Debug("session event", append(fields, zap.String("kind", string(ev.Kind)))...)
	}
	if m.cfg.Listener != nil {
		m.cfg.Listener(ev)
	}
}

func (m *SessionManager) retire(sessionID string) {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, sessionID)
	key := sessionKey{userID: sess.UserID(), instrument: sess.Instrument()}
	if m.active[key] == sessionID {
		delete(m.active, key)
	}
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.claimer.Release(ctx, key.userID, key.instrument, sessionID); err != nil {
		m.logger.Warn("failed to release session claim", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (m *SessionManager) unreserve(key sessionKey, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active[key] == sessionID {
		delete(m.active, key)
	}
}

func (m *SessionManager) claimTTL(instrument domain.Instrument) time.Duration {
	if m.cfg.ClaimTTL == nil {
		return m.cfg.IdleTTL
	}
	questions := 20
	if counter, ok := m.bank.(interface {
		Count(domain.Instrument) (int, error)
	}); ok {
		if n, err := counter.Count(instrument); err == nil {
			questions = n
		}
	}
	return m.cfg.ClaimTTL(questions)
}
