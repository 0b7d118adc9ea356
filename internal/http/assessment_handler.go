package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"career-assess/internal/domain"
	"career-assess/internal/scoring"
	"career-assess/internal/service"
)

// InstrumentCatalog informa el largo de la seleccion de cada instrumento.
type InstrumentCatalog interface {
	Count(instrument domain.Instrument) (int, error)
}

// AssessmentHandler mantiene dependencias para los endpoints de evaluaciones.
type AssessmentHandler struct {
	logger   *zap.Logger
	sessions *service.SessionManager
	results  *service.ResultService
	catalog  InstrumentCatalog
}

// NewAssessmentHandler crea una instancia de AssessmentHandler con dependencias necesarias.
func NewAssessmentHandler(logger *zap.Logger, sessions *service.SessionManager, results *service.ResultService, catalog InstrumentCatalog) *AssessmentHandler {
	return &AssessmentHandler{
		logger:   logger,
		sessions: sessions,
		results:  results,
		catalog:  catalog,
	}
}

type instrumentStatus struct {
	ID          domain.Instrument `json:"id"`
	Name        string            `json:"name"`
	Questions   int               `json:"questions"`
	Completed   bool              `json:"completed"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// ListInstruments maneja GET /assessments.
func (h *AssessmentHandler) ListInstruments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	results, err := h.results.ListResults(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list results failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list assessments"})
		return
	}
	done := make(map[domain.Instrument]domain.Result, len(results))
	for _, r := range results {
		done[r.Instrument] = r
	}

	out := make([]instrumentStatus, 0, len(domain.Instruments()))
	for _, inst := range domain.Instruments() {
		status := instrumentStatus{ID: inst, Name: inst.DisplayName()}
		if h.catalog != nil {
			if n, err := h.catalog.Count(inst); err == nil {
				status.Questions = n
			}
		}
		if r, ok := done[inst]; ok {
			status.Completed = true
			completedAt := r.CompletedAt.UTC()
			status.CompletedAt = &completedAt
		}
		out = append(out, status)
	}
	c.JSON(http.StatusOK, gin.H{"instruments": out})
}

// StartSession maneja POST /assessments/instruments/:instrument/sessions.
func (h *AssessmentHandler) StartSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	instrument, err := domain.ParseInstrument(c.Param("instrument"))
	if err != nil {
		h.writeError(c, err, "start session")
		return
	}

	sess, err := h.sessions.Start(c.Request.Context(), userID, instrument)
	if err != nil {
		h.writeError(c, err, "start session")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": sess.Snapshot()})
}

// GetSession maneja GET /assessments/sessions/:id.
func (h *AssessmentHandler) GetSession(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.Snapshot()})
}

// Answer maneja PUT /assessments/sessions/:id/answers.
func (h *AssessmentHandler) Answer(c *gin.Context) {
	var req struct {
		QuestionID string `json:"question_id" binding:"required"`
		Option     *int   `json:"option" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid answer request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := sess.AnswerOption(req.QuestionID, *req.Option); err != nil {
		h.writeError(c, err, "answer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.Snapshot()})
}

// Next maneja POST /assessments/sessions/:id/next. En la ultima pregunta califica.
func (h *AssessmentHandler) Next(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := sess.Next(c.Request.Context()); err != nil {
		h.writeSubmitError(c, sess, err, "next")
		return
	}
	if result, done := sess.Result(); done {
		c.JSON(http.StatusCreated, gin.H{"session": sess.Snapshot(), "result": result})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.Snapshot()})
}

// Previous maneja POST /assessments/sessions/:id/previous.
func (h *AssessmentHandler) Previous(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := sess.Previous(); err != nil {
		h.writeError(c, err, "previous")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.Snapshot()})
}

// Submit maneja POST /assessments/sessions/:id/submit.
func (h *AssessmentHandler) Submit(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	result, err := sess.Submit(c.Request.Context())
	if err != nil {
		h.writeSubmitError(c, sess, err, "submit")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"result": result})
}

// RetryPersist maneja POST /assessments/sessions/:id/persist.
func (h *AssessmentHandler) RetryPersist(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	id, err := sess.RetryPersist(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "retry persist")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"result_id": id})
}

// Abandon maneja DELETE /assessments/sessions/:id.
func (h *AssessmentHandler) Abandon(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := sess.Abandon(); err != nil {
		h.writeError(c, err, "abandon")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "abandoned"})
}

// GetResult maneja GET /assessments/instruments/:instrument/result.
func (h *AssessmentHandler) GetResult(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	instrument, err := domain.ParseInstrument(c.Param("instrument"))
	if err != nil {
		h.writeError(c, err, "get result")
		return
	}
	result, err := h.results.GetResult(c.Request.Context(), userID, instrument)
	if err != nil {
		h.writeError(c, err, "get result")
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// ListResults maneja GET /assessments/results.
func (h *AssessmentHandler) ListResults(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	results, err := h.results.ListResults(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err, "list results")
		return
	}
	if results == nil {
		results = []domain.Result{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetProfile maneja GET /assessments/profile.
func (h *AssessmentHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	profile, err := h.results.Profile(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err, "get profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// ResyncProfile maneja POST /assessments/profile/resync.
func (h *AssessmentHandler) ResyncProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	synced, err := h.results.ResyncProfile(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("profile resync failed", zap.String("user_id", userID), zap.Int("synced", synced), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "profile resync incomplete", "synced": synced})
		return
	}
	c.JSON(http.StatusOK, gin.H{"synced": synced})
}

func (h *AssessmentHandler) lookup(c *gin.Context) (*service.AssessmentSession, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}
	sess, err := h.sessions.Get(userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err, "lookup session")
		return nil, false
	}
	return sess, true
}

// writeSubmitError agrega el estado de la sesion para que el cliente pueda continuar.
func (h *AssessmentHandler) writeSubmitError(c *gin.Context, sess *service.AssessmentSession, err error, op string) {
	switch {
	case errors.Is(err, scoring.ErrIncompleteAnswers):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "incomplete answers", "session": sess.Snapshot()})
	case errors.Is(err, service.ErrPersistence):
		h.logger.Error(op+" persistence failed", zap.String("session_id", sess.ID()), zap.Error(err))
		result, _ := sess.Result()
		c.JSON(http.StatusBadGateway, gin.H{"error": "result not stored, retry persistence", "result": result, "session": sess.Snapshot()})
	default:
		h.writeError(c, err, op)
	}
}

func (h *AssessmentHandler) writeError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrUnknownInstrument):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown instrument"})
	case errors.Is(err, domain.ErrInvalidAnswer):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyAttempted):
		c.JSON(http.StatusConflict, gin.H{"error": "instrument already completed"})
	case errors.Is(err, service.ErrResultConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "result already stored"})
	case errors.Is(err, service.ErrSessionInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "session already in progress"})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, scoring.ErrIncompleteAnswers):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "incomplete answers"})
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, service.ErrResultNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
	case errors.Is(err, service.ErrPersistence):
		h.logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "persistence unavailable"})
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
