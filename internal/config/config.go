package config

import (
	"time"

	"github.com/caarlos0/env/v10"

	"career-assess/internal/domain"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort           string        `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL        string        `env:"DATABASE_URL,required,notEmpty"`
	DBMaxConns         int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns         int32         `env:"DB_MIN_CONNS" envDefault:"1"`
	RedisAddr          string        `env:"REDIS_ADDR"`
	RedisPassword      string        `env:"REDIS_PASSWORD"`
	RedisDB            int           `env:"REDIS_DB" envDefault:"0"`
	JWTSecret          string        `env:"JWT_SECRET"`
	JWTIssuer          string        `env:"JWT_ISSUER" envDefault:"career-portal"`
	QuestionSeconds    int           `env:"QUESTION_SECONDS" envDefault:"15"`
	TickInterval       time.Duration `env:"TICK_INTERVAL" envDefault:"1s"`
	MBTIQuestions      int           `env:"MBTI_QUESTIONS" envDefault:"20"`
	KraepelinQuestions int           `env:"KRAEPELIN_QUESTIONS" envDefault:"20"`
	PAPIQuestions      int           `env:"PAPI_QUESTIONS" envDefault:"20"`
	SessionIdleTTL     time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	PersistRetryDelay  time.Duration `env:"PERSIST_RETRY_DELAY" envDefault:"200ms"`
	PersistTimeout     time.Duration `env:"PERSIST_TIMEOUT" envDefault:"5s"`
	AutoMigrate        bool          `env:"AUTO_MIGRATE" envDefault:"true"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// QuestionCounts devuelve el largo de seleccion por instrumento.
func (c *Config) QuestionCounts() map[domain.Instrument]int {
	return map[domain.Instrument]int{
		domain.InstrumentMBTI:      c.MBTIQuestions,
		domain.InstrumentKraepelin: c.KraepelinQuestions,
		domain.InstrumentPAPI:      c.PAPIQuestions,
	}
}

// SessionTTL estima cuanto puede durar una sesion completa; se usa para el claim en Redis.
func (c *Config) SessionTTL(questions int) time.Duration {
	tick := c.TickInterval
	if tick <= 0 {
		tick = time.Second
	}
	return time.Duration(questions*c.QuestionSeconds)*tick + c.SessionIdleTTL
}
