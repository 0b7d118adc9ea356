package questionbank

import (
	"embed"
	"fmt"
	"io/fs"
	"math/rand/v2"

	"gopkg.in/yaml.v3"

	"career-assess/internal/domain"
)

//go:embed data/*.yaml
var poolFiles embed.FS

type poolFile struct {
	Instrument string            `yaml:"instrument"`
	Select     int               `yaml:"select"`
	Questions  []domain.Question `yaml:"questions"`
}

// LoadDefault builds a Bank from the embedded pools. selectCounts overrides the
// per-instrument selection length when a positive value is given.
func LoadDefault(selectCounts map[domain.Instrument]int, opts ...Option) (*Bank, error) {
	pools, err := ParsePools(poolFiles, "data/*.yaml")
	if err != nil {
		return nil, err
	}
	for i := range pools {
		if n := selectCounts[pools[i].Instrument]; n > 0 {
			pools[i].SelectCount = n
		}
	}
	return New(pools, opts...)
}

// ParsePools reads every YAML pool matching pattern from fsys.
func ParsePools(fsys fs.FS, pattern string) ([]Pool, error) {
	names, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob pools: %w", err)
	}
	var pools []Pool
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		p, err := ParsePool(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pools = append(pools, p)
	}
	return pools, nil
}

// ParsePool decodes one YAML pool document.
func ParsePool(raw []byte) (Pool, error) {
	var file poolFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Pool{}, fmt.Errorf("%w: %v", ErrInvalidPool, err)
	}
	inst, err := domain.ParseInstrument(file.Instrument)
	if err != nil {
		return Pool{}, err
	}
	return Pool{
		Instrument:  inst,
		SelectCount: file.Select,
		Questions:   file.Questions,
		Stratified:  inst == domain.InstrumentKraepelin || inst == domain.InstrumentMBTI,
	}, nil
}

// NewSeededRand returns a deterministic source for WithRand.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
