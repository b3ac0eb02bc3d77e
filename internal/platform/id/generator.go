package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	StrategyRandom        = "random"
	StrategyDeterministic = "deterministic"
)

// Generator creates opaque IDs suitable for external references.
// Scope and key describe the entity being minted; implementations may
// ignore them.
type Generator interface {
	NewID(scope, key string) (string, error)
}

// NewGenerator selects a generator by strategy name. An empty strategy
// means random.
func NewGenerator(strategy string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", StrategyRandom:
		return &RandomGenerator{}, nil
	case StrategyDeterministic:
		return &DeterministicGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q", strategy)
	}
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID(_, _ string) (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate random uuid: %w", err)
	}

	return u.String(), nil
}

// DeterministicGenerator derives the same ID for the same scope and key
// on every run, so repeated link runs keep stable identifiers.
type DeterministicGenerator struct{}

func NewDeterministicGenerator() *DeterministicGenerator {
	return &DeterministicGenerator{}
}

var deterministicNamespace = uuid.MustParse("9a7b1f52-30cf-4c45-a1f8-5d2c6e8b94e3")

func (g *DeterministicGenerator) NewID(scope, key string) (string, error) {
	if scope == "" || key == "" {
		return "", fmt.Errorf("deterministic id needs scope and key, got scope=%q key=%q", scope, key)
	}

	return uuid.NewSHA1(deterministicNamespace, []byte(scope+":"+key)).String(), nil
}
