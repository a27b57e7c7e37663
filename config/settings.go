// Package config provides the process-level configuration for the engine
// binary: where indexes are stored and the tunable fan-out caps the
// automaton builder and query executor use.
package config

import "flag"

// EngineConfig holds every flag-configurable knob the cmd/ftscored
// entrypoint exposes. AutomatonCap and CandidateCap are forwarded into
// every query.Builder the HTTP layer constructs.
type EngineConfig struct {
	DataDir      string
	Port         string
	AutomatonCap int
	CandidateCap int
}

// Default returns the engine's out-of-the-box configuration.
func Default() EngineConfig {
	return EngineConfig{
		DataDir:      "./search_data",
		Port:         "8080",
		AutomatonCap: 50,
		CandidateCap: 1000,
	}
}

// ParseFlags populates an EngineConfig from the command line, starting from
// Default() for anything not overridden.
func ParseFlags(args []string) (EngineConfig, error) {
	cfg := Default()
	fs := flag.NewFlagSet("ftscored", flag.ContinueOnError)
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory to store index data")
	fs.StringVar(&cfg.Port, "port", cfg.Port, "port to run the HTTP server on")
	fs.IntVar(&cfg.AutomatonCap, "automaton-cap", cfg.AutomatonCap, "max query-word automatons per search")
	fs.IntVar(&cfg.CandidateCap, "candidate-cap", cfg.CandidateCap, "max dictionary words one automaton may expand into")
	if err := fs.Parse(args); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}
