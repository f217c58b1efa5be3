package app

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/pao-metrics/internal/datasource"
	"github.com/spec-kit/pao-metrics/internal/navigation"
	"github.com/spec-kit/pao-metrics/internal/plan"
	"github.com/spec-kit/pao-metrics/internal/session"
)

// RegistryConfig holds what every shell shares.
type RegistryConfig struct {
	Demo bool
	// AuthFor binds the auth provider to one client. Unused in demo mode.
	AuthFor     func(clientID string) session.AuthProvider
	Profiles    session.ProfileStore
	Writer      ProfileWriter
	Store       datasource.Store
	Mock        datasource.Dataset
	Gate        *navigation.Gate
	Generator   plan.Generator
	DemoTimeout time.Duration
	Logger      *zap.Logger
}

// Registry owns one shell per browser client.
type Registry struct {
	cfg    RegistryConfig
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	shells map[string]*Shell
	closed bool
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{cfg: cfg, logger: logger, now: time.Now, shells: make(map[string]*Shell)}
}

// Get returns the client's shell, starting one on first use.
func (r *Registry) Get(clientID string) (*Shell, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRegistryClosed
	}
	if shell, ok := r.shells[clientID]; ok {
		shell.Touch(r.now())
		return shell, nil
	}

	shellCfg := ShellConfig{
		ClientID:    clientID,
		Demo:        r.cfg.Demo,
		Profiles:    r.cfg.Profiles,
		Writer:      r.cfg.Writer,
		Store:       r.cfg.Store,
		Mock:        r.cfg.Mock,
		Gate:        r.cfg.Gate,
		Generator:   r.cfg.Generator,
		DemoTimeout: r.cfg.DemoTimeout,
		Logger:      r.logger,
	}
	if !r.cfg.Demo && r.cfg.AuthFor != nil {
		shellCfg.Auth = r.cfg.AuthFor(clientID)
	}
	shell := NewShell(shellCfg)
	if err := shell.Start(); err != nil {
		return nil, err
	}
	shell.Touch(r.now())
	r.shells[clientID] = shell
	r.logger.Debug("shell started", zap.String("client_id", clientID), zap.Bool("demo", r.cfg.Demo))
	return shell, nil
}

// Len returns the number of live shells.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shells)
}

// EvictIdle closes shells that have not been touched within ttl and returns how many it closed.
func (r *Registry) EvictIdle(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	var idle []*Shell
	for id, shell := range r.shells {
		if shell.LastSeen().Before(cutoff) {
			idle = append(idle, shell)
			delete(r.shells, id)
		}
	}
	r.mu.Unlock()

	for _, shell := range idle {
		shell.Close()
	}
	return len(idle)
}

// Close tears down every shell. Get fails afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	shells := r.shells
	r.shells = make(map[string]*Shell)
	r.mu.Unlock()

	for _, shell := range shells {
		shell.Close()
	}
}
