package authkit

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/hyunsoolee0506/authkit/audit"
	"github.com/hyunsoolee0506/authkit/kv"
	"github.com/hyunsoolee0506/authkit/password"
	"github.com/hyunsoolee0506/authkit/token"
)

// Deps are the runtime collaborators the host application supplies.
type Deps struct {
	// Redis backs the credential store. Required.
	Redis redis.UniversalClient
	// Users is the host's account storage. Required.
	Users UserProvider
	// AuditSink receives lifecycle events. Optional; nil with auditing
	// enabled falls back to a no-op sink.
	AuditSink audit.Sink
	// Registry receives the Prometheus collectors. Optional; nil disables
	// metrics.
	Registry prometheus.Registerer
}

// Auth is the assembled authentication core. Exactly one of Service or
// Sessions is non-nil, matching the configured strategy.
type Auth struct {
	strategy Strategy
	service  *Service
	sessions *SessionService
	audit    *audit.Dispatcher
	metrics  *Metrics
}

// New wires the package from a validated Config. The strategy choice is
// final for the lifetime of the returned Auth.
func New(cfg Config, deps Deps) (*Auth, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Redis == nil {
		return nil, errors.New("redis client required")
	}
	if deps.Users == nil {
		return nil, errors.New("user provider required")
	}

	hasher, err := password.NewBcrypt(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	store := kv.NewRedisStore(deps.Redis, cfg.RedisPrefix)
	dispatcher := audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, deps.AuditSink)
	metrics := NewMetrics(deps.Registry)

	a := &Auth{audit: dispatcher, metrics: metrics}

	switch cfg.Strategy {
	case StrategyToken:
		key, err := cfg.secretBytes()
		if err != nil {
			return nil, err
		}
		codec, err := token.NewCodec(key, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			return nil, err
		}
		a.strategy = NewTokenStrategy(codec, cfg.AccessCookie)
		a.service = &Service{
			codec:   codec,
			refresh: kv.NewRefreshStore(store),
			users:   deps.Users,
			hasher:  hasher,
			audit:   dispatcher,
			metrics: metrics,
		}
	case StrategySession:
		sessions := kv.NewSessionStore(store)
		a.strategy = NewSessionStrategy(sessions, cfg.SessionCookie)
		a.sessions = &SessionService{
			sessions: sessions,
			users:    deps.Users,
			hasher:   hasher,
			ttl:      cfg.SessionTTL,
			audit:    dispatcher,
			metrics:  metrics,
		}
	default:
		return nil, fmt.Errorf("unknown strategy %q", cfg.Strategy)
	}

	return a, nil
}

// Strategy returns the per-request authenticator for the gate.
func (a *Auth) Strategy() Strategy { return a.strategy }

// Service returns the token lifecycle service, or nil under the session
// strategy.
func (a *Auth) Service() *Service { return a.service }

// Sessions returns the session lifecycle service, or nil under the token
// strategy.
func (a *Auth) Sessions() *SessionService { return a.sessions }

// Metrics returns the collector set, or nil when metrics are disabled.
func (a *Auth) Metrics() *Metrics { return a.metrics }

// Close drains the audit dispatcher. Call once on shutdown.
func (a *Auth) Close() {
	a.audit.Close()
}
