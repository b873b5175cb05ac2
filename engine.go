package accountkit

import (
	"github.com/fbinvest/accountkit/credential"
	"github.com/fbinvest/accountkit/token"
)

// Engine defines a public type used by accountkit APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config   Config
	store    AccountStore
	hasher   *credential.Argon2
	tokens   *token.Manager
	notifier ResetNotifier
	limiter  *resetLimiter
	audit    *auditDispatcher
	metrics  *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// VerifyToken parses and validates a session token issued by this engine and
// returns the subject account id and the identity claim embedded at issue
// time. Malformed, tampered, or expired tokens yield [ErrTokenInvalid].
func (e *Engine) VerifyToken(tokenStr string) (string, string, error) {
	if e == nil || e.tokens == nil {
		return "", "", ErrEngineNotReady
	}
	claims, err := e.tokens.Verify(tokenStr)
	if err != nil {
		return "", "", ErrTokenInvalid
	}
	return claims.Subject, claims.Name, nil
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}
