package upstream

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/tonari-app/tonari/internal/core/observability"
)

const BlockedDomainAlert = "Please whitelist all domains that this website uses in your JavaScript blocker."

// Symptoms of a content blocker swallowing a request: the browser reports a
// generic network error, DNS sinkholes fail resolution or refuse connections.
var blockedSymptoms = []string{
	"NetworkError when attempting to fetch resource.",
	"no such host",
	"connection refused",
}

func IsBlockedDomain(err error) bool {
	if err == nil || errors.Is(err, ErrStatus) {
		return false
	}
	msg := err.Error()
	for _, s := range blockedSymptoms {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// BlockedDomainGuard raises the blocked-domain alert at most once.
type BlockedDomainGuard struct {
	fired atomic.Bool
	alert func(string)
}

func NewBlockedDomainGuard(alert func(msg string)) *BlockedDomainGuard {
	return &BlockedDomainGuard{alert: alert}
}

// Check inspects err and returns it unchanged.
func (g *BlockedDomainGuard) Check(err error) error {
	if g == nil || !IsBlockedDomain(err) {
		return err
	}
	if g.fired.CompareAndSwap(false, true) {
		observability.IncBlockedDomainAlert()
		if g.alert != nil {
			g.alert(BlockedDomainAlert)
		}
	}
	return err
}

func (g *BlockedDomainGuard) Fired() bool { return g != nil && g.fired.Load() }
