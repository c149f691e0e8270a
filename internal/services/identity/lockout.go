// File: internal/services/identity/lockout.go
package identity

import (
	"context"

	"github.com/iyunix/go-onyom/internal/domain"
)

const msgLocked = "too many failed sign-in attempts, please try again later"

// recordFailedLogin counts a wrong password and locks the account once the
// limit is reached. Write failures are logged, never surfaced.
func (p *LocalProvider) recordFailedLogin(ctx context.Context, acct *domain.Account) {
	if p.cfg.MaxFailedLogins <= 0 {
		return
	}
	now := p.now()
	acct.FailedLoginAttempts++
	acct.LastFailedLoginAt = &now
	if acct.FailedLoginAttempts >= p.cfg.MaxFailedLogins {
		until := now.Add(p.cfg.LockoutDuration)
		acct.LockedUntil = &until
		p.logger.Warn("account locked after failed sign-ins",
			"user_id", acct.ID,
			"attempts", acct.FailedLoginAttempts,
			"locked_until", until.Format("2006-01-02T15:04:05Z07:00"))
	}
	if err := p.accounts.UpdateLockout(ctx, acct); err != nil {
		p.logger.Error("failed to record failed sign-in", "user_id", acct.ID, "error", err)
	}
}

// clearFailedLogins resets the counters after a successful sign-in.
func (p *LocalProvider) clearFailedLogins(ctx context.Context, acct *domain.Account) {
	if acct.FailedLoginAttempts == 0 && acct.LockedUntil == nil {
		return
	}
	acct.FailedLoginAttempts = 0
	acct.LastFailedLoginAt = nil
	acct.LockedUntil = nil
	if err := p.accounts.UpdateLockout(ctx, acct); err != nil {
		p.logger.Error("failed to clear failed sign-ins", "user_id", acct.ID, "error", err)
	}
}
