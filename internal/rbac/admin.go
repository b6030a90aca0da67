package rbac

import (
	"context"
	"fmt"
	"time"

	"github.com/gradebook/gradebook/internal/shared"
)

// AdminLockTTL bounds how long an admin mutation may hold the lock.
const AdminLockTTL = 10 * time.Second

// AdminCounter reports how many administrators exist.
type AdminCounter interface {
	CountAdmins(ctx context.Context) (int, error)
}

// AdminGuard enforces that at most one ADMIN principal exists. Mutations
// that would create or promote an administrator run through Guard.
type AdminGuard struct {
	counter AdminCounter
	locker  shared.Locker
}

// NewAdminGuard constructs an AdminGuard. A nil locker falls back to an
// in-process lock.
func NewAdminGuard(counter AdminCounter, locker shared.Locker) *AdminGuard {
	if locker == nil {
		locker = shared.NewLocalLocker()
	}
	return &AdminGuard{counter: counter, locker: locker}
}

// Guard runs fn. When role is ADMIN, fn runs under the admin lock and only
// after confirming no administrator exists yet; otherwise ErrDuplicateAdmin
// is returned and fn is not called.
func (g *AdminGuard) Guard(ctx context.Context, role shared.Role, fn func(ctx context.Context) error) error {
	if role != shared.RoleAdmin {
		return fn(ctx)
	}
	release, err := g.locker.Acquire(ctx, shared.AdminRoleLockKey, AdminLockTTL)
	if err != nil {
		return fmt.Errorf("rbac: acquire admin lock: %w", err)
	}
	defer release()

	n, err := g.counter.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("rbac: count admins: %w", err)
	}
	if n > 0 {
		return ErrDuplicateAdmin
	}
	return fn(ctx)
}
