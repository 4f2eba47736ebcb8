package app

import (
	"context"
	"fmt"

	"github.com/dkeye/QChat/internal/core"
	"github.com/dkeye/QChat/internal/domain"
)

// Gate enforces room membership before a mutating command proceeds.
// The membership predicate is consulted on every call; nothing is
// cached between calls.
type Gate struct {
	oracle core.MembershipOracle
}

func NewGate(oracle core.MembershipOracle) *Gate {
	return &Gate{oracle: oracle}
}

// Authorize returns domain.ErrNotAuthorized when uid is not a current
// member of roomID. Oracle failures propagate wrapped.
func (g *Gate) Authorize(ctx context.Context, roomID domain.RoomID, uid domain.UserID) error {
	ok, err := g.oracle.IsMember(ctx, roomID, uid)
	if err != nil {
		return fmt.Errorf("membership check: %w", err)
	}
	if !ok {
		return domain.ErrNotAuthorized
	}
	return nil
}
