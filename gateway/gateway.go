// Package gateway declares the capability interface through which the
// core applies real-world effects on the host platform.
package gateway

import (
	"context"
	"time"

	"mod-ledger/model"
)

// ActionGateway applies and removes the platform-side effect of a
// restriction. Implementations live at the platform integration layer;
// the registry and scheduler only see this interface.
type ActionGateway interface {
	ApplyRestriction(ctx context.Context, subjectID string, t model.RestrictionType, guildID string, duration time.Duration) error
	RemoveRestriction(ctx context.Context, subjectID string, t model.RestrictionType, guildID string) error
}
