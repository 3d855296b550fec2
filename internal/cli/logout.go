package cli

import (
	"context"
	"fmt"

	"github.com/terraincognita07/selene/internal/auth"
	"github.com/terraincognita07/selene/internal/db"
	"github.com/terraincognita07/selene/internal/sync"
	"go.uber.org/zap"
)

// RunLogoutCommand pushes what it still can, then wipes the records
// together with the watermark and drops the stored session. The wipe
// happens even when the final sync fails; the account switch flow
// accepts losing unpushed changes.
func RunLogoutCommand(ctx context.Context, engine sync.SyncRunner, logs *db.LogStore, sessions *auth.Store, log *zap.SugaredLogger) error {
	if _, err := engine.Sync(ctx); err != nil {
		log.Warnw("final sync before logout failed, unpushed changes will be lost", "error", err)
	}

	if err := logs.ResetAll(); err != nil {
		return fmt.Errorf("reset local store: %w", err)
	}
	if err := sessions.SignOut(); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}
