package sync

import "fmt"

const (
	PhasePull = "pull"
	PhasePush = "push"
)

// SyncError reports which phase of a sync session failed. A pull-phase
// failure leaves the store untouched; a push-phase failure leaves pulled
// changes applied but dirty flags and watermark intact.
type SyncError struct {
	Phase string
	Err   error
}

func (err *SyncError) Error() string {
	return fmt.Sprintf("sync %s phase: %v", err.Phase, err.Err)
}

func (err *SyncError) Unwrap() error {
	return err.Err
}
