package interfaces

import "github.com/m-mizutani/armtoolchain/pkg/domain/model"

// ProgressReporter observes transfers. Implementations must not fail the transfer.
type ProgressReporter interface {
	// Begin is called once the response headers are received. expected is 0 when unknown.
	Begin(name string, expected int64)
	// Advance is called after every chunk written to disk
	Advance(p model.Progress)
	// End is called when the transfer stops, with the error that stopped it if any
	End(name string, err error)
	// Skip is called instead of Begin when no transfer is needed
	Skip(name, reason string)
}
