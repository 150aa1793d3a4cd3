package recorder

import "Groupool/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordTransaction(_ model.Transaction) error { return nil }
func (n *NoopRecorder) RecordOutcome(_ *Outcome) error              { return nil }
func (n *NoopRecorder) Close() error                                { return nil }
