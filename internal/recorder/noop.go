package recorder

import "CandleDash/internal/model"

// NoopRecorder is a no-op implementation used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) SaveBars(_, _ string, _ []model.OHLCV) error { return nil }
func (n *NoopRecorder) LoadBars(_, _ string) ([]model.OHLCV, error) { return nil, nil }
func (n *NoopRecorder) RecordRefresh(_ *RefreshEvent) error         { return nil }
func (n *NoopRecorder) Close() error                                { return nil }
