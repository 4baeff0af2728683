package main

import (
	"context"

	"cdm-mapper/internal/engine"
	"cdm-mapper/internal/frame"
)

// multiSink writes every table to each sink in order.
type multiSink []engine.Sink

func (m multiSink) Write(ctx context.Context, table string, f *frame.Frame) error {
	for _, s := range m {
		if err := s.Write(ctx, table, f); err != nil {
			return err
		}
	}

	return nil
}
