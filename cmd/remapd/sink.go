package main

import (
	"bufio"
	"fmt"
	"io"

	"remapd/internal/event"
)

// stdoutSink prints emitted events one per line. It stands in for the
// virtual output device writer, which lives outside this program.
type stdoutSink struct {
	w *bufio.Writer
}

func newStdoutSink(w io.Writer) *stdoutSink {
	return &stdoutSink{w: bufio.NewWriter(w)}
}

func (s *stdoutSink) Write(events []event.Event) error {
	for _, ev := range events {
		if _, err := fmt.Fprintln(s.w, ev); err != nil {
			return err
		}
	}
	return s.w.Flush()
}
