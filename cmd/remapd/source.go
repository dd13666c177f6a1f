package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"

	"golang.org/x/sys/unix"

	"remapd/internal/event"
)

// rawEvent mirrors the kernel's struct input_event on 64-bit Linux.
type rawEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// stdinSource decodes input_event records from a reader and groups
// them into batches at EV_SYN boundaries, the way a device emits them.
// It tracks the previous value per channel so downstream edge
// detection works even when earlier values were suppressed upstream.
type stdinSource struct {
	r        io.Reader
	domain   event.Domain
	capacity int
	log      *slog.Logger

	previous map[event.Channel]event.Value
	batches  chan []event.Event
}

func newStdinSource(r io.Reader, capacity int, log *slog.Logger) *stdinSource {
	if capacity <= 0 {
		capacity = 64
	}
	if log == nil {
		log = slog.Default()
	}
	return &stdinSource{
		r:        bufio.NewReader(r),
		domain:   event.NewDomain(),
		capacity: capacity,
		log:      log,
		previous: make(map[event.Channel]event.Value),
		batches:  make(chan []event.Event, 4),
	}
}

func (s *stdinSource) Batches() <-chan []event.Event {
	return s.batches
}

// Start begins decoding. The batch channel closes on EOF or on a
// malformed stream.
func (s *stdinSource) Start() {
	go s.readLoop()
}

func (s *stdinSource) readLoop() {
	defer close(s.batches)

	batch := make([]event.Event, 0, s.capacity)
	for {
		var raw rawEvent
		if err := binary.Read(s.r, binary.LittleEndian, &raw); err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Error("read input stream", "error", err)
			}
			if len(batch) > 0 {
				s.batches <- batch
			}
			return
		}

		// A sync marker closes the batch; the marker itself is not
		// part of the processing stream.
		if raw.Type == uint16(unix.EV_SYN) {
			if len(batch) > 0 {
				s.batches <- batch
				batch = make([]event.Event, 0, s.capacity)
			}
			continue
		}

		// Codes outside the kernel tables are noise, dropped by
		// policy.
		if !event.IsValidCode(event.Type(raw.Type), raw.Code) {
			s.log.Debug("dropping event with invalid code",
				"type", raw.Type, "code", raw.Code)
			continue
		}

		code := event.NewCode(event.Type(raw.Type), raw.Code)
		ev := event.New(code, raw.Value, 0, s.domain, event.NamespaceUser)
		ch := ev.Channel()
		ev.PreviousValue = s.previous[ch]
		s.previous[ch] = ev.Value

		batch = append(batch, ev)
	}
}
