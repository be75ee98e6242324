package main

import (
	"errors"
	"fmt"
	"math/rand/v2"

	audiograph "github.com/tphakala/go-audio-graph"
	"github.com/tphakala/go-audio-graph/internal/audiofile"
)

// source is the stream to play and everything that must be closed with it.
type source struct {
	reader  *audiograph.Reader
	closers []*audiograph.Reader
}

// openSource opens paths. More than one file is combined into a multi-file
// reader in mode; seed 0 picks a random order source.
func openSource(paths []string, modeName string, seed uint64) (*source, error) {
	if len(paths) == 0 {
		return nil, audiofile.ErrNoFiles
	}

	readers := make([]*audiograph.Reader, 0, len(paths))
	s := &source{}
	for _, p := range paths {
		r, err := audiograph.OpenFile(p)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		readers = append(readers, r)
		s.closers = append(s.closers, r)
	}
	if len(readers) == 1 {
		s.reader = readers[0]
		return s, nil
	}

	mode, err := audiofile.ParseMode(modeName)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	var opts []audiofile.MultiOption
	if seed != 0 {
		opts = append(opts, audiofile.WithRand(rand.New(rand.NewPCG(seed, seed))))
	}

	var m *audiofile.Multi
	if mode == audiofile.Queue {
		m, err = queueAll(readers, opts)
	} else {
		m, err = audiofile.NewMulti(mode, readers, opts...)
	}
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("combine %d files: %w", len(readers), err)
	}
	s.reader = m.Reader()
	// The multi reader goes first so its leases are released before the
	// files close.
	s.closers = append([]*audiograph.Reader{s.reader}, s.closers...)
	return s, nil
}

// queueAll enqueues every reader on a queue of the first reader's format.
func queueAll(readers []*audiograph.Reader, opts []audiofile.MultiOption) (*audiofile.Multi, error) {
	opts = append(opts, audiofile.WithQueueCapacity(len(readers)))
	m, err := audiofile.NewQueue(readers[0].NumChannels(), readers[0].SampleRate(), opts...)
	if err != nil {
		return nil, err
	}
	for _, r := range readers {
		if err := m.Enqueue(r); err != nil {
			_ = m.Reader().Close()
			return nil, err
		}
	}
	return m, nil
}

// Close closes the stream and every file behind it.
func (s *source) Close() error {
	var errs []error
	for _, r := range s.closers {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}
