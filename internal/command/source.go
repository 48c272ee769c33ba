package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MaxLineSize bounds a single command line. Longer lines are dropped whole.
const MaxLineSize = 4 * 1024

// Source reads intents from a stream, one command per line. Lines that do not
// parse, or that are longer than MaxLineSize, are logged and skipped.
type Source struct {
	reader *bufio.Reader
	logger zerolog.Logger
	line   int
}

func NewSource(r io.Reader) *Source {
	return &Source{
		reader: bufio.NewReaderSize(r, MaxLineSize),
		logger: log.Logger,
	}
}

// WithLogger sets the logger skipped lines are reported to.
func (s *Source) WithLogger(logger zerolog.Logger) *Source {
	s.logger = logger
	return s
}

// Next returns the next valid intent. It returns io.EOF once the stream is
// exhausted.
func (s *Source) Next() (Intent, error) {
	for {
		line, tooLong, err := s.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("reading commands: %w", err)
		}
		s.line++

		if tooLong {
			s.logger.Warn().
				Int("line", s.line).
				Int("limit", MaxLineSize).
				Msg("ignoring over-long command")
			continue
		}

		intent, err := Parse(line)
		if errors.Is(err, ErrEmpty) {
			continue
		}
		if err != nil {
			s.logger.Warn().
				Err(err).
				Int("line", s.line).
				Msg("ignoring command")
			continue
		}
		return intent, nil
	}
}

// readLine returns the next line without its terminator. A line longer than
// MaxLineSize is consumed up to its end and reported as tooLong.
func (s *Source) readLine() (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, isPrefix, err := s.reader.ReadLine()
		if err != nil {
			return "", false, err
		}
		if !tooLong {
			buf = append(buf, chunk...)
			if len(buf) > MaxLineSize {
				tooLong = true
				buf = nil
			}
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}
