package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/golang/glog"
)

// Session is the line based console of the device, e.g. on a serial port.
//
// It starts idle, any entered line switches to command mode. In command mode
// each line is executed and its status printed. QUIT returns to idle, RESET
// ends the session.
type Session struct {
	Exec   Executor
	Out    io.Writer
	Banner string
	Prompt string
}

// DefaultBanner is printed when entering command mode.
const DefaultBanner = "*** plipbox command mode, '?' for help"

// NewSession creates a Session with default banner and prompt.
func NewSession(exec Executor, out io.Writer) *Session {
	return &Session{
		Exec:   exec,
		Out:    out,
		Banner: DefaultBanner,
		Prompt: "> ",
	}
}

type lineResult struct {
	line string
	err  error
}

// Run serves lines from r until the input ends, ctx is done or a command
// answers RESET. It returns StatusReset in the latter case, StatusQuit when
// the input ends.
func (s *Session) Run(ctx context.Context, r io.Reader) (Status, error) {
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	lineCh := make(chan lineResult)
	go readLines(subCtx, r, lineCh)
	return s.serve(ctx, lineCh)
}

// Serve keeps serving sessions on r until the input ends or ctx is done.
// After RESET a new idle session starts on the same input.
func (s *Session) Serve(ctx context.Context, r io.Reader) error {
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	lineCh := make(chan lineResult)
	go readLines(subCtx, r, lineCh)
	for {
		status, err := s.serve(ctx, lineCh)
		if err != nil || status.Kind != KindReset {
			return err
		}
		glog.V(1).Info("console session restarted")
	}
}

func (s *Session) serve(ctx context.Context, lineCh <-chan lineResult) (Status, error) {
	commandMode := false
	for {
		var res lineResult
		select {
		case <-ctx.Done():
			return StatusQuit, ctx.Err()
		case res = <-lineCh:
		}
		if res.err != nil {
			if res.err == io.EOF {
				return StatusQuit, nil
			}
			return StatusQuit, res.err
		}
		if !commandMode {
			commandMode = true
			glog.V(1).Info("enter command mode")
			s.printf("%s\r\n%s", s.Banner, s.Prompt)
			continue
		}
		status, err := s.execLine(ctx, res.line)
		if err != nil {
			return StatusQuit, err
		}
		switch status.Kind {
		case KindQuit:
			commandMode = false
			glog.V(1).Info("leave command mode")
			continue
		case KindReset:
			return status, nil
		}
		s.printf("%s", s.Prompt)
	}
}

func (s *Session) execLine(ctx context.Context, line string) (Status, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return StatusOK, nil
	}
	argv, err := Tokenize(line)
	if err != nil || len(argv) == 0 {
		s.printf("%s\r\n", StatusParseError)
		return StatusParseError, nil
	}
	status, err := s.Exec.Exec(ctx, argv, s.Out)
	if err != nil {
		return status, err
	}
	s.printf("%s\r\n", status)
	return status, nil
}

func (s *Session) printf(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(s.Out, format, args...); err != nil {
		glog.Warningf("console write: %v", err)
	}
}

func readLines(ctx context.Context, r io.Reader, lineCh chan<- lineResult) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case lineCh <- lineResult{line: scanner.Text()}:
		case <-ctx.Done():
			return
		}
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	select {
	case lineCh <- lineResult{err: err}:
	case <-ctx.Done():
	}
}
