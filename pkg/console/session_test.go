package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func directExec(td *testDevice) Executor {
	return ExecFunc(func(ctx context.Context, argv []string, out io.Writer) (Status, error) {
		td.Device.Out = out
		return Commands.Dispatch(td.Device, argv), nil
	})
}

func TestSessionModes(t *testing.T) {
	td := newTestDevice()
	var out bytes.Buffer
	s := NewSession(directExec(td), &out)
	input := strings.Join([]string{"", "v", "", "zz", `dd "3`, "q", "x", "fd", "r", "v"}, "\n") + "\n"
	status, err := s.Run(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, StatusReset, status)
	require.Equal(t, byte(1), td.params.FullDuplex)

	banner := DefaultBanner + "\r\n> "
	expected := banner +
		"plipbox 0.6 test\r\nOK\r\n> " +
		"> " +
		"PARSE ERROR\r\n> " +
		"PARSE ERROR\r\n> " +
		"QUIT\r\n" +
		banner +
		"OK\r\n> " +
		"RESET\r\n"
	require.Equal(t, expected, out.String())
}

func TestSessionEOF(t *testing.T) {
	td := newTestDevice()
	var out bytes.Buffer
	s := NewSession(directExec(td), &out)
	status, err := s.Run(context.Background(), strings.NewReader("\nfc"))
	require.NoError(t, err)
	require.Equal(t, StatusQuit, status)
	require.Equal(t, byte(0), td.params.FlowCtl)
}

func TestSessionCancel(t *testing.T) {
	td := newTestDevice()
	r, w := io.Pipe()
	defer w.Close()
	s := NewSession(directExec(td), io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := s.Run(ctx, r)
		errCh <- err
	}()
	cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("session not stopped")
	}
}

func TestSessionServe(t *testing.T) {
	td := newTestDevice()
	var out bytes.Buffer
	s := NewSession(directExec(td), &out)
	fd := td.params.FullDuplex
	require.NoError(t, s.Serve(context.Background(), strings.NewReader("\nr\nfd\nfd\n")))
	require.Equal(t, fd^1, td.params.FullDuplex)
	banner := DefaultBanner + "\r\n> "
	require.Equal(t, banner+"RESET\r\n"+banner+"OK\r\n> ", out.String())
}

func TestSessionStatusPrintedOnce(t *testing.T) {
	td := newTestDevice()
	var out bytes.Buffer
	s := NewSession(directExec(td), &out)
	status, err := s.Run(context.Background(), strings.NewReader("\nq\n\nr\n"))
	require.NoError(t, err)
	require.Equal(t, StatusReset, status)
	require.Equal(t, 1, strings.Count(out.String(), "QUIT"))
	require.Equal(t, 1, strings.Count(out.String(), "RESET"))
	banner := DefaultBanner + "\r\n> "
	require.Equal(t, banner+"QUIT\r\n"+banner+"RESET\r\n", out.String())
}
