package console

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/plipbox.go/pkg/framework"
)

type recordedCmd struct {
	argv   []string
	status Status
}

type fakeRecorder struct {
	lock    sync.Mutex
	records []recordedCmd
}

func (r *fakeRecorder) Record(argv []string, status Status) {
	r.lock.Lock()
	r.records = append(r.records, recordedCmd{argv: argv, status: status})
	r.lock.Unlock()
}

func runOwner(t *testing.T, o *Owner) func() {
	loop := fx.NewLoop()
	loop.Add(o)
	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan error, 1)
	go func() { doneCh <- loop.Run(ctx) }()
	return func() {
		cancel()
		select {
		case err := <-doneCh:
			require.Equal(t, context.Canceled, err)
		case <-time.After(time.Second):
			t.Fatal("loop not stopped")
		}
	}
}

func TestOwnerExec(t *testing.T) {
	td := newTestDevice()
	rec := &fakeRecorder{}
	o := NewOwner(td.Device)
	o.Recorder = rec
	defer runOwner(t, o)()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var out bytes.Buffer
	status, err := o.Exec(ctx, []string{"v"}, &out)
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	require.Equal(t, "plipbox 0.6 test\r\n", out.String())
	require.Empty(t, td.out.String())

	status, err = o.Exec(ctx, []string{"tl", "1500"}, nil)
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	require.Equal(t, uint16(1500), td.params.TestPLen)

	status, err = o.Exec(ctx, []string{"zz"}, nil)
	require.NoError(t, err)
	require.Equal(t, StatusParseError, status)

	rec.lock.Lock()
	defer rec.lock.Unlock()
	require.Equal(t, []recordedCmd{
		{argv: []string{"v"}, status: StatusOK},
		{argv: []string{"tl", "1500"}, status: StatusOK},
		{argv: []string{"zz"}, status: StatusParseError},
	}, rec.records)
}

func TestOwnerSerializes(t *testing.T) {
	td := newTestDevice()
	o := NewOwner(td.Device)
	defer runOwner(t, o)()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var wg sync.WaitGroup
	for n := 0; n < 20; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := o.Exec(ctx, []string{"fd"}, nil)
			require.NoError(t, err)
			require.Equal(t, StatusOK, status)
		}()
	}
	wg.Wait()
	require.Equal(t, byte(0), td.params.FullDuplex)
}

func TestOwnerReset(t *testing.T) {
	td := newTestDevice()
	o := NewOwner(td.Device)
	resetCh := make(chan struct{}, 1)
	o.OnReset = func() { resetCh <- struct{}{} }
	defer runOwner(t, o)()

	status, err := o.Exec(context.Background(), []string{"r"}, nil)
	require.NoError(t, err)
	require.Equal(t, StatusReset, status)
	select {
	case <-resetCh:
	case <-time.After(time.Second):
		t.Fatal("reset not reported")
	}
}

func TestOwnerNotRunning(t *testing.T) {
	o := NewOwner(newTestDevice().Device)
	_, err := o.Exec(context.Background(), []string{"v"}, nil)
	require.Equal(t, ErrNotRunning, err)
}
