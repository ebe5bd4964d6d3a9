package comm

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/plipbox.go/pkg/console"
	fx "github.com/robotalks/plipbox.go/pkg/framework"
	"github.com/robotalks/plipbox.go/pkg/remote"
	"github.com/robotalks/plipbox.go/pkg/remote/msgs"
)

// SendQueueSize is the number of outgoing frames a Registrar buffers.
const SendQueueSize = 16

// ErrSendQueueFull indicates the peer doesn't keep up with outgoing frames.
var ErrSendQueueFull = errors.New("send queue full")

// Registrar implements remote.Registrar with Pipe and integrated with Loop.
// Received commands are posted to the loop as console requests and
// answered with replies once executed. Outgoing frames are written by a
// separate sender so a slow peer never blocks the loop.
type Registrar struct {
	pipe   Pipe
	sendCh chan msgs.Frame
}

// NewRegistrar creates a Registrar on rw.
func NewRegistrar(rw PacketReadWriter) *Registrar {
	r := &Registrar{}
	r.Init(rw)
	return r
}

// Init initializes the Registrar with defaults.
func (r *Registrar) Init(rw PacketReadWriter) {
	r.pipe.ReadWriter = rw
	r.pipe.Handler = HandleFrameFunc(r.handleFrame)
	r.sendCh = make(chan msgs.Frame, SendQueueSize)
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, ev *msgs.Event) error {
	return r.queue(ev)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.pipe)
	loop.AddRunnable(fx.RunnableFunc(r.runSender))
}

// Serve serves the pipe until it closes or ctx is done.
// ctx must come from a running Loop.
func (r *Registrar) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go r.runSender(ctx)
	return r.pipe.Run(ctx)
}

func (r *Registrar) queue(frame msgs.Frame) error {
	select {
	case r.sendCh <- frame:
		return nil
	default:
		return ErrSendQueueFull
	}
}

func (r *Registrar) runSender(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame := <-r.sendCh:
			if err := r.pipe.Send(frame); err != nil {
				glog.Warningf("send %s frame: %v", frame.Kind(), err)
			}
		}
	}
}

func (r *Registrar) handleFrame(ctx context.Context, frame msgs.Frame) error {
	switch f := frame.(type) {
	case *msgs.Command:
		loopCtl := fx.LoopCtlFrom(ctx)
		seq, out := f.Seq, &bytes.Buffer{}
		loopCtl.PostMessage(&console.Request{
			Argv: f.Argv,
			Out:  out,
			Done: func(status console.Status) {
				if err := r.queue(msgs.NewReply(seq, status, out.String())); err != nil {
					glog.Warningf("drop reply %d: %v", seq, err)
				}
			},
		})
		loopCtl.TriggerNext()
	default:
		glog.V(2).Infof("ignore %s frame", frame.Kind())
	}
	return nil
}

// RegistrarMux registers a device with multiple Registrars.
// Registrars of connected clients come and go while it is running.
type RegistrarMux struct {
	Registrars []remote.Registrar

	lock sync.RWMutex
}

// SendEvent implements Registrar.
func (r *RegistrarMux) SendEvent(ctx context.Context, ev *msgs.Event) error {
	r.lock.RLock()
	regs := append([]remote.Registrar(nil), r.Registrars...)
	r.lock.RUnlock()
	var errs fx.AggregatedError
	for _, reg := range regs {
		errs.Add(reg.SendEvent(ctx, ev))
	}
	return errs.Aggregate()
}

// AddToLoop implements LoopAdder.
func (r *RegistrarMux) AddToLoop(l *fx.Loop) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	for _, reg := range r.Registrars {
		if adder, ok := reg.(fx.LoopAdder); ok {
			l.Add(adder)
		}
	}
}

// Add adds more registrars.
func (r *RegistrarMux) Add(regs ...remote.Registrar) {
	r.lock.Lock()
	r.Registrars = append(r.Registrars, regs...)
	r.lock.Unlock()
}

// Remove removes a registrar previously added.
func (r *RegistrarMux) Remove(reg remote.Registrar) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for n, item := range r.Registrars {
		if item == reg {
			r.Registrars = append(r.Registrars[:n], r.Registrars[n+1:]...)
			return
		}
	}
}

// Len returns the number of registrars.
func (r *RegistrarMux) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.Registrars)
}

// Serve serves a client Registrar and receives events through the mux
// while it is connected. A nil mux only serves reg.
func (r *RegistrarMux) Serve(ctx context.Context, reg *Registrar) error {
	if r != nil {
		r.Add(reg)
		defer r.Remove(reg)
	}
	return reg.Serve(ctx)
}
