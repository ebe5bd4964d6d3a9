package console

import (
	"context"
	"errors"
	"io"

	"github.com/golang/glog"

	fx "github.com/robotalks/plipbox.go/pkg/framework"
)

// Executor runs one tokenized command line.
type Executor interface {
	Exec(ctx context.Context, argv []string, out io.Writer) (Status, error)
}

// ExecFunc is the func form of Executor.
type ExecFunc func(ctx context.Context, argv []string, out io.Writer) (Status, error)

// Exec implements Executor.
func (f ExecFunc) Exec(ctx context.Context, argv []string, out io.Writer) (Status, error) {
	return f(ctx, argv, out)
}

// Recorder observes every executed command.
type Recorder interface {
	Record(argv []string, status Status)
}

// Request is a command line waiting to be executed by the Owner.
type Request struct {
	Argv []string
	Out  io.Writer
	// Done is called on the loop goroutine with the result.
	Done func(Status)
}

// NewMessage implements Message.
func (r *Request) NewMessage() fx.Message { return &Request{} }

// ErrNotRunning indicates the Owner is not attached to a Loop.
var ErrNotRunning = errors.New("console owner not running")

// Owner is the only place commands are dispatched. Requests from all
// consoles are posted to its Loop and executed in order.
type Owner struct {
	Device   *Device
	Table    Table
	Recorder Recorder
	// OnReset is called after a command answered RESET.
	OnReset func()

	loop fx.LoopControl
}

// NewOwner creates an Owner dispatching with the default command table.
func NewOwner(d *Device) *Owner {
	return &Owner{Device: d, Table: Commands}
}

// AddToLoop implements LoopAdder.
func (o *Owner) AddToLoop(l *fx.Loop) {
	o.loop = l
	l.AddController(fx.PrLvNormal, o)
}

// Post queues a request for execution.
func (o *Owner) Post(req *Request) error {
	if o.loop == nil {
		return ErrNotRunning
	}
	o.loop.PostMessage(req)
	o.loop.TriggerNext()
	return nil
}

// Exec implements Executor.
func (o *Owner) Exec(ctx context.Context, argv []string, out io.Writer) (Status, error) {
	resultCh := make(chan Status, 1)
	req := &Request{
		Argv: argv,
		Out:  out,
		Done: func(s Status) { resultCh <- s },
	}
	if err := o.Post(req); err != nil {
		return StatusOK, err
	}
	select {
	case s := <-resultCh:
		return s, nil
	case <-ctx.Done():
		return StatusOK, ctx.Err()
	}
}

// Control implements Controller.
func (o *Owner) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		if req, ok := mctx.CurrentMessage().(*Request); ok {
			mctx.MessageTaken()
			o.execute(req)
		}
	}))
	return nil
}

func (o *Owner) execute(req *Request) {
	out := req.Out
	if out == nil {
		out = io.Discard
	}
	saved := o.Device.Out
	o.Device.Out = out
	status := o.Table.Dispatch(o.Device, req.Argv)
	o.Device.Out = saved

	glog.V(2).Infof("exec %q: %s", req.Argv, status)
	if o.Recorder != nil {
		o.Recorder.Record(req.Argv, status)
	}
	if req.Done != nil {
		req.Done(status)
	}
	if status.Kind == KindReset && o.OnReset != nil {
		o.OnReset()
	}
}
