package comm

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/plipbox.go/pkg/framework"
	"github.com/robotalks/plipbox.go/pkg/remote/msgs"
)

// FrameHandler handles a received frame.
type FrameHandler interface {
	HandleFrame(context.Context, msgs.Frame) error
}

// HandleFrameFunc is func form of FrameHandler.
type HandleFrameFunc func(context.Context, msgs.Frame) error

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, frame msgs.Frame) error {
	return f(ctx, frame)
}

// Pipe is a bi-directional pipe for frames.
type Pipe struct {
	ReadWriter PacketReadWriter
	Handler    FrameHandler

	sendLock sync.Mutex
}

// NewPipe creates a Pipe with given PacketReadWriter.
func NewPipe(rw PacketReadWriter) *Pipe {
	return &Pipe{ReadWriter: rw}
}

// Send encodes and sends a frame.
func (p *Pipe) Send(frame msgs.Frame) error {
	pkt, err := msgs.Encode(frame)
	if err != nil {
		return err
	}
	p.sendLock.Lock()
	defer p.sendLock.Unlock()
	return p.ReadWriter.WritePacket(pkt)
}

// Run implements Runnable.
// The ReadWriter is closed when Run returns.
func (p *Pipe) Run(ctx context.Context) error {
	return fx.RunWithContextCloser(ctx, p, func() error {
		for {
			pkt, err := p.ReadWriter.ReadPacket()
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
			frame, err := msgs.Decode(pkt)
			if err != nil {
				// undecodable frames carry no usable sequence, drop them.
				glog.Warningf("drop frame: %v", err)
				continue
			}
			if h := p.Handler; h != nil {
				if err = h.HandleFrame(ctx, frame); err != nil {
					return err
				}
			}
		}
	})
}

// Close implements Closer.
func (p *Pipe) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// AddToLoop implements LoopAdder.
func (p *Pipe) AddToLoop(loop *fx.Loop) {
	if adder, ok := p.ReadWriter.(fx.LoopAdder); ok {
		loop.Add(adder)
	} else if runnable, ok := p.ReadWriter.(fx.Runnable); ok {
		loop.AddRunnable(runnable)
	}
	loop.AddRunnable(p)
}
