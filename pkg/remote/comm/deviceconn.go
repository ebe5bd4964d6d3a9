package comm

import (
	"container/list"
	"context"
	"sync"
	"time"

	fx "github.com/robotalks/plipbox.go/pkg/framework"
	"github.com/robotalks/plipbox.go/pkg/remote"
	"github.com/robotalks/plipbox.go/pkg/remote/msgs"
)

// DeviceConn provides base implementation for remote.DeviceConn using Pipe.
type DeviceConn struct {
	Expiration time.Duration

	pipe     Pipe
	seq      uint32
	commands list.List
	seqMap   map[uint32]*commandFuture
	lock     sync.Mutex
}

// DefaultCommandExpiration is the default expiration expecting a result.
const DefaultCommandExpiration = 1 * time.Second

// NewDeviceConn creates a DeviceConn on rw.
func NewDeviceConn(rw PacketReadWriter) *DeviceConn {
	c := &DeviceConn{}
	c.Init(rw)
	return c
}

// Init initializes DeviceConn with defaults.
func (c *DeviceConn) Init(rw PacketReadWriter) {
	c.Expiration = DefaultCommandExpiration
	c.pipe.ReadWriter = rw
	c.pipe.Handler = HandleFrameFunc(c.handleFrame)
	c.seqMap = make(map[uint32]*commandFuture)
}

// DoCommand implements DeviceConn.
func (c *DeviceConn) DoCommand(argv []string) remote.CommandFuture {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.seq++
	if c.seq == 0 {
		c.seq++
	}
	f := &commandFuture{
		seq:      c.seq,
		expireAt: time.Now().Add(c.Expiration),
		result:   make(chan remote.Result, 1),
	}
	if err := c.pipe.Send(&msgs.Command{Seq: f.seq, Argv: argv}); err != nil {
		f.result <- remote.Result{Err: err}
		close(f.result)
		return f
	}
	f.elem = c.commands.PushBack(f)
	c.seqMap[f.seq] = f
	return f
}

// Pending returns the number of commands waiting for a reply.
func (c *DeviceConn) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.commands.Len()
}

// AddToLoop implements LoopAdder.
func (c *DeviceConn) AddToLoop(l *fx.Loop) {
	l.Add(&c.pipe)
	l.AddController(fx.PrLvIdle, fx.ControlFunc(c.purgeExpired))
}

func (c *DeviceConn) handleFrame(ctx context.Context, frame msgs.Frame) error {
	switch f := frame.(type) {
	case *msgs.Event:
		loopCtl := fx.LoopCtlFrom(ctx)
		loopCtl.PostMessage(f)
		loopCtl.TriggerNext()
	case *msgs.Reply:
		c.complete(f)
	}
	return nil
}

func (c *DeviceConn) complete(reply *msgs.Reply) {
	c.lock.Lock()
	defer c.lock.Unlock()
	f := c.seqMap[reply.Seq]
	if f == nil {
		return
	}
	c.commands.Remove(f.elem)
	delete(c.seqMap, reply.Seq)
	f.result <- remote.Result{Reply: reply}
	close(f.result)
}

func (c *DeviceConn) purgeExpired(cc fx.ControlContext) error {
	now := cc.Time()
	c.lock.Lock()
	defer c.lock.Unlock()
	for c.commands.Len() > 0 {
		elem := c.commands.Front()
		f := elem.Value.(*commandFuture)
		if f.expireAt.After(now) {
			break
		}
		c.commands.Remove(elem)
		delete(c.seqMap, f.seq)
		f.result <- remote.Result{Err: context.DeadlineExceeded}
		close(f.result)
	}
	return nil
}

type commandFuture struct {
	seq      uint32
	expireAt time.Time
	elem     *list.Element
	result   chan remote.Result
}

func (c *commandFuture) ResultChan() <-chan remote.Result {
	return c.result
}
