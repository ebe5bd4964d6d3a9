package mqtt

import (
	"context"
	"io"
	"sync"

	"github.com/robotalks/plipbox.go/pkg/remote"
)

// Topic suffixes under <type>/<id>/.
const (
	TopicCommand = "cmd"
	TopicMessage = "msg"
	TopicMeta    = "meta"
)

// DeviceTopic returns the topic of a device.
func DeviceTopic(ref remote.DeviceRef, suffix string) string {
	return ref.Name() + "/" + suffix
}

// ReadWriter implements PacketReadWriter.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh chan []byte
	doneCh   chan struct{}
	once     sync.Once
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 16),
		doneCh:   make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForConnector sets topics using default convention for clients:
// SubTopic = <type>/<id>/msg
// PubTopic = <type>/<id>/cmd
func (p *ReadWriter) ForConnector(ref remote.DeviceRef) *ReadWriter {
	return p.WithTopics(DeviceTopic(ref, TopicMessage), DeviceTopic(ref, TopicCommand))
}

// ForDevice sets topics using default convention for devices:
// SubTopic = <type>/<id>/cmd
// PubTopic = <type>/<id>/msg
func (p *ReadWriter) ForDevice(ref remote.DeviceRef) *ReadWriter {
	return p.WithTopics(DeviceTopic(ref, TopicCommand), DeviceTopic(ref, TopicMessage))
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.doneCh:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Run implements Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, Handler(p.handleMsg))
	defer sub.Close()
	defer p.Close()
	<-ctx.Done()
	return ctx.Err()
}

// Close implements io.Closer, pending and later reads get io.EOF.
func (p *ReadWriter) Close() error {
	p.once.Do(func() { close(p.doneCh) })
	return nil
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	select {
	case <-p.doneCh:
		return
	default:
	}
	select {
	case p.packetCh <- payload:
	case <-p.doneCh:
	}
}
