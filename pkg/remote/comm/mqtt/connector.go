package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	fx "github.com/robotalks/plipbox.go/pkg/framework"
	"github.com/robotalks/plipbox.go/pkg/remote"
	"github.com/robotalks/plipbox.go/pkg/remote/comm"
)

// Connector implements remote.Connector using MQTT.
type Connector struct {
	DiscoverTimeout time.Duration

	options     *paho.ClientOptions
	topicPrefix string
}

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return &Connector{
		DiscoverTimeout: DefaultDiscoverTimeout,
		options:         opts,
		topicPrefix:     topicPrefix,
	}, nil
}

// ParseMetaTopic extracts the device ref from <type>/<id>/meta.
func ParseMetaTopic(topic string) (remote.DeviceRef, bool) {
	items := strings.Split(topic, "/")
	if len(items) != 3 || items[2] != TopicMeta {
		return remote.DeviceRef{}, false
	}
	ref := remote.DeviceRef{Type: items[0], ID: items[1]}
	return ref, ref.IsValid()
}

// Discover implements Connector.
// Devices are found by their retained meta, empty meta means gone.
func (c *Connector) Discover(ctx context.Context) (res []remote.DeviceInfo, err error) {
	q := NewQueue(c.options, c.topicPrefix)
	token := q.Connect()
	token.Wait()
	if err = token.Error(); err != nil {
		return nil, err
	}
	defer q.Close()

	infoCh := make(chan remote.DeviceInfo, 16)
	sub := q.Sub("+/+/"+TopicMeta, Handler(func(topic string, payload []byte) {
		ref, ok := ParseMetaTopic(topic)
		if !ok || len(payload) == 0 {
			return
		}
		info := remote.DeviceInfo{Ref: ref}
		if err := json.Unmarshal(payload, &info.Meta); err != nil {
			glog.Warningf("bad meta of %s: %v", ref.Name(), err)
		}
		select {
		case infoCh <- info:
		case <-time.After(time.Second):
		}
	}))
	defer sub.Close()

	dur := c.DiscoverTimeout
	if dur == 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.After(dur)
	for {
		select {
		case info := <-infoCh:
			res = append(res, info)
		case <-timeout:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref remote.DeviceRef) (remote.DeviceConn, error) {
	conn := &DeviceConn{
		Queue: NewQueue(c.options, c.topicPrefix),
	}
	conn.Init(NewPacketReadWriter(conn.Queue).ForConnector(ref))
	token := conn.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	return conn, nil
}

// DeviceConn implements remote.DeviceConn using MQTT.
type DeviceConn struct {
	comm.DeviceConn
	Queue *Queue
}

// AddToLoop implements LoopAdder, the connection closes with the loop.
func (c *DeviceConn) AddToLoop(l *fx.Loop) {
	c.DeviceConn.AddToLoop(l)
	l.AddRunnable(fx.RunnableFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return c.Close()
	}))
}

// Close implements io.Closer.
func (c *DeviceConn) Close() error {
	return c.Queue.Close()
}
