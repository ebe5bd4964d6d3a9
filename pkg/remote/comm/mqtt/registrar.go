package mqtt

import (
	"context"
	"encoding/json"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	fx "github.com/robotalks/plipbox.go/pkg/framework"
	"github.com/robotalks/plipbox.go/pkg/remote"
	"github.com/robotalks/plipbox.go/pkg/remote/comm"
	"github.com/robotalks/plipbox.go/pkg/remote/msgs"
)

// Registrar implements remote.Registrar using MQTT.
// Device meta is published retained on <type>/<id>/meta and
// cleared by the will message when the device goes away.
type Registrar struct {
	Queue *Queue
	Info  remote.DeviceInfo

	meta      []byte
	registrar comm.Registrar
}

// NewRegistrar creates a Registrar.
func NewRegistrar(brokerURL string, info remote.DeviceInfo) (*Registrar, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	metaTopic := DeviceTopic(info.Ref, TopicMeta)
	opts.SetBinaryWill(topicPrefix+metaTopic, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("plipbox:" + info.Ref.ID)
	}
	r := &Registrar{
		Queue: NewQueue(opts, topicPrefix),
		Info:  info,
		meta:  meta,
	}
	r.Queue.OnConnect = func(*Queue) { r.publishMeta(r.meta) }
	r.registrar.Init(NewPacketReadWriter(r.Queue).ForDevice(info.Ref))
	return r, nil
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, ev *msgs.Event) error {
	return r.registrar.SendEvent(ctx, ev)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.registrar)
	loop.AddRunnable(fx.NamedRun("mqtt-registrar", r))
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	token := r.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		glog.Errorf("mqtt registrar %s: %v", r.Info.Ref.Name(), err)
		return err
	}
	<-ctx.Done()
	r.publishMeta(nil).Wait()
	return r.Queue.Close()
}

func (r *Registrar) publishMeta(meta []byte) paho.Token {
	return r.Queue.PubWith(DeviceTopic(r.Info.Ref, TopicMeta), meta, 1, true)
}
