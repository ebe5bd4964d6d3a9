package console

import (
	"bytes"
	"fmt"
	"io"

	"github.com/robotalks/plipbox.go/pkg/param"
)

type fakeStore struct {
	saved   *param.Params
	loadErr error
	saveErr error
	load    param.Params
}

func (s *fakeStore) Load(p *param.Params) error {
	if s.loadErr != nil {
		return s.loadErr
	}
	*p = s.load
	return nil
}

func (s *fakeStore) Save(p *param.Params) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	v := *p
	s.saved = &v
	return nil
}

type fakeDumper struct {
	name   string
	resets int
}

func (d *fakeDumper) Dump(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s dump\r\n", d.name)
	return err
}

func (d *fakeDumper) Reset() { d.resets++ }

type fakeEther struct {
	calls []string
}

func (e *fakeEther) Configure() { e.calls = append(e.calls, "configure") }
func (e *fakeEther) Init()      { e.calls = append(e.calls, "init") }
func (e *fakeEther) Shutdown()  { e.calls = append(e.calls, "shutdown") }

type fakeBridge struct {
	inits int
}

func (b *fakeBridge) Init() { b.inits++ }

type testDevice struct {
	*Device
	params *param.Params
	store  *fakeStore
	stats  *fakeDumper
	log    *fakeDumper
	ether  *fakeEther
	bridge *fakeBridge
	out    *bytes.Buffer
}

func newTestDevice() *testDevice {
	p := param.Defaults()
	td := &testDevice{
		params: &p,
		store:  &fakeStore{load: param.Defaults()},
		stats:  &fakeDumper{name: "stats"},
		log:    &fakeDumper{name: "log"},
		ether:  &fakeEther{},
		bridge: &fakeBridge{},
		out:    &bytes.Buffer{},
	}
	td.Device = &Device{
		Version: "plipbox 0.6 test",
		Params:  td.params,
		Store:   td.store,
		Stats:   td.stats,
		Log:     td.log,
		Ether:   td.ether,
		Bridge:  td.bridge,
		Out:     td.out,
	}
	return td
}

func (td *testDevice) run(argv ...string) Status {
	return Commands.Dispatch(td.Device, argv)
}
