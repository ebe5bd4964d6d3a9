package console

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/plipbox.go/pkg/param"
)

var flagCommands = []string{"fd", "fc", "fp", "fe", "fl", "dd", "de", "di", "da", "dp", "dl", "la"}

func flagOf(td *testDevice, name string) *byte {
	k, _ := param.KeyOf(name)
	return td.params.Flag(k)
}

func TestQuitAndReset(t *testing.T) {
	td := newTestDevice()
	require.Equal(t, StatusQuit, td.run("q"))
	require.Equal(t, StatusReset, td.run("r"))
	td.params.LogAll = 7
	require.Equal(t, StatusQuit, td.run("q"))
	require.Equal(t, StatusReset, td.run("r"))
	require.Equal(t, byte(7), td.params.LogAll)
}

func TestFlagToggle(t *testing.T) {
	for _, name := range flagCommands {
		t.Run(name, func(t *testing.T) {
			td := newTestDevice()
			val := flagOf(td, name)
			require.NotNil(t, val)
			for _, start := range []byte{0, 1} {
				*val = start
				require.Equal(t, StatusOK, td.run(name))
				require.Equal(t, 1-start, *val)
				require.Equal(t, StatusOK, td.run(name))
				require.Equal(t, start, *val)
			}
			*val = 0x0c
			require.Equal(t, StatusOK, td.run(name))
			require.Equal(t, byte(0), *val)
		})
	}
}

func TestFlagSet(t *testing.T) {
	for _, name := range flagCommands {
		t.Run(name, func(t *testing.T) {
			td := newTestDevice()
			val := flagOf(td, name)
			for n := 0; n < 256; n++ {
				require.Equal(t, StatusOK, td.run(name, strconv.Itoa(n)))
				require.Equal(t, byte(n), *val)
			}
			require.Equal(t, StatusOK, td.run(name, "0x0f"))
			require.Equal(t, byte(0x0f), *val)
			for _, bad := range []string{"256", "-1", "x", "", "1.5", "0x", "0x100"} {
				before := *td.params
				require.Equal(t, StatusParseError, td.run(name, bad), bad)
				require.Equal(t, before, *td.params)
			}
		})
	}
}

func TestFlagWithoutSlot(t *testing.T) {
	td := newTestDevice()
	before := *td.params
	require.Equal(t, StatusParseError, td.run("dy"))
	require.Equal(t, StatusParseError, td.run("dy", "1"))
	require.Equal(t, before, *td.params)

	handler := paramToggle(param.Key{Group: 'x', Type: 'y'})
	require.Equal(t, StatusParseError, handler(td.Device, []string{"xy"}))
	require.Equal(t, before, *td.params)
}

func TestWordParams(t *testing.T) {
	td := newTestDevice()
	require.Equal(t, StatusOK, td.run("tl", "1500"))
	require.Equal(t, uint16(1500), td.params.TestPLen)
	require.Equal(t, StatusOK, td.run("tt", "0x0800"))
	require.Equal(t, uint16(0x0800), td.params.TestPType)
	require.Equal(t, StatusOK, td.run("tt", "65535"))
	require.Equal(t, uint16(0xffff), td.params.TestPType)

	before := *td.params
	for _, name := range []string{"tl", "tt"} {
		require.Equal(t, StatusParseError, td.run(name))
		require.Equal(t, StatusParseError, td.run(name, "99999"))
		require.Equal(t, StatusParseError, td.run(name, "65536"))
		require.Equal(t, StatusParseError, td.run(name, "abc"))
		require.Equal(t, before, *td.params)
	}
}

func TestMACAddr(t *testing.T) {
	td := newTestDevice()
	require.Equal(t, StatusOK, td.run("m", "aa:bb:cc:dd:ee:ff"))
	require.Equal(t, param.MAC{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}, td.params.MACAddr)

	before := *td.params
	require.Equal(t, StatusParseError, td.run("m", "not-a-mac"))
	require.Equal(t, StatusParseError, td.run("m"))
	require.Equal(t, StatusParseError, td.run("m", "aa:bb:cc"))
	require.Equal(t, before, *td.params)
}

func TestUnknownCommand(t *testing.T) {
	td := newTestDevice()
	before := *td.params
	require.Equal(t, StatusParseError, td.run("zz"))
	require.Equal(t, StatusParseError, td.run("zz", "1"))
	require.Equal(t, before, *td.params)
}

func TestParamStore(t *testing.T) {
	td := newTestDevice()
	td.params.LogAll = 1
	require.Equal(t, StatusOK, td.run("ps"))
	require.NotNil(t, td.store.saved)
	require.Equal(t, byte(1), td.store.saved.LogAll)

	require.Equal(t, StatusOK, td.run("pl"))
	require.Equal(t, param.Defaults(), *td.params)

	td.params.LogAll = 1
	require.Equal(t, StatusOK, td.run("pr"))
	require.Equal(t, param.Defaults(), *td.params)
}

func TestParamStoreErrors(t *testing.T) {
	td := newTestDevice()
	td.store.saveErr = &param.StoreError{Op: "save", Code: param.CodeNotReady}
	s := td.run("ps")
	require.Equal(t, Failed(SubsystemParam, param.CodeNotReady), s)
	require.Equal(t, byte(0x81), s.Byte())

	td.store.loadErr = fmt.Errorf("wrapped: %w", &param.StoreError{Op: "load", Code: param.CodeCRCMismatch})
	td.params.LogAll = 1
	s = td.run("pl")
	require.Equal(t, Failed(SubsystemParam, param.CodeCRCMismatch), s)
	require.Equal(t, byte(0x82), s.Byte())
	require.Equal(t, byte(1), td.params.LogAll)

	td.store.loadErr = errors.New("opaque")
	require.Equal(t, Failed(SubsystemParam, param.CodeNotReady), td.run("pl"))
}

func TestDelegates(t *testing.T) {
	td := newTestDevice()
	require.Equal(t, StatusOK, td.run("v"))
	require.Equal(t, "plipbox 0.6 test\r\n", td.out.String())

	td.out.Reset()
	require.Equal(t, StatusOK, td.run("p"))
	require.Contains(t, td.out.String(), "1a:11:af:a0:47:11")

	td.out.Reset()
	require.Equal(t, StatusOK, td.run("sd"))
	require.Equal(t, StatusOK, td.run("ld"))
	require.Equal(t, "stats dump\r\nlog dump\r\n", td.out.String())
	require.Equal(t, StatusOK, td.run("sr"))
	require.Equal(t, StatusOK, td.run("lr"))
	require.Equal(t, 1, td.stats.resets)
	require.Equal(t, 1, td.log.resets)

	require.Equal(t, StatusOK, td.run("ec"))
	require.Equal(t, StatusOK, td.run("ei"))
	require.Equal(t, StatusOK, td.run("es"))
	require.Equal(t, []string{"configure", "init", "shutdown"}, td.ether.calls)
	require.Equal(t, StatusOK, td.run("pi"))
	require.Equal(t, 1, td.bridge.inits)
}

func TestHelp(t *testing.T) {
	td := newTestDevice()
	require.Equal(t, StatusOK, td.run("?"))
	out := td.out.String()
	require.Contains(t, out, "q        quit command mode\r\n")
	require.Contains(t, out, "m <mac>  set MAC address\r\n")
	require.Contains(t, out, "[1=plip(rx),2=eth(rx),4=plip(tx),8=eth(tx)]")
	require.NotContains(t, out, "dy")
}
