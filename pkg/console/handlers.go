package console

import (
	"errors"
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/plipbox.go/pkg/param"
)

func cmdQuit(d *Device, argv []string) Status {
	return StatusQuit
}

func cmdDeviceReset(d *Device, argv []string) Status {
	return StatusReset
}

func cmdVersion(d *Device, argv []string) Status {
	fmt.Fprintf(d.Out, "%s\r\n", d.Version)
	return StatusOK
}

func cmdParamDump(d *Device, argv []string) Status {
	if err := d.Params.Dump(d.Out); err != nil {
		glog.Warningf("param dump: %v", err)
	}
	return StatusOK
}

func cmdParamSave(d *Device, argv []string) Status {
	return storeStatus(d.Store.Save(d.Params))
}

func cmdParamLoad(d *Device, argv []string) Status {
	return storeStatus(d.Store.Load(d.Params))
}

func storeStatus(err error) Status {
	if err == nil {
		return StatusOK
	}
	glog.Warning(err)
	var se *param.StoreError
	if errors.As(err, &se) && se.Code != param.CodeOK {
		return Failed(SubsystemParam, se.Code)
	}
	return Failed(SubsystemParam, param.CodeNotReady)
}

func cmdParamReset(d *Device, argv []string) Status {
	d.Params.Reset()
	return StatusOK
}

// paramToggle flips a flag parameter or sets it to the byte given as argv[1].
// The value is not clamped so bitmask flags can be set directly, while a
// toggle always yields exactly 0 or 1.
func paramToggle(key param.Key) HandlerFunc {
	return func(d *Device, argv []string) Status {
		val := d.Params.Flag(key)
		if val == nil {
			return StatusParseError
		}
		if len(argv) == 1 {
			if *val != 0 {
				*val = 0
			} else {
				*val = 1
			}
			return StatusOK
		}
		newVal, err := ParseByte(argv[1])
		if err != nil {
			return StatusParseError
		}
		*val = newVal
		return StatusOK
	}
}

// paramWord sets a word parameter, the value is mandatory.
func paramWord(key param.Key) HandlerFunc {
	return func(d *Device, argv []string) Status {
		val := d.Params.Word(key)
		if val == nil || len(argv) < 2 {
			return StatusParseError
		}
		newVal, err := ParseWord(argv[1])
		if err != nil {
			return StatusParseError
		}
		*val = newVal
		return StatusOK
	}
}

func cmdParamMACAddr(d *Device, argv []string) Status {
	if len(argv) < 2 {
		return StatusParseError
	}
	mac, err := param.ParseMAC(argv[1])
	if err != nil {
		return StatusParseError
	}
	d.Params.MACAddr = mac
	return StatusOK
}

func cmdStatsDump(d *Device, argv []string) Status {
	if err := d.Stats.Dump(d.Out); err != nil {
		glog.Warningf("stats dump: %v", err)
	}
	return StatusOK
}

func cmdStatsReset(d *Device, argv []string) Status {
	d.Stats.Reset()
	return StatusOK
}

func cmdLogDump(d *Device, argv []string) Status {
	if err := d.Log.Dump(d.Out); err != nil {
		glog.Warningf("log dump: %v", err)
	}
	return StatusOK
}

func cmdLogReset(d *Device, argv []string) Status {
	d.Log.Reset()
	return StatusOK
}

func cmdEtherConfigure(d *Device, argv []string) Status {
	d.Ether.Configure()
	return StatusOK
}

func cmdEtherInit(d *Device, argv []string) Status {
	d.Ether.Init()
	return StatusOK
}

func cmdEtherShutdown(d *Device, argv []string) Status {
	d.Ether.Shutdown()
	return StatusOK
}

func cmdPlipboxInit(d *Device, argv []string) Status {
	d.Bridge.Init()
	return StatusOK
}

func cmdHelp(d *Device, argv []string) Status {
	for n, cmd := range Commands {
		if cmd.Help == "" {
			continue
		}
		if cmd.Group && n > 0 {
			fmt.Fprint(d.Out, "\r\n")
		}
		fmt.Fprintf(d.Out, "%-8s %s\r\n", cmd.Usage(), cmd.Help)
	}
	return StatusOK
}
