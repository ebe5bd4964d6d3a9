package param

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMAC(t *testing.T) {
	testCases := []struct {
		in     string
		expect MAC
		valid  bool
	}{
		{"aa:bb:cc:dd:ee:ff", MAC{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}, true},
		{"AA-BB-CC-DD-EE-FF", MAC{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}, true},
		{"1a:11:af:a0:47:11", DefaultMAC, true},
		{"not-a-mac", MAC{}, false},
		{"aa:bb:cc:dd:ee", MAC{}, false},
		{"aa:bb:cc:dd:ee:ff:00", MAC{}, false},
		{"aa:bb-cc:dd:ee:ff", MAC{}, false},
		{"aa.bb.cc.dd.ee.ff", MAC{}, false},
		{"aa:bb:cc:dd:ee:gg", MAC{}, false},
		{"0000.5e00.5301", MAC{}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			mac, err := ParseMAC(tc.in)
			if !tc.valid {
				require.Equal(t, ErrInvalidMAC, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expect, mac)
		})
	}
}

func TestMACString(t *testing.T) {
	require.Equal(t, "1a:11:af:a0:47:11", DefaultMAC.String())
}
