package console

import (
	"strconv"
	"strings"

	shlex "github.com/flynn-archive/go-shlex"
)

// ParseByte parses an unsigned 8-bit value, decimal or 0x-prefixed hex.
func ParseByte(tok string) (byte, error) {
	v, err := parseUint(tok, 8)
	return byte(v), err
}

// ParseWord parses an unsigned 16-bit value, decimal or 0x-prefixed hex.
func ParseWord(tok string) (uint16, error) {
	v, err := parseUint(tok, 16)
	return uint16(v), err
}

func parseUint(tok string, bits int) (uint64, error) {
	base := 10
	if strings.HasPrefix(tok, "0x") || strings.HasPrefix(tok, "0X") {
		tok, base = tok[2:], 16
	}
	v, err := strconv.ParseUint(tok, base, bits)
	if err != nil {
		return 0, ErrParse
	}
	return v, nil
}

// Tokenize splits a console line into argv.
// Words are separated by whitespace, quotes group words.
func Tokenize(line string) ([]string, error) {
	argv, err := shlex.Split(line)
	if err != nil {
		return nil, ErrParse
	}
	return argv, nil
}
