package param

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"gopkg.in/yaml.v3"
)

// Store result codes, reported through StoreError.
const (
	CodeOK          byte = 0
	CodeNotReady    byte = 1
	CodeCRCMismatch byte = 2
)

// Store persists parameters.
type Store interface {
	Load(*Params) error
	Save(*Params) error
}

// StoreError wraps a store result code.
type StoreError struct {
	Op   string
	Code byte
	Err  error
}

// Error implements error.
func (e *StoreError) Error() string {
	msg := fmt.Sprintf("param %s failed: %s (0x%02x)", e.Op, CodeName(e.Code), e.Code)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// CodeName returns a readable name of a store result code.
func CodeName(code byte) string {
	switch code {
	case CodeOK:
		return "ok"
	case CodeNotReady:
		return "not ready"
	case CodeCRCMismatch:
		return "crc mismatch"
	default:
		return "unknown"
	}
}

// FileStore keeps parameters in a YAML file guarded by a CRC,
// standing in for the EEPROM of the device.
type FileStore struct {
	Path string
}

type storeFile struct {
	CRC    uint16 `yaml:"crc"`
	Params Params `yaml:"params"`
}

// NewFileStore creates a FileStore.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load implements Store. p is untouched unless the whole file is valid.
func (s *FileStore) Load(p *Params) error {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return &StoreError{Op: "load", Code: CodeNotReady, Err: err}
	}
	var f storeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return &StoreError{Op: "load", Code: CodeCRCMismatch, Err: err}
	}
	crc, err := f.Params.checksum()
	if err != nil {
		return &StoreError{Op: "load", Code: CodeCRCMismatch, Err: err}
	}
	if crc != f.CRC {
		return &StoreError{Op: "load", Code: CodeCRCMismatch,
			Err: fmt.Errorf("stored %04x computed %04x", f.CRC, crc)}
	}
	*p = f.Params
	glog.V(2).Infof("params loaded from %s", s.Path)
	return nil
}

// Save implements Store.
func (s *FileStore) Save(p *Params) error {
	crc, err := p.checksum()
	if err != nil {
		return &StoreError{Op: "save", Code: CodeNotReady, Err: err}
	}
	data, err := yaml.Marshal(&storeFile{CRC: crc, Params: *p})
	if err != nil {
		return &StoreError{Op: "save", Code: CodeNotReady, Err: err}
	}
	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return &StoreError{Op: "save", Code: CodeNotReady, Err: err}
	}
	glog.V(2).Infof("params saved to %s", s.Path)
	return nil
}

func (p *Params) checksum() (uint16, error) {
	b, err := p.MarshalBinary()
	if err != nil {
		return 0, err
	}
	return CRC16(b), nil
}

// CRC16 computes CRC-16-CCITT (poly 0x1021, init 0xffff).
func CRC16(data []byte) uint16 {
	crc := uint16(0xffff)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
