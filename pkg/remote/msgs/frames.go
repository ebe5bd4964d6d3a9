package msgs

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/protobuf/jsonpb"
	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/robotalks/plipbox.go/pkg/console"
	fx "github.com/robotalks/plipbox.go/pkg/framework"
)

// Kind is the kind of a frame.
type Kind string

// Frame kinds.
const (
	KindCommand Kind = "cmd"
	KindReply   Kind = "reply"
	KindEvent   Kind = "event"
)

// Frame is a message sent over the wire.
type Frame interface {
	fx.Message
	Kind() Kind
	fields() map[string]*structpb.Value
}

// Command asks the device to execute a console line.
type Command struct {
	Seq  uint32
	Argv []string
}

// NewMessage implements Message.
func (m *Command) NewMessage() fx.Message { return &Command{} }

// Kind implements Frame.
func (m *Command) Kind() Kind { return KindCommand }

func (m *Command) fields() map[string]*structpb.Value {
	argv := make([]*structpb.Value, len(m.Argv))
	for n, arg := range m.Argv {
		argv[n] = stringValue(arg)
	}
	return map[string]*structpb.Value{
		"seq":  numberValue(float64(m.Seq)),
		"argv": {Kind: &structpb.Value_ListValue{ListValue: &structpb.ListValue{Values: argv}}},
	}
}

// Reply is the result of a Command.
type Reply struct {
	Seq       uint32
	Status    byte
	Subsystem string
	Output    string
}

// NewReply creates a Reply from a console status.
func NewReply(seq uint32, status console.Status, output string) *Reply {
	return &Reply{
		Seq:       seq,
		Status:    status.Byte(),
		Subsystem: string(status.Subsystem),
		Output:    output,
	}
}

// NewMessage implements Message.
func (m *Reply) NewMessage() fx.Message { return &Reply{} }

// Kind implements Frame.
func (m *Reply) Kind() Kind { return KindReply }

// ConsoleStatus decodes the status.
func (m *Reply) ConsoleStatus() console.Status {
	return console.StatusFromByte(m.Status, console.Subsystem(m.Subsystem))
}

func (m *Reply) fields() map[string]*structpb.Value {
	f := map[string]*structpb.Value{
		"seq":    numberValue(float64(m.Seq)),
		"status": numberValue(float64(m.Status)),
		"output": stringValue(m.Output),
	}
	if m.Subsystem != "" {
		f["subsystem"] = stringValue(m.Subsystem)
	}
	return f
}

// Event is sent by the device without a request.
type Event struct {
	Name string
	Text string
}

// NewMessage implements Message.
func (m *Event) NewMessage() fx.Message { return &Event{} }

// Kind implements Frame.
func (m *Event) Kind() Kind { return KindEvent }

func (m *Event) fields() map[string]*structpb.Value {
	return map[string]*structpb.Value{
		"name": stringValue(m.Name),
		"text": stringValue(m.Text),
	}
}

var (
	// ErrNoKind indicates the frame has no kind field.
	ErrNoKind = errors.New("frame without kind")
)

// ErrUnknownKind indicates an unsupported frame kind.
type ErrUnknownKind struct {
	Kind string
}

// Error implements error.
func (e *ErrUnknownKind) Error() string {
	return fmt.Sprintf("unknown frame kind: %q", e.Kind)
}

// ErrBadField indicates a field of unexpected type or value.
type ErrBadField struct {
	Name string
}

// Error implements error.
func (e *ErrBadField) Error() string {
	return fmt.Sprintf("bad frame field: %s", e.Name)
}

// ToStruct converts a frame to a Struct.
func ToStruct(f Frame) *structpb.Struct {
	fields := f.fields()
	fields["kind"] = stringValue(string(f.Kind()))
	return &structpb.Struct{Fields: fields}
}

// FromStruct converts a Struct to a frame.
func FromStruct(s *structpb.Struct) (Frame, error) {
	r := fieldReader{fields: s.GetFields()}
	kind := r.str("kind")
	if r.err != nil {
		return nil, ErrNoKind
	}
	var f Frame
	switch Kind(kind) {
	case KindCommand:
		f = &Command{Seq: r.u32("seq"), Argv: r.strs("argv")}
	case KindReply:
		reply := &Reply{Seq: r.u32("seq"), Status: r.u8("status"), Output: r.optStr("output")}
		reply.Subsystem = r.optStr("subsystem")
		f = reply
	case KindEvent:
		f = &Event{Name: r.str("name"), Text: r.optStr("text")}
	default:
		return nil, &ErrUnknownKind{Kind: kind}
	}
	if r.err != nil {
		return nil, r.err
	}
	return f, nil
}

// Encode encodes a frame in protobuf wire format.
func Encode(f Frame) ([]byte, error) {
	return proto.Marshal(ToStruct(f))
}

// Decode decodes a frame from protobuf wire format.
func Decode(data []byte) (Frame, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return FromStruct(&s)
}

// EncodeJSON renders a frame as JSON.
func EncodeJSON(f Frame) (string, error) {
	var m jsonpb.Marshaler
	return m.MarshalToString(ToStruct(f))
}

// DecodeJSON parses a frame rendered by EncodeJSON.
func DecodeJSON(data string) (Frame, error) {
	var s structpb.Struct
	if err := jsonpb.UnmarshalString(data, &s); err != nil {
		return nil, err
	}
	return FromStruct(&s)
}

func stringValue(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}

func numberValue(n float64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: n}}
}

type fieldReader struct {
	fields map[string]*structpb.Value
	err    error
}

func (r *fieldReader) fail(name string) {
	if r.err == nil {
		r.err = &ErrBadField{Name: name}
	}
}

func (r *fieldReader) str(name string) string {
	v, ok := r.fields[name].GetKind().(*structpb.Value_StringValue)
	if !ok {
		r.fail(name)
		return ""
	}
	return v.StringValue
}

func (r *fieldReader) optStr(name string) string {
	if _, ok := r.fields[name]; !ok {
		return ""
	}
	return r.str(name)
}

func (r *fieldReader) number(name string, max float64) float64 {
	v, ok := r.fields[name].GetKind().(*structpb.Value_NumberValue)
	if !ok || v.NumberValue < 0 || v.NumberValue > max || v.NumberValue != math.Trunc(v.NumberValue) {
		r.fail(name)
		return 0
	}
	return v.NumberValue
}

func (r *fieldReader) u32(name string) uint32 {
	return uint32(r.number(name, math.MaxUint32))
}

func (r *fieldReader) u8(name string) byte {
	return byte(r.number(name, math.MaxUint8))
}

func (r *fieldReader) strs(name string) []string {
	v, ok := r.fields[name].GetKind().(*structpb.Value_ListValue)
	if !ok {
		r.fail(name)
		return nil
	}
	res := make([]string, 0, len(v.ListValue.GetValues()))
	for _, item := range v.ListValue.GetValues() {
		s, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			r.fail(name)
			return nil
		}
		res = append(res, s.StringValue)
	}
	return res
}
