// Package msgs defines the frames exchanged with a remote console.
//
// A frame is a google.protobuf.Struct with a "kind" field selecting one of
// "cmd", "reply" and "event". Struct keeps the wire self-describing, so the
// same frame renders as JSON for monitors and shells.
package msgs
