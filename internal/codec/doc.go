// Package codec is the protocol-independent core shared by the GREIS and
// Novatel decoders.
//
// Bytes flow one way: a Synchronizer cuts an arbitrary byte stream into
// Frames (valid messages or noise) using the header rules of an Adapter, and
// Decode turns a valid Frame into a Message by interpreting a Descriptor. The
// descriptor tables are read-only after package initialization and may be
// shared between goroutines; a Synchronizer may not.
package codec
