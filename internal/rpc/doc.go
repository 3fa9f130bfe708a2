// Package rpc describes the stampcard.RecordService gRPC service.
//
// The service is declared by hand over protobuf well-known types (Empty,
// StringValue, Struct, ListValue), so both sides share this package instead
// of generated stubs. A user travels as a Struct with the keys username,
// stamps and language.
package rpc
