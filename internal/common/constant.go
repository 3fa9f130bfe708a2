package common

// SchemaVersionHeaderName is the gRPC metadata key carrying the record schema
// version a client was built against.
const SchemaVersionHeaderName = "x-schema-version"

// SchemaVersion is the version of the persisted record layout
// ({username, stamps, language} users and the singleton session).
const SchemaVersion = 1
