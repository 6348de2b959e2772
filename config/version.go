package config

const (
	SchemaUnknown = iota
	Schema08
	Schema10
)

// SchemaVersion pins which generation of the scene document schema parsers
// should assume. SchemaUnknown means detect per document.
type SchemaVersion int

var documentSchemaVersion SchemaVersion

func GetSchemaVersion() SchemaVersion {
	return documentSchemaVersion
}

func SetSchemaVersion(v SchemaVersion) {
	documentSchemaVersion = v
}
