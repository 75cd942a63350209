package domain

// KeyPrefix namespaces every key the service writes to a shared key-value store.
const KeyPrefix = "semdocs:"

// Document storage layout in the key-value store.
const (
	DocumentKeyPrefix = KeyPrefix + "doc:"
	DocumentIndexName = KeyPrefix + "doc:idx"
)
