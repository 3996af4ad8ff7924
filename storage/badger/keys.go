package badger

// Key prefixes for different data types
const (
	snapshotPrefix = "locidx"
)

// makeSnapshotKey generates the key for a conversation's location
// index snapshot.
func makeSnapshotKey(conversation string) []byte {
	return []byte(snapshotPrefix + ":" + conversation)
}
