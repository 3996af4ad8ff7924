// Package indexing builds the searchable index set for conversations.
//
// The Pipeline type turns raw conversation material (messages plus
// extracted semantic refs) into an IndexedConversation:
//   - a primary term index over the knowledge terms
//   - property, timestamp and related-terms secondary indexes
//   - a fuzzy text-to-location index over the message chunks
//
// Embedding-backed indexes are the slow part, so multiple conversations
// build concurrently on a worker pool.
package indexing
