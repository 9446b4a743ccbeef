// Package rag implements the query-translation and retrieval orchestration
// core of the NEFAC knowledge base: intent and strategy classification,
// the six query transformation strategies, vector search with metadata
// filtering, result formatting and deduplication, and the streaming router
// that ties them together per conversation session.
package rag
