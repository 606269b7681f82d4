// Package chatstore provides per-chat and per-user settings storage and a
// username-to-id lookup cache for chat-bot backends.
//
// It supports a Redis-backed store for settings hashes and the username
// reverse index, relational identity stores (PostgreSQL, SQLite) with
// case-insensitive username uniqueness, and a Composite store that prefers
// the relational backend for identity operations and transparently degrades
// to the cache backend when the relational backend is absent or failing.
package chatstore
