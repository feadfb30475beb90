// Package models defines domain entities and persistence interfaces for the skylist migration service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing AT Protocol data
//   - [ListInfo] : List metadata returned by app.bsky.graph.getList
//   - [ListMember] : A single membership entry (subject DID plus handle)
//   - [NewListSpec] : Caller-supplied metadata for the list to create
//   - [Purpose] : The app.bsky.graph.defs purpose NSID of a list
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [MigrationRun] : One migration run with counts, status, and checkpoint cursor
//
// Persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
