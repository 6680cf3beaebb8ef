// Package store persists conversation documents by name.
//
// A [Store] holds the serialized JSON form of each document, exactly as
// [io.Marshal] writes it, so documents move between backends and the file
// system without conversion. Backends:
//   - [FileStore]: one <name>.json file per document in a directory
//   - [RedisStore]: one string key per document plus an index set
//   - [MongoStore]: one record per document in a collection
//   - [MemoryStore]: in-process map for tests and throwaway servers
//
// # Usage
//
//	s, err := store.Open(ctx, cfg.Server, store.Options{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	conv, err := store.Load(ctx, s, "intro")
//
// Document names are validated with [errors.ValidateDocumentName] before any
// backend sees them. A missing document yields an error carrying
// [errors.ErrCodeDocumentNotFound]; backend failures carry
// [errors.ErrCodeStore].
//
// [io.Marshal]: github.com/matzehuels/parley/pkg/io.Marshal
// [errors.ValidateDocumentName]: github.com/matzehuels/parley/pkg/errors.ValidateDocumentName
// [errors.ErrCodeDocumentNotFound]: github.com/matzehuels/parley/pkg/errors.ErrCodeDocumentNotFound
// [errors.ErrCodeStore]: github.com/matzehuels/parley/pkg/errors.ErrCodeStore
package store
