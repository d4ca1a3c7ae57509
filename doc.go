// Package depot implements multi-tenant file storage over the local
// filesystem.
//
// Each client gets an isolated directory namespace under a common storage
// root. Files are written with generated, collision-resistant names that
// preserve the original filename, so every record can be reconstructed from
// the directory tree alone. There is no metadata database: the filesystem is
// the index.
//
// # Layout
//
// The entire durable schema is the directory tree:
//
//	root/<clientID>/<storedName>
//	root/<clientID>/<owner>/<storedName>
//
// where storedName is "<timestamp>_<disambiguator>_<originalName>". The
// optional owner segment groups files by uploader inside a client namespace.
// Namespaces never nest deeper than these two levels.
//
// # Basic Usage
//
// Create a storage engine and save files:
//
//	store, err := depot.New(depot.Config{
//		RootDir:      "/var/lib/depot",
//		StaticPrefix: "static",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	f, err := store.Save(ctx, clientID, "report.pdf", r,
//		depot.WithOwner("u42"),
//		depot.WithValidation(depot.MaxSize(50<<20)),
//	)
//
//	files, err := store.List(ctx, clientID)
//	stats, err := store.Stats(ctx, clientID)
//
// # References
//
// Read operations take a reference: either a bare stored name or
// "owner/storedName". Bare references resolve against the flat layout first
// and then against each owner subdirectory, so files stored before owner
// grouping existed keep resolving.
//
//	path, err := store.Path(ctx, clientID, "u42/"+f.StoredName)
//	info, err := store.Info(ctx, clientID, f.StoredName)
//	err = store.Delete(ctx, clientID, f.StoredName)
//
// # Errors
//
// Operations return sentinel errors: ErrInvalidPath for malformed or
// traversal-attempting identifiers, ErrNotFound for missing files, and
// wrapped ErrSaveFailed/ErrListFailed/ErrDeleteFailed for I/O faults.
// List and Stats return empty results, not errors, when a namespace does
// not exist yet.
//
// # Concurrency
//
// The engine is stateless; all state lives on disk. Saves write to a
// temporary file in the target directory and rename it into place, so
// concurrent listers never observe partial content. A List racing a Delete
// may include or omit the affected file depending on timing; both outcomes
// are valid. Two saves in the same millisecond with identical random
// disambiguators could collide; the odds are accepted rather than guarded.
package depot
