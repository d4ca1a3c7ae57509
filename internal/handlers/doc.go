// Package handlers contains the HTTP handlers for the three service
// surfaces: the authenticated file API, the admin key API, and the public
// static file endpoint.
//
// Handlers depend on small interfaces (Storage, KeyService, Recorder,
// Mirrorer) rather than concrete types, so tests exercise them with the
// real storage engine on a temp dir and fakes for everything else.
//
// All API errors share one envelope:
//
//	{"error": {"code": "not_found", "message": "file not found"}}
//
// with an optional "details" object on validation failures. Error messages
// are fixed strings; underlying causes never reach clients because they may
// contain filesystem paths. The public static surface speaks plain 404s
// instead of JSON, revealing nothing about what exists.
package handlers
