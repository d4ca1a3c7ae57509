// Package health provides HTTP handlers for liveness and readiness probes.
//
// [LivenessHandler] is an always-OK endpoint reporting that the process is
// running. [ReadinessHandler] executes a set of named [Checks] in parallel
// and reports whether the service can accept traffic. Checks reuse the
// func(context.Context) error closures exposed by the storage engine and
// the db, redis, and job packages.
//
// # Quick Start
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "storage":  store.Healthcheck(),
//	    "postgres": db.Healthcheck(pool),
//	    "redis":    redis.Healthcheck(client),
//	}, health.WithLogger(log)))
//
// # Response Formats
//
// Handlers respond with plain text ("OK" / "Service Unavailable") for probe
// compatibility. Clients get JSON by sending Accept: application/json or
// ?format=json:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "storage":  {"status": "healthy"},
//	    "postgres": {"status": "unhealthy", "error": "connection refused"}
//	  }
//	}
package health
