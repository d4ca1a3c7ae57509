// Package server assembles the HTTP surface and owns the process
// lifecycle: route composition, middleware ordering, signal handling, and
// ordered startup and shutdown of the subsystems around the listener.
//
//	router := server.Router(cfg, server.Deps{
//	    Log:   log,
//	    Store: store,
//	    Auth:  keys,
//	    Keys:  keys,
//	})
//	err := server.Run(router,
//	    server.Address(cfg.Server.Addr),
//	    server.Logger(log),
//	    server.StartupHook(manager.StartFunc()),
//	    server.ShutdownHook(manager.Shutdown()),
//	    server.ShutdownHook(db.Shutdown(pool)),
//	)
package server
