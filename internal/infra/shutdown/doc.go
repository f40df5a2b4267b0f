// Package shutdown coordinates graceful shutdown of the server process.
//
// A Handler waits for SIGINT/SIGTERM (or for its context to end) and then
// runs the registered hooks in reverse order of registration under a
// shared timeout:
//
//	h := shutdown.NewHandler(10*time.Second, shutdown.WithLogger(log))
//	h.OnShutdown("redis", srv.Shutdown)
//	h.OnShutdown("http", httpSrv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
