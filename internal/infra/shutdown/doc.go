// Package shutdown coordinates graceful process termination.
//
// Components register hooks; on SIGINT, SIGTERM or an explicit Trigger
// the hooks run in reverse registration order under a shared deadline.
//
// Usage:
//
//	h := shutdown.NewHandler(10*time.Second, logger)
//	h.OnShutdown("redis", srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
