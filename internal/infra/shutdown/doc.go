// Package shutdown runs ordered cleanup hooks when the process receives
// SIGINT or SIGTERM.
//
// Usage:
//
//	h := shutdown.NewHandler(10*time.Second)
//	h.OnShutdown("redis", srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
