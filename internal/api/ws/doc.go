// Package ws streams position fragments over WebSocket.
//
// A client subscribes to positions and receives each one's fragment right
// away, then again whenever a periodic re-render produces a different
// ETag.
//
// Message Types (Client → Server):
//   - subscribe: Start receiving a position
//   - unsubscribe: Stop receiving a position
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - system: Connection established
//   - fragment: Rendered position with its ETag
//   - pong: Reply to ping
//   - error: Invalid message or failed render
//
// Example Usage:
//
//	handler := ws.NewHandler(engine, 5*time.Second, logger)
//	router.GET("/stream", handler.HandleConnection)
package ws
