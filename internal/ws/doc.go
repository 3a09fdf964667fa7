// Package ws provides the WebSocket binding between editor views and
// the code store.
//
// Message types (client to server): update_code, get_code, run, ping.
// Message types (server to client): system, code, code_updated,
// console, run_complete, error, pong.
//
// Every connection subscribes to the store, so a buffer mutation from
// any surface is pushed to all connected views.
package ws
