// Package server wires the Runpad backend together: one code store,
// one lazily loaded execution engine behind the loader, the REST and
// WebSocket surfaces, and the ambient middleware stack.
package server
