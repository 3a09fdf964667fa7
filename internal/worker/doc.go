/*
Package worker provides the isolation channel for code execution.

Two swappable Spawner implementations exist:

 1. Direct: in-process, no isolation layer. Tests and embedded use.
 2. Isolated: a dedicated goroutine owns the engine, runs are
    serialized through a bounded queue, and a hard wall-clock timeout
    forces teardown and respawn of the whole context.

Either spawner plugs into the loader as its resolver, so the store's
run action never knows which isolation level is behind the handle.
*/
package worker
