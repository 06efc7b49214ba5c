// Package poll waits on asynchronous cluster state.
//
// AwaitClusterHealth repeatedly asks for yellow-or-better health and retries
// only the attempts the server reports as timed out, up to a caller-supplied
// budget. AwaitTaskCompletion lists running tasks until the given task is no
// longer reported.
//
// Both loops sleep through an injected Clock and stop when their context is
// cancelled. A Poller holds no mutable state and is safe for concurrent use.
package poll
