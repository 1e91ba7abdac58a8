/*
Package observability turns session lifecycle hooks into structured logs and
prometheus metrics.

Metrics owns a collector set fed by its Hooks method, LogHooks writes one log
record per lifecycle event, and Chain merges several hook sets so a session
can feed both at once.
*/
package observability
