/*
Package runner drives a dialogue session as an interactive player.

It owns the frame loop: a ticker reveals the current line one rune at a
time, script commands are dispatched to the host's registry, wait pauses
arm and resume on the loop goroutine, and player inputs (advance, select,
confirm, save, load) arrive over a channel from a pluggable Handler.

# Key components

  - Runner: the loop itself. One Run per session; the session is confined
    to the loop goroutine.
  - Handler: the IO strategy. TextHandler types lines into a terminal,
    JSONHandler speaks newline-delimited JSON for embedding the player in
    another process.
  - Pump: a ports.Scheduler that channels wait-timer callbacks into the
    loop instead of firing them on timer goroutines.

# Usage

	r := runner.New(
		runner.WithRegistry(reg),
		runner.WithManager(engine.Manager(), "autosave"),
	)
	if err := r.Run(ctx, engine); err != nil {
		log.Fatal(err)
	}
*/
package runner
