/*
Package dialogue contains the core domain models of the Tendril runtime.

It defines the node stream a compiled-script interpreter produces (Step and its
Text, Options and Command variants), the command-call queue entries, the node
metadata cached on a running session, and the persisted state exchanged with a
host. This package is kept pure and free of I/O or persistence concerns.

# Key Entities

  - Step: the tagged union yielded by an interpreter cursor (Text, Options, Command).
  - CommandCall: a parsed script command tagged with the scroll offset at which it fires.
  - NodeInfo: title, tags and body of the node a text line came from.
  - PersistedState: the JSON-compatible snapshot of variables and visit counts.
  - Hooks: optional lifecycle callbacks for logging and metrics adapters.
*/
package dialogue
