/*
Package ports defines the driven ports (interfaces) for the Tendril runtime.

These interfaces decouple the session core from external implementations: the
compiled-script interpreter, the script document source, the save-slot stores,
and the host timer used by wait commands.

# Key Interfaces

  - ScriptRuntime: the branching-dialogue interpreter boundary (sequences, variables, visits).
  - ScriptSource: where compiled script documents come from (Loam, memory, FS).
  - StateStore: persistence for serialized session snapshots (save slots).
  - Scheduler: host timer used to resume scrolling after a wait command.
*/
package ports
