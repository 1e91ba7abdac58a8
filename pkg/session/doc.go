/*
Package session implements the dialogue session controller.

A Session owns one running traversal of a dialogue script: it pulls steps
from the interpreter cursor, presents text lines with a scrolling clip
window, queues inline commands against rune offsets, and exposes the
option selector for branching.

Sessions are plain owned values. Create one per conversation with New and
drive it from a single goroutine (typically the game loop); none of its
methods are safe for concurrent use. The Manager adds slot-based
persistence on top, guarding each slot with a reference-counted lock so
multiple goroutines can share one save file.
*/
package session
