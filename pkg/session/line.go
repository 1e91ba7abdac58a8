package session

// Tick widens the clip window by one rune. Hosts call this once per frame
// to scroll text in; it holds still while a wait command pauses the
// presenter and clamps at the end of the line.
func (s *Session) Tick() {
	if s.paused || !s.running {
		return
	}
	if s.clipEnd < len(s.line) {
		s.clipEnd++
	}
}

// CompleteLine reveals the whole line at once, skipping the scroll. It is
// a no-op while paused, so a wait cannot be fast-forwarded past, and when
// no line is loaded.
func (s *Session) CompleteLine() {
	if s.paused || !s.running || len(s.line) == 0 {
		return
	}
	s.clipEnd = len(s.line)
}

// HasCompleted reports whether a line is loaded and fully revealed.
func (s *Session) HasCompleted() bool {
	return len(s.line) > 0 && s.clipEnd >= len(s.line)
}

// ClippedText returns the revealed prefix of the current line. Clipping
// counts runes, never bytes, so multibyte text scrolls without tearing.
func (s *Session) ClippedText() string {
	if !s.running || len(s.line) == 0 || s.clipEnd <= 0 {
		return ""
	}
	if s.clipEnd >= len(s.line) {
		return string(s.line)
	}
	return string(s.line[:s.clipEnd])
}

// LineText returns the full text of the current line. As a side effect it
// completes the scroll, mirroring how hosts use it to skip ahead.
func (s *Session) LineText() string {
	s.CompleteLine()
	return string(s.line)
}
