// Package cleanup tracks temporary artifact paths produced while
// assembling and linking a program, so the CLI's run subcommand can
// remove them once it's done with them — or as soon as a later step
// fails.
//
// Adapted from the teacher's stack.Stack: the same mutex-protected
// string stack, with Pop replaced by Close so the CLI can drain
// every tracked path in one call instead of one at a time.
package cleanup

import (
	"os"
	"sync"
)

// Stack holds paths of files that should be removed, in the reverse
// order they were pushed (last pushed, first removed).
type Stack struct {
	lock  sync.Mutex
	paths []string
}

// New returns an empty Stack.
func New() *Stack {
	return &Stack{}
}

// Push records path for later removal.
func (s *Stack) Push(path string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.paths = append(s.paths, path)
}

// Empty reports whether the stack has no tracked paths.
func (s *Stack) Empty() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.paths) == 0
}

// Close removes every tracked path, most-recently-pushed first, and
// returns the first removal error encountered, if any. It always
// attempts every path, even after an error, so a single stuck file
// doesn't leave the rest behind. Paths may be files or directories
// (a tracked work directory is removed along with everything under it).
func (s *Stack) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	var first error
	for i := len(s.paths) - 1; i >= 0; i-- {
		if err := os.RemoveAll(s.paths[i]); err != nil && first == nil {
			first = err
		}
	}
	s.paths = nil
	return first
}
