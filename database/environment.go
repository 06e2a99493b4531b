package database

import "sync"

// Environment tracks, across every open Database handle in the process, how
// many live references each named store file has. It mirrors
// original_source/db.cpp's CDBEnv: a single process-wide mapFileUseCount
// guarded by one lock, so Flush can safely checkpoint or fully close a file
// only once nothing still has it open.
type Environment struct {
	mu           sync.Mutex
	fileUseCount map[string]int
}

// NewEnvironment returns an empty, ready-to-use Environment.
func NewEnvironment() *Environment {
	return &Environment{fileUseCount: make(map[string]int)}
}

// Acquire records that file is now referenced by one more open handle.
func (e *Environment) Acquire(file string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fileUseCount[file]++
}

// Release records that one reference to file has been closed.
func (e *Environment) Release(file string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fileUseCount[file] > 0 {
		e.fileUseCount[file]--
	}
}

// Flush checkpoints every file with no open references. If shutdown is
// true, it also forgets about every file, as original_source's DBFlush does
// when fShutdown is set, since the process is about to close the
// environment entirely.
func (e *Environment) Flush(shutdown bool, checkpoint func(file string) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for file, refs := range e.fileUseCount {
		if refs == 0 {
			if checkpoint != nil {
				if err := checkpoint(file); err != nil {
					return err
				}
			}
			delete(e.fileUseCount, file)
		}
	}

	if shutdown {
		e.fileUseCount = make(map[string]int)
	}
	return nil
}

// InUse reports whether file currently has any open references.
func (e *Environment) InUse(file string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fileUseCount[file] > 0
}
