// Package queue implements the crash-safe run queue of pending pipeline
// batches.
//
// The queue is a FIFO of entries persisted to a plain-text file, one entry
// per line. Every mutation rewrites the whole file under the queue lock, so
// the on-disk state always equals the in-memory state and a restarted server
// resumes exactly where it left off. Callers accept O(queue length) cost per
// mutation in exchange.
package queue

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/Fabian-RY/rsat-code/errors"
	"github.com/Fabian-RY/rsat-code/logger"
)

// CommentPrefix marks a queue-file line to be ignored on load.
const CommentPrefix = "#"

// Entry is one pending pipeline-batch request. All fields round-trip through
// a single tab-separated line of the queue file.
type Entry struct {
	DefinitionPath string
	Resume         bool
	Verbosity      int
	WorkingDir     string
}

// Queue is a durable FIFO of entries. All mutation is serialized by one lock
// and every mutation rewrites the backing file.
type Queue struct {
	mu      sync.Mutex
	path    string
	entries []Entry
}

// Open creates a queue backed by the file at path and loads any entries
// persisted by a previous run. A missing file is an empty queue.
func Open(path string) (*Queue, error) {
	q := &Queue{path: path}
	if err := q.loadFromStore(); err != nil {
		return nil, err
	}
	return q, nil
}

// Enqueue appends an entry and rewrites the backing store. Entries with an
// empty definition path are ignored.
func (q *Queue) Enqueue(entry Entry) error {
	if entry.DefinitionPath == "" {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append(q.entries, entry)
	if err := q.persistLocked(); err != nil {
		q.entries = q.entries[:len(q.entries)-1]
		return errors.WrapExecution(err, "unable to add entry to server queue")
	}
	return nil
}

// Front returns the oldest entry without removing it.
func (q *Queue) Front() (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return Entry{}, false
	}
	return q.entries[0], true
}

// DequeueFront removes the oldest entry and rewrites the backing store.
func (q *Queue) DequeueFront() (Entry, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return Entry{}, false, nil
	}

	front := q.entries[0]
	q.entries = q.entries[1:]
	if err := q.persistLocked(); err != nil {
		return front, true, errors.WrapExecution(err, "unable to remove first entry from server queue")
	}
	return front, true, nil
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Entries returns a snapshot of the pending entries in FIFO order.
func (q *Queue) Entries() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	snapshot := make([]Entry, len(q.entries))
	copy(snapshot, q.entries)
	return snapshot
}

// loadFromStore parses the backing file into the queue, preserving file
// order. Comment and blank lines are skipped. Missing trailing fields
// default to (resume=true, verbosity=0, workingDir unset).
func (q *Queue) loadFromStore() error {
	file, err := os.Open(q.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WrapExecution(err, "unable to read server queue file")
	}
	defer file.Close()

	q.mu.Lock()
	defer q.mu.Unlock()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		entry, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		logger.Logger.Infow("Restoring queued command",
			"definition", entry.DefinitionPath,
			"resume", entry.Resume,
			"verbosity", entry.Verbosity)
		q.entries = append(q.entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return errors.WrapExecution(err, "unable to read server queue file")
	}
	return nil
}

// parseLine parses one queue-file line into up to 4 whitespace-separated
// tokens: path, resume, verbosity, workingDir.
func parseLine(line string) (Entry, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, CommentPrefix) {
		return Entry{}, false
	}

	entry := Entry{Resume: true}
	tokens := strings.Fields(trimmed)
	if len(tokens) == 0 || len(tokens) > 4 {
		return Entry{}, false
	}

	entry.DefinitionPath = tokens[0]
	if len(tokens) > 1 {
		entry.Resume = strings.EqualFold(tokens[1], "true")
	}
	if len(tokens) > 2 {
		verbosity, err := strconv.Atoi(tokens[2])
		if err != nil {
			logger.Logger.Warnw("Ignoring malformed verbosity in queue file",
				"token", tokens[2])
			verbosity = 0
		}
		entry.Verbosity = verbosity
	}
	if len(tokens) > 3 {
		entry.WorkingDir = tokens[3]
	}
	return entry, true
}

// persistLocked rewrites the whole backing store from the in-memory queue.
// The caller must hold q.mu. The write goes through a temp file and a rename
// so a crash mid-write never leaves a truncated queue.
func (q *Queue) persistLocked() error {
	tmp := q.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	writer := bufio.NewWriter(file)
	for _, entry := range q.entries {
		fmt.Fprintf(writer, "%s\t%t\t%d\t%s\n",
			entry.DefinitionPath, entry.Resume, entry.Verbosity, entry.WorkingDir)
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, q.path)
}
