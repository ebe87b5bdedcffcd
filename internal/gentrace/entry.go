package gentrace

import "fmt"

// Entry is a single trace event recorded by the generation engine. Entries
// are append-only: once created, their fields are immutable.
type Entry struct {
	category Mask
	depth    int
	message  string
}

func newEntry(category Mask, depth int, format string, args []any) *Entry {
	return &Entry{
		category: category,
		depth:    depth,
		message:  fmt.Sprintf(format, args...),
	}
}

// Category returns the trace category this entry was recorded under.
func (e *Entry) Category() Mask { return e.category }

// Depth returns the recursion depth active when the entry was recorded.
func (e *Entry) Depth() int { return e.depth }

// Message returns the formatted trace message.
func (e *Entry) Message() string { return e.message }

// String renders the entry the way the original's DBGN macro rendered a
// trace line: a depth-indented message, one indent level per recursion frame.
func (e *Entry) String() string {
	indent := ""
	for i := 0; i < e.depth; i++ {
		indent += "  "
	}
	return indent + e.message
}
