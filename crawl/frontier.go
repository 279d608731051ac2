package crawl

// Frontier is the breadth-first work queue of document paths. Every path
// is queued at most once per run: the seen set is exact, so no reachable
// path is ever skipped. Frontier is not safe for concurrent use; the
// crawler drives it from a single goroutine.
type Frontier struct {
	queue []string
	head  int
	seen  map[string]bool
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{seen: make(map[string]bool)}
}

// Push queues path. Returns false if the path was already queued.
func (f *Frontier) Push(path string) bool {
	if f.seen[path] {
		return false
	}
	f.seen[path] = true
	f.queue = append(f.queue, path)
	return true
}

// Pop returns the oldest queued path.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (string, bool) {
	if f.head >= len(f.queue) {
		return "", false
	}
	p := f.queue[f.head]
	f.queue[f.head] = ""
	f.head++
	if f.head == len(f.queue) {
		f.queue = f.queue[:0]
		f.head = 0
	}
	return p, true
}

// Len returns the number of paths waiting in the queue.
func (f *Frontier) Len() int {
	return len(f.queue) - f.head
}

// Seen returns true if the path has been queued during this run.
func (f *Frontier) Seen(path string) bool {
	return f.seen[path]
}

// SeenCount returns the number of distinct paths queued during this run.
func (f *Frontier) SeenCount() int {
	return len(f.seen)
}
