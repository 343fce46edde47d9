package process

// StderrTailLines is the capacity of the stderr tail buffer.
const StderrTailLines = 1000

// lineRing keeps the most recent lines, evicting the oldest first.
type lineRing struct {
	buf   []string
	start int
	n     int
}

func newLineRing(capacity int) *lineRing {
	if capacity < 1 {
		capacity = 1
	}
	return &lineRing{buf: make([]string, capacity)}
}

func (r *lineRing) push(line string) {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = line
		r.n++
		return
	}
	r.buf[r.start] = line
	r.start = (r.start + 1) % len(r.buf)
}

// lines returns the retained lines oldest first.
func (r *lineRing) lines() []string {
	out := make([]string, r.n)
	for i := range r.n {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}
