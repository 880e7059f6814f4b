// Package chunk splits work into fixed-size batches so the CLI can bound
// how many render submissions are in flight at once.
package chunk

// DefaultSize is used when New gets a non-positive size.
const DefaultSize = 16

// Chunker splits a run of items into batches.
type Chunker struct {
	Size int // items per batch
}

// New creates a Chunker with the given batch size.
// Defaults to DefaultSize if size <= 0.
func New(size int) *Chunker {
	if size <= 0 {
		size = DefaultSize
	}
	return &Chunker{Size: size}
}

// Range is a half-open index interval [Start, End).
type Range struct {
	Start, End int
}

// Ranges covers n items with consecutive batches of at most Size items.
func (c *Chunker) Ranges(n int) []Range {
	if n <= 0 {
		return nil
	}

	var out []Range
	for i := 0; i < n; i += c.Size {
		end := i + c.Size
		if end > n {
			end = n
		}
		out = append(out, Range{Start: i, End: end})
	}
	return out
}

// Batch splits items the same way Ranges does.
func Batch[T any](c *Chunker, items []T) [][]T {
	var out [][]T
	for _, r := range c.Ranges(len(items)) {
		out = append(out, items[r.Start:r.End])
	}
	return out
}
