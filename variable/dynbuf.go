package variable

// Dynamic storage growth parameters. Chunk allocations round up to the
// chunk size; the chunk list itself grows by a fixed increment so a long
// multi-piece fetch does not reallocate it per piece.
const (
	dynamicChunkSize   = 65536
	chunkListIncrement = 8
	numberAsTextChars  = 172
)

// dynamicChunk is one contiguous allocation inside dynamic byte storage.
// len(buf) is the allocated length; length is the bytes actually holding
// data.
type dynamicChunk struct {
	buf    []byte
	length uint32
}

// dynamicBytes is the per-element chunked store for values whose length is
// unknown until fetched. After any successful read at most one chunk holds
// data; multi-chunk states only exist mid-fetch.
type dynamicBytes struct {
	chunks    []dynamicChunk
	numChunks int
}

// growChunkList extends the chunk list by the fixed increment.
func (d *dynamicBytes) growChunkList() {
	chunks := make([]dynamicChunk, len(d.chunks)+chunkListIncrement)
	copy(chunks, d.chunks[:d.numChunks])
	d.chunks = chunks
}

// ensureCapacity guarantees exactly one chunk of at least size bytes.
// Any previously held content is discarded.
func (d *dynamicBytes) ensureCapacity(size uint32) {
	d.numChunks = 0

	if len(d.chunks) == 0 {
		d.growChunkList()
	}

	// at this point any prior retrieval has been consolidated, so only the
	// first chunk can hold an allocation worth keeping
	if size > uint32(len(d.chunks[0].buf)) {
		allocated := (uint64(size) + dynamicChunkSize - 1) &^ (dynamicChunkSize - 1)
		d.chunks[0].buf = make([]byte, allocated)
	}
}

// nextChunk returns the chunk a multi-piece fetch should fill next,
// allocating backing memory at the fixed chunk size if the slot has none.
// The chunk's length is preset to its full allocation; the call interface
// overwrites it with the delivered piece length.
func (d *dynamicBytes) nextChunk() *dynamicChunk {
	if d.numChunks == len(d.chunks) {
		d.growChunkList()
	}
	chunk := &d.chunks[d.numChunks]
	if chunk.buf == nil {
		chunk.buf = make([]byte, dynamicChunkSize)
	}
	d.numChunks++
	chunk.length = uint32(len(chunk.buf))
	return chunk
}

// consolidate collapses the store to a single chunk and returns a view of
// its content. A single-chunk store is returned directly with no copy.
func (d *dynamicBytes) consolidate() []byte {
	if d.numChunks == 0 {
		return nil
	}
	if d.numChunks == 1 {
		return d.chunks[0].buf[:d.chunks[0].length]
	}

	var totalAllocated uint64
	for i := 0; i < d.numChunks; i++ {
		totalAllocated += uint64(len(d.chunks[i].buf))
	}

	merged := make([]byte, totalAllocated)
	var used uint32
	for i := 0; i < d.numChunks; i++ {
		chunk := &d.chunks[i]
		copy(merged[used:], chunk.buf[:chunk.length])
		used += chunk.length
		chunk.buf = nil
		chunk.length = 0
	}

	d.numChunks = 1
	d.chunks[0] = dynamicChunk{buf: merged, length: used}
	return merged[:used]
}

// free drops all chunk allocations.
func (d *dynamicBytes) free() {
	d.chunks = nil
	d.numChunks = 0
}
