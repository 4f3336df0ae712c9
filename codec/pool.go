package codec

import (
	"sync"

	"github.com/wippyai/heapcodec"
)

const (
	// Pool limits to prevent memory bloat
	poolMaxHandles  = 4096
	poolInitHandles = 16
)

// handle buffer pool for collecting list items before StartList
var handlePool = sync.Pool{
	New: func() any {
		buf := make([]heapcodec.Handle, 0, poolInitHandles)
		return &buf
	},
}

func getHandles() *[]heapcodec.Handle {
	return handlePool.Get().(*[]heapcodec.Handle)
}

func putHandles(buf *[]heapcodec.Handle) {
	if buf == nil || cap(*buf) > poolMaxHandles {
		return // reject oversized
	}
	*buf = (*buf)[:0]
	handlePool.Put(buf)
}
