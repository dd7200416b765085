package utils

import (
	"github.com/valyala/bytebufferpool"
)

// exportPool serves the CSV export paths. bytebufferpool handles size-class
// management, so repeated slip exports do not churn the allocator.
var exportPool bytebufferpool.Pool

// GetBuffer retrieves a pooled buffer. Callers must return it with PutBuffer
// and must not retain the underlying bytes after that.
func GetBuffer() *bytebufferpool.ByteBuffer {
	return exportPool.Get()
}

// PutBuffer returns a buffer to the pool.
func PutBuffer(buf *bytebufferpool.ByteBuffer) {
	exportPool.Put(buf)
}
