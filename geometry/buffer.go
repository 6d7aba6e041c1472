package geometry

// BufferType describes what a buffer stores.
type BufferType uint8

const (
	// BufferEmpty is a buffer with no special use.
	BufferEmpty BufferType = iota
	// BufferVertex stores vertex data.
	BufferVertex
	// BufferIndex stores indices.
	BufferIndex
	// BufferInstance stores per-instance data.
	BufferInstance
)

// String returns the buffer type name.
func (t BufferType) String() string {
	switch t {
	case BufferEmpty:
		return "Empty"
	case BufferVertex:
		return "Vertex"
	case BufferIndex:
		return "Index"
	case BufferInstance:
		return "Instance"
	default:
		return "Unknown"
	}
}

// AccessType describes how the CPU accesses a buffer after creation.
type AccessType uint8

const (
	// ReadOnly buffers are uploaded once.
	ReadOnly AccessType = iota
	// WriteOnly buffers are rewritten by the CPU and never read back.
	WriteOnly
	// ReadWrite buffers may be read back.
	ReadWrite
)

// String returns the access type name.
func (a AccessType) String() string {
	switch a {
	case ReadOnly:
		return "ReadOnly"
	case WriteOnly:
		return "WriteOnly"
	case ReadWrite:
		return "ReadWrite"
	default:
		return "Unknown"
	}
}

// BufferData is a typed CPU-side payload destined for a GPU buffer.
//
// All mutating methods are no-ops on a nil receiver, so callers can pass
// a mesh's buffer through without checking whether it was ever created.
type BufferData struct {
	Type   BufferType
	Access AccessType
	Data   []byte
}

// Alloc returns a new buffer with size zeroed bytes.
func Alloc(t BufferType, size int, access AccessType) *BufferData {
	if size < 0 {
		size = 0
	}
	return &BufferData{
		Type:   t,
		Access: access,
		Data:   make([]byte, size),
	}
}

// Size returns the payload size in bytes. A nil buffer has size 0.
func (b *BufferData) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// CopyFrom overwrites the payload with data. The buffer grows or shrinks
// to len(data).
func (b *BufferData) CopyFrom(data []byte) {
	if b == nil {
		return
	}
	if cap(b.Data) >= len(data) {
		b.Data = b.Data[:len(data)]
	} else {
		b.Data = make([]byte, len(data))
	}
	copy(b.Data, data)
}

// Attach appends data to the payload.
func (b *BufferData) Attach(data []byte) {
	if b == nil {
		return
	}
	b.Data = append(b.Data, data...)
}

// Clone returns a deep copy of b, or nil for a nil buffer.
func (b *BufferData) Clone() *BufferData {
	if b == nil {
		return nil
	}
	c := &BufferData{Type: b.Type, Access: b.Access, Data: make([]byte, len(b.Data))}
	copy(c.Data, b.Data)
	return c
}
