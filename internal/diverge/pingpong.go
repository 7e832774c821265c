package diverge

// PingPong holds two buffers and tracks which is current. Writers fill
// Back while readers see Front; Swap flips the roles atomically from
// the owner's point of view. Every double-buffered resource in the
// renderer (trajectory slabs, field sets) goes through this one type
// instead of carrying its own flip flag.
type PingPong[T any] struct {
	bufs  [2]T
	front int
}

func NewPingPong[T any](front, back T) *PingPong[T] {
	return &PingPong[T]{bufs: [2]T{front, back}}
}

func (p *PingPong[T]) Front() T { return p.bufs[p.front] }
func (p *PingPong[T]) Back() T  { return p.bufs[1-p.front] }

func (p *PingPong[T]) Swap() { p.front = 1 - p.front }
