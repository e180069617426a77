package list

import (
	"fmt"
	"golang.org/x/exp/slices"
	"jobfuzz/pkg/models"
	"jobfuzz/pkg/utils"
	"sync/atomic"
)

const nilIndex int32 = -1

var listIDs atomic.Uint64

// Handle addresses a node inside one LinkedList. It goes stale as soon as the
// node is removed, and it never resolves against a different list.
type Handle struct {
	listID     uint64
	index      int32
	generation uint32
}

func (h Handle) IsZero() bool {
	return h.listID == 0
}

type node struct {
	job        models.Job
	prev       int32
	next       int32
	generation uint32
	live       bool
}

// LinkedList is a doubly linked list of jobs kept in an arena of slots.
// Links are slot indices, removed slots are recycled through a free stack.
type LinkedList struct {
	id     uint64
	nodes  []node
	free   []int32
	head   int32
	tail   int32
	length int
}

func New() *LinkedList {
	return &LinkedList{
		id:   listIDs.Add(1),
		head: nilIndex,
		tail: nilIndex,
	}
}

// FromJobs builds a list holding jobs in the given forward order.
func FromJobs(jobs []models.Job) *LinkedList {
	l := New()
	for _, job := range jobs {
		l.AddAtRear(job)
	}
	return l
}

func (l *LinkedList) Len() int {
	return l.length
}

func (l *LinkedList) IsEmpty() bool {
	return l.length == 0
}

func (l *LinkedList) AddAtFront(job models.Job) Handle {
	idx := l.alloc(job)
	n := &l.nodes[idx]
	n.next = l.head
	if l.head != nilIndex {
		l.nodes[l.head].prev = idx
	} else {
		l.tail = idx
	}
	l.head = idx
	l.length++
	return l.handle(idx)
}

func (l *LinkedList) AddAtRear(job models.Job) Handle {
	idx := l.alloc(job)
	n := &l.nodes[idx]
	n.prev = l.tail
	if l.tail != nilIndex {
		l.nodes[l.tail].next = idx
	} else {
		l.head = idx
	}
	l.tail = idx
	l.length++
	return l.handle(idx)
}

func (l *LinkedList) RemoveFront() (models.Job, error) {
	if l.head == nilIndex {
		return models.Job{}, utils.NewError(utils.EmptyListError, "remove front")
	}
	return l.detach(l.head), nil
}

func (l *LinkedList) RemoveRear() (models.Job, error) {
	if l.tail == nilIndex {
		return models.Job{}, utils.NewError(utils.EmptyListError, "remove rear")
	}
	return l.detach(l.tail), nil
}

// Search returns the node at a zero based forward offset. The offset is
// resolved at call time; any later mutation may change what it refers to.
func (l *LinkedList) Search(position int) (Handle, error) {
	if position < 0 || position >= l.length {
		return Handle{}, utils.NewError(utils.OutOfRangeError, "position %d, length %d", position, l.length)
	}

	var idx int32
	if position <= l.length/2 {
		idx = l.head
		for i := 0; i < position; i++ {
			idx = l.nodes[idx].next
		}
	} else {
		idx = l.tail
		for i := l.length - 1; i > position; i-- {
			idx = l.nodes[idx].prev
		}
	}
	return l.handle(idx), nil
}

// RemoveNode detaches the node h refers to and returns its job.
func (l *LinkedList) RemoveNode(h Handle) (models.Job, error) {
	idx, ok := l.resolve(h)
	if !ok {
		return models.Job{}, utils.NewError(utils.NotFoundError, "node is not part of this list")
	}
	return l.detach(idx), nil
}

// Reverse swaps every node's links in place. Applying it twice is a no-op.
func (l *LinkedList) Reverse() {
	for idx := l.head; idx != nilIndex; {
		n := &l.nodes[idx]
		next := n.next
		n.prev, n.next = n.next, n.prev
		idx = next
	}
	l.head, l.tail = l.tail, l.head
}

func (l *LinkedList) Front() (Handle, bool) {
	if l.head == nilIndex {
		return Handle{}, false
	}
	return l.handle(l.head), true
}

func (l *LinkedList) Back() (Handle, bool) {
	if l.tail == nilIndex {
		return Handle{}, false
	}
	return l.handle(l.tail), true
}

func (l *LinkedList) Job(h Handle) (models.Job, error) {
	idx, ok := l.resolve(h)
	if !ok {
		return models.Job{}, utils.NewError(utils.NotFoundError, "node is not part of this list")
	}
	return l.nodes[idx].job, nil
}

// Each walks the list from head to tail until fn returns false.
func (l *LinkedList) Each(fn func(h Handle, job models.Job) bool) {
	for idx := l.head; idx != nilIndex; idx = l.nodes[idx].next {
		if !fn(l.handle(idx), l.nodes[idx].job) {
			return
		}
	}
}

// Jobs returns the jobs in forward order.
func (l *LinkedList) Jobs() []models.Job {
	jobs := make([]models.Job, 0, l.length)
	for idx := l.head; idx != nilIndex; idx = l.nodes[idx].next {
		jobs = append(jobs, l.nodes[idx].job)
	}
	return jobs
}

// JobsBackward returns the jobs walking prev links from the tail.
func (l *LinkedList) JobsBackward() []models.Job {
	jobs := make([]models.Job, 0, l.length)
	for idx := l.tail; idx != nilIndex; idx = l.nodes[idx].prev {
		jobs = append(jobs, l.nodes[idx].job)
	}
	return jobs
}

// Clear releases every node in chain order. Slots stay in the arena so their
// generations keep outdated handles from matching later nodes.
func (l *LinkedList) Clear() {
	for idx := l.head; idx != nilIndex; {
		next := l.nodes[idx].next
		l.release(idx)
		idx = next
	}
	l.head = nilIndex
	l.tail = nilIndex
	l.length = 0
}

// Validate checks the structural invariants of the chain.
func (l *LinkedList) Validate() error {
	if (l.head == nilIndex) != (l.tail == nilIndex) {
		return fmt.Errorf("head %d and tail %d disagree on emptiness", l.head, l.tail)
	}
	if l.head == nilIndex {
		if l.length != 0 {
			return fmt.Errorf("empty chain with length %d", l.length)
		}
		return nil
	}
	if p := l.nodes[l.head].prev; p != nilIndex {
		return fmt.Errorf("head %d has prev %d", l.head, p)
	}
	if n := l.nodes[l.tail].next; n != nilIndex {
		return fmt.Errorf("tail %d has next %d", l.tail, n)
	}

	forward := make([]int32, 0, l.length)
	for idx := l.head; idx != nilIndex; idx = l.nodes[idx].next {
		if len(forward) > len(l.nodes) {
			return fmt.Errorf("forward walk does not terminate")
		}
		n := l.nodes[idx]
		if !n.live {
			return fmt.Errorf("slot %d is linked but released", idx)
		}
		if n.next != nilIndex && l.nodes[n.next].prev != idx {
			return fmt.Errorf("slot %d next %d points back to %d", idx, n.next, l.nodes[n.next].prev)
		}
		if n.prev != nilIndex && l.nodes[n.prev].next != idx {
			return fmt.Errorf("slot %d prev %d points forward to %d", idx, n.prev, l.nodes[n.prev].next)
		}
		forward = append(forward, idx)
	}
	if len(forward) != l.length {
		return fmt.Errorf("forward walk visited %d nodes, length is %d", len(forward), l.length)
	}

	backward := make([]int32, 0, l.length)
	for idx := l.tail; idx != nilIndex; idx = l.nodes[idx].prev {
		if len(backward) > len(l.nodes) {
			return fmt.Errorf("backward walk does not terminate")
		}
		backward = append(backward, idx)
	}
	slices.Reverse(backward)
	if !slices.Equal(forward, backward) {
		return fmt.Errorf("backward walk is not the reverse of the forward walk")
	}
	return nil
}

func (l *LinkedList) alloc(job models.Job) int32 {
	if n := len(l.free); n > 0 {
		idx := l.free[n-1]
		l.free = l.free[:n-1]
		slot := &l.nodes[idx]
		slot.job = job
		slot.prev = nilIndex
		slot.next = nilIndex
		slot.live = true
		return idx
	}
	l.nodes = append(l.nodes, node{job: job, prev: nilIndex, next: nilIndex, live: true})
	return int32(len(l.nodes) - 1)
}

func (l *LinkedList) release(idx int32) {
	slot := &l.nodes[idx]
	slot.job = models.Job{}
	slot.prev = nilIndex
	slot.next = nilIndex
	slot.live = false
	slot.generation++
	l.free = append(l.free, idx)
}

func (l *LinkedList) detach(idx int32) models.Job {
	n := l.nodes[idx]
	if n.prev != nilIndex {
		l.nodes[n.prev].next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nilIndex {
		l.nodes[n.next].prev = n.prev
	} else {
		l.tail = n.prev
	}
	l.release(idx)
	l.length--
	return n.job
}

func (l *LinkedList) handle(idx int32) Handle {
	return Handle{listID: l.id, index: idx, generation: l.nodes[idx].generation}
}

func (l *LinkedList) resolve(h Handle) (int32, bool) {
	if h.listID != l.id || h.index < 0 || int(h.index) >= len(l.nodes) {
		return nilIndex, false
	}
	n := l.nodes[h.index]
	if !n.live || n.generation != h.generation {
		return nilIndex, false
	}
	return h.index, true
}
