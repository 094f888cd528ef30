// Package schedule runs timed callbacks against an externally advanced
// clock. Every pending callback has a Token so its owner can cancel it
// deterministically during teardown.
package schedule

import (
	"container/heap"
	"time"
)

// Token identifies a scheduled task. The zero Token is never issued.
type Token uint64

// Func receives the time the task was due, not the wall clock.
type Func func(due time.Time)

type task struct {
	token  Token
	due    time.Time
	period time.Duration
	seq    uint64
	fn     Func
	index  int
}

// Scheduler is single-threaded: all methods, and all callbacks, run on the
// goroutine that calls Advance.
type Scheduler struct {
	now   time.Time
	queue taskQueue
	tasks map[Token]*task
	next  Token
	seq   uint64
}

func New(start time.Time) *Scheduler {
	return &Scheduler{
		now:   start,
		tasks: make(map[Token]*task),
	}
}

func (s *Scheduler) Now() time.Time { return s.now }

// Pending is the number of tasks that have not run or been cancelled.
// Periodic tasks count until cancelled.
func (s *Scheduler) Pending() int { return len(s.tasks) }

// At schedules fn to run once at t.
func (s *Scheduler) At(t time.Time, fn Func) Token {
	return s.push(t, 0, fn)
}

// After schedules fn to run once, d after the scheduler's current time.
func (s *Scheduler) After(d time.Duration, fn Func) Token {
	return s.push(s.now.Add(d), 0, fn)
}

// Every runs fn at first and then every period. The task is re-queued
// before fn runs, so tasks fn schedules for the same instant run after the
// next occurrence is already registered. When Advance jumps over several
// periods, the occurrences in between are dropped and only the latest one
// still runs.
func (s *Scheduler) Every(first time.Time, period time.Duration, fn Func) Token {
	if period <= 0 {
		panic("schedule: non-positive period")
	}
	return s.push(first, period, fn)
}

// Cancel drops a pending task. It reports whether the token was pending.
func (s *Scheduler) Cancel(tok Token) bool {
	t, ok := s.tasks[tok]
	if !ok {
		return false
	}
	delete(s.tasks, tok)
	heap.Remove(&s.queue, t.index)
	return true
}

// CancelAll drops every pending task and returns how many there were.
func (s *Scheduler) CancelAll() int {
	n := len(s.tasks)
	s.tasks = make(map[Token]*task)
	s.queue = s.queue[:0]
	return n
}

// Advance runs every task due at or before now, in due order (ties in
// registration order), and returns how many callbacks ran. Time never moves
// backwards.
func (s *Scheduler) Advance(now time.Time) int {
	ran := 0
	for len(s.queue) > 0 {
		t := s.queue[0]
		if t.due.After(now) {
			break
		}
		heap.Pop(&s.queue)
		if t.due.After(s.now) {
			s.now = t.due
		}
		due := t.due
		if t.period > 0 {
			next := due.Add(t.period)
			if next.Before(now) {
				missed := now.Sub(next) / t.period
				next = next.Add(missed * t.period)
			}
			t.due = next
			s.seq++
			t.seq = s.seq
			heap.Push(&s.queue, t)
		} else {
			delete(s.tasks, t.token)
		}
		t.fn(due)
		ran++
	}
	if now.After(s.now) {
		s.now = now
	}
	return ran
}

func (s *Scheduler) push(due time.Time, period time.Duration, fn Func) Token {
	s.next++
	s.seq++
	t := &task{token: s.next, due: due, period: period, seq: s.seq, fn: fn}
	s.tasks[t.token] = t
	heap.Push(&s.queue, t)
	return t.token
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if !q[i].due.Equal(q[j].due) {
		return q[i].due.Before(q[j].due)
	}
	return q[i].seq < q[j].seq
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	t.index = -1
	return t
}
