package todo

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultGroup is the group assigned when none is given.
	DefaultGroup = "default"

	// PlaceholderDescription is the description of a group sentinel task.
	PlaceholderDescription = "Empty group placeholder"
)

var (
	ErrEmptyDescription = errors.New("description is empty")
	ErrEmptyGroup       = errors.New("group name is empty")
	ErrGroupExists      = errors.New("group already exists")
	ErrInvalidIndex     = errors.New("task number is not a positive integer")
	ErrIndexOutOfRange  = errors.New("task number is out of range")
	ErrBeforeEpoch      = errors.New("system clock is before the Unix epoch")
)

// Priority is a task priority. Lower values are more urgent.
type Priority int

const (
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	return p >= PriorityHigh && p <= PriorityLow
}

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Med"
	default:
		return "Low"
	}
}

// ParsePriority parses a priority flag value. Anything that is not 1, 2 or 3
// becomes PriorityLow.
func ParsePriority(s string) Priority {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return PriorityLow
	}
	return coercePriority(Priority(n))
}

func coercePriority(p Priority) Priority {
	if !p.Valid() {
		return PriorityLow
	}
	return p
}

// Task represents a single task in the store.
type Task struct {
	Description string   `json:"description"`
	Group       string   `json:"group"`
	Priority    Priority `json:"priority"`
	AddedTime   uint64   `json:"added_time"`
	Done        bool     `json:"done"`
	ID          uint64   `json:"id,omitempty"`
}

// NewTask builds a task created at the given instant. The description is
// trimmed, an empty group becomes DefaultGroup and an invalid priority
// becomes PriorityLow.
func NewTask(description, group string, priority Priority, added time.Time) (Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Task{}, ErrEmptyDescription
	}
	secs := added.Unix()
	if secs < 0 {
		return Task{}, ErrBeforeEpoch
	}
	if group == "" {
		group = DefaultGroup
	}
	return Task{
		Description: description,
		Group:       group,
		Priority:    coercePriority(priority),
		AddedTime:   uint64(secs),
	}, nil
}

// normalize applies defaults to a task read from disk.
func (t *Task) normalize() {
	t.Description = strings.TrimSpace(t.Description)
	if t.Group == "" {
		t.Group = DefaultGroup
	}
	t.Priority = coercePriority(t.Priority)
}

// IsPlaceholder reports whether t is a group sentinel created by MakeGroup.
func (t Task) IsPlaceholder() bool {
	return t.Description == PlaceholderDescription && t.AddedTime == 0
}

// List is the full task list in insertion order.
type List []Task

// nextID returns one more than the largest id in use.
func (l List) nextID() uint64 {
	var highest uint64
	for _, t := range l {
		if t.ID > highest {
			highest = t.ID
		}
	}
	return highest + 1
}

// assignMissingIDs gives every task without an id a fresh one, in order.
func (l List) assignMissingIDs() {
	next := l.nextID()
	for i := range l {
		if l[i].ID == 0 {
			l[i].ID = next
			next++
		}
	}
}

// Add appends t with a fresh id and returns the stored copy.
func (l *List) Add(t Task) Task {
	t.ID = l.nextID()
	*l = append(*l, t)
	return t
}

// Index converts a 1-based task number into a position in the list.
func (l List) Index(number string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(number))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIndex, number)
	}
	if n > len(l) {
		return 0, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, n, len(l))
	}
	return n - 1, nil
}

func (l List) checkPosition(i int) error {
	if i < 0 || i >= len(l) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i+1, len(l))
	}
	return nil
}

// Edit replaces the description of the task at position i.
func (l List) Edit(i int, description string) error {
	if err := l.checkPosition(i); err != nil {
		return err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return ErrEmptyDescription
	}
	l[i].Description = description
	return nil
}

// Delete removes the task at position i, keeping the order of the rest.
func (l *List) Delete(i int) (Task, error) {
	if err := l.checkPosition(i); err != nil {
		return Task{}, err
	}
	removed := (*l)[i]
	*l = append((*l)[:i], (*l)[i+1:]...)
	return removed, nil
}

// Mark sets the task at position i done. It reports whether anything changed.
func (l List) Mark(i int) (bool, error) {
	if err := l.checkPosition(i); err != nil {
		return false, err
	}
	if l[i].Done {
		return false, nil
	}
	l[i].Done = true
	return true, nil
}

// HasGroup reports whether any task belongs to group.
func (l List) HasGroup(group string) bool {
	for _, t := range l {
		if t.Group == group {
			return true
		}
	}
	return false
}

// Groups returns the distinct groups in order of first appearance.
func (l List) Groups() []string {
	seen := make(map[string]bool)
	var groups []string
	for _, t := range l {
		if !seen[t.Group] {
			seen[t.Group] = true
			groups = append(groups, t.Group)
		}
	}
	return groups
}

// MakeGroup records a new group by appending a placeholder task.
func (l *List) MakeGroup(group string) (Task, error) {
	if strings.TrimSpace(group) == "" {
		return Task{}, ErrEmptyGroup
	}
	if l.HasGroup(group) {
		return Task{}, fmt.Errorf("%w: %s", ErrGroupExists, group)
	}
	return l.Add(Task{
		Description: PlaceholderDescription,
		Group:       group,
		Priority:    PriorityLow,
	}), nil
}

// SortKey selects the ordering of a view.
type SortKey string

const (
	SortTime      SortKey = "time"
	SortPriority  SortKey = "priority"
	SortInsertion SortKey = "insertion"
)

// ParseSortKey maps a --sort value to a SortKey. An empty value means the
// default (time); unknown values keep insertion order.
func ParseSortKey(s string) SortKey {
	switch strings.TrimSpace(s) {
	case "", string(SortTime):
		return SortTime
	case string(SortPriority):
		return SortPriority
	default:
		return SortInsertion
	}
}

// ViewOptions controls filtering and ordering of a view.
type ViewOptions struct {
	Group string // empty means all groups
	Sort  SortKey
}

// Entry is one row of a view.
type Entry struct {
	Number   int // 1-based, relative to the view
	Position int // 0-based position in the full list
	Task     Task
}

// View filters and sorts the list. Sorting is stable so ties keep
// insertion order. The list itself is not modified.
//
// SortTime is creation order, which is list order since tasks are only
// appended. added_time is not compared: an unfiltered view must number rows
// exactly as edit, delete and mark address them, placeholders and clock
// skew included.
func (l List) View(opts ViewOptions) []Entry {
	entries := make([]Entry, 0, len(l))
	for i, t := range l {
		if opts.Group != "" && t.Group != opts.Group {
			continue
		}
		entries = append(entries, Entry{Position: i, Task: t})
	}

	if opts.Sort == SortPriority {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Task.Priority < entries[j].Task.Priority
		})
	}

	for i := range entries {
		entries[i].Number = i + 1
	}
	return entries
}
