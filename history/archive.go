package history

import "time"

// Record is one archived turn.
type Record struct {
	ID               string    `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	UserMessage      string    `json:"user_message"`
	AssistantMessage string    `json:"assistant_message"`
}

// Archive receives every archived record. It only ever grows.
type Archive interface {
	Put(rec Record) error
	Len() int
	// Records returns all records in the order they were put.
	Records() []Record
}

// MemoryArchive keeps records in process memory, keyed by ID.
type MemoryArchive struct {
	byID  map[string]Record
	order []string
}

func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{
		byID: make(map[string]Record),
	}
}

func (a *MemoryArchive) Put(rec Record) error {
	if _, exists := a.byID[rec.ID]; !exists {
		a.order = append(a.order, rec.ID)
	}
	a.byID[rec.ID] = rec
	return nil
}

func (a *MemoryArchive) Len() int {
	return len(a.byID)
}

// Get looks up a record by ID.
func (a *MemoryArchive) Get(id string) (Record, bool) {
	rec, ok := a.byID[id]
	return rec, ok
}

func (a *MemoryArchive) Records() []Record {
	records := make([]Record, 0, len(a.order))
	for _, id := range a.order {
		records = append(records, a.byID[id])
	}
	return records
}
