package list

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"start-page/domain"
)

type note struct {
	ID   string
	Text string
	Done bool
	Seq  int
}

func (n note) Key() string { return n.ID }

type notePatch struct {
	Text *string
	Done *bool
}

func applyNotePatch(n note, p notePatch) note {
	if p.Text != nil {
		n.Text = *p.Text
	}
	if p.Done != nil {
		n.Done = *p.Done
	}
	return n
}

var errRemote = errors.New("remote unavailable")

// fakeRemote is an in-memory collection that assigns ids and sequence numbers
// like the table store does.
type fakeRemote struct {
	mu     sync.Mutex
	rows   map[string]note
	seq    int
	calls  map[string]int
	failOn map[string]error
}

func newFakeRemote(rows ...note) *fakeRemote {
	f := &fakeRemote{rows: map[string]note{}, calls: map[string]int{}, failOn: map[string]error{}}
	for _, r := range rows {
		f.seq++
		if r.Seq == 0 {
			r.Seq = f.seq
		}
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeRemote) fail(op string, err error) {
	f.mu.Lock()
	f.failOn[op] = err
	f.mu.Unlock()
}

func (f *fakeRemote) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRemote) SelectAllOrdered(_ context.Context, order domain.Order) ([]note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["select"]++
	if err := f.failOn["select"]; err != nil {
		return nil, err
	}
	out := make([]note, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if order.Descending {
			return out[i].Seq > out[j].Seq
		}
		return out[i].Seq < out[j].Seq
	})
	if order.Limit > 0 && len(out) > order.Limit {
		out = out[:order.Limit]
	}
	return out, nil
}

func (f *fakeRemote) Insert(_ context.Context, n note) (note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["insert"]++
	if err := f.failOn["insert"]; err != nil {
		return note{}, err
	}
	f.seq++
	n.ID = fmt.Sprintf("n%d", f.seq)
	n.Seq = f.seq
	f.rows[n.ID] = n
	return n, nil
}

func (f *fakeRemote) Update(_ context.Context, id string, p notePatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["update"]++
	if err := f.failOn["update"]; err != nil {
		return err
	}
	r, ok := f.rows[id]
	if !ok {
		return fmt.Errorf("row %s: not found", id)
	}
	f.rows[id] = applyNotePatch(r, p)
	return nil
}

func (f *fakeRemote) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	if err := f.failOn["delete"]; err != nil {
		return err
	}
	delete(f.rows, id)
	return nil
}
