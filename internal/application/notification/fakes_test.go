package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// fakeSender responde con los errores de errs en orden; después, éxito.
type fakeSender struct {
	mu       sync.Mutex
	errs     []error
	payloads [][]byte
}

func (s *fakeSender) Send(_ context.Context, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}

func (s *fakeSender) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payloads)
}

type failedMark struct {
	id  int64
	msg string
}

// fakeQueue cola en memoria con los mismos criterios que la tabla.
type fakeQueue struct {
	mu         sync.Mutex
	items      []*entity.NotificationQueueItem
	enqueueErr error
	deleted    []int64
	failed     []failedMark
	nextID     int64
}

func (q *fakeQueue) Enqueue(_ context.Context, payload []byte, errMsg string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.nextID++
	q.items = append(q.items, &entity.NotificationQueueItem{ID: q.nextID, Payload: payload, Error: errMsg, CreatedAt: time.Now()})
	return nil
}

func (q *fakeQueue) FetchPending(_ context.Context, maxTries, limit int) ([]*entity.NotificationQueueItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*entity.NotificationQueueItem
	for _, it := range q.items {
		if it.Tries < maxTries && len(out) < limit {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (q *fakeQueue) Delete(_ context.Context, id int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deleted = append(q.deleted, id)
	kept := q.items[:0]
	for _, it := range q.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	q.items = kept
	return nil
}

func (q *fakeQueue) MarkFailed(_ context.Context, id int64, errMsg string, at time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failed = append(q.failed, failedMark{id: id, msg: errMsg})
	for _, it := range q.items {
		if it.ID == id {
			it.Tries++
			it.Error = errMsg
			it.LastTried = &at
		}
	}
	return nil
}

var errTelegram = errors.New("telegram: HTTP 502: Bad Gateway")
