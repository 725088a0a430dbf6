package worker

import (
	"context"
	"errors"
	"testing"

	"fluxo/internal/amqp"
	"fluxo/internal/core"
)

type fakeWarmer struct {
	invalidations int
	warms         int
	err           error
}

func (f *fakeWarmer) Invalidate() { f.invalidations++ }

func (f *fakeWarmer) Warm(context.Context) error {
	f.warms++
	return f.err
}

func TestImportWatcher(t *testing.T) {
	target := &fakeWarmer{}
	w := NewImportWatcher(target, nil)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 2, 1} {
		if err := w.HandleImportCompleted(ctx, &amqp.ImportCompletedMessage{ImportID: id}); err != nil {
			t.Fatalf("HandleImportCompleted(%d) error = %v", id, err)
		}
	}
	if target.invalidations != 2 || target.warms != 2 {
		t.Errorf("invalidations=%d warms=%d, want 2/2", target.invalidations, target.warms)
	}
}

func TestImportWatcherErrors(t *testing.T) {
	ctx := context.Background()

	bad := &fakeWarmer{err: &core.MalformedDataError{Column: "Data", Reason: "required column not found"}}
	if err := NewImportWatcher(bad, nil).HandleImportCompleted(ctx, &amqp.ImportCompletedMessage{ImportID: 1}); err != nil {
		t.Errorf("malformed data should be acknowledged, got %v", err)
	}

	flaky := &fakeWarmer{err: errors.New("disk I/O error")}
	w := NewImportWatcher(flaky, nil)
	if err := w.HandleImportCompleted(ctx, &amqp.ImportCompletedMessage{ImportID: 1}); err == nil {
		t.Error("transient errors should be returned for requeue")
	}

	flaky.err = nil
	if err := w.HandleImportCompleted(ctx, &amqp.ImportCompletedMessage{ImportID: 1}); err != nil {
		t.Errorf("retry error = %v", err)
	}
	if flaky.warms != 2 {
		t.Errorf("warms = %d, want 2", flaky.warms)
	}
}
