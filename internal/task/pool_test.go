package task

import (
	"errors"
	"testing"
	"time"

	"isoterrain/internal/mesh"
)

func waitTake(t *testing.T, h *Handle) Result {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if res, ok := h.TryTake(); ok {
			return res
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("task did not complete in time")
	return Result{}
}

func TestSpawnDeliversResult(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	want := &mesh.Data{Positions: []float32{1, 2, 3}}
	h := p.Spawn(func() (*mesh.Data, error) {
		return want, nil
	})

	res := waitTake(t, h)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Data != want {
		t.Errorf("got %p, want %p", res.Data, want)
	}
}

func TestSpawnDeliversError(t *testing.T) {
	p := NewPool(1)
	defer p.Close()

	wantErr := errors.New("device lost")
	h := p.Spawn(func() (*mesh.Data, error) {
		return nil, wantErr
	})

	res := waitTake(t, h)
	if !errors.Is(res.Err, wantErr) {
		t.Errorf("got error %v, want %v", res.Err, wantErr)
	}
	if res.Data != nil {
		t.Errorf("got data %v alongside error", res.Data)
	}
}

func TestTryTakeBeforeCompletion(t *testing.T) {
	p := NewPool(1)
	defer p.Close()

	release := make(chan struct{})
	h := p.Spawn(func() (*mesh.Data, error) {
		<-release
		return &mesh.Data{}, nil
	})

	if _, ok := h.TryTake(); ok {
		t.Error("TryTake reported ok while task still running")
	}
	close(release)
	waitTake(t, h)
}

func TestTryTakeAtMostOnce(t *testing.T) {
	p := NewPool(1)
	defer p.Close()

	h := p.Spawn(func() (*mesh.Data, error) {
		return &mesh.Data{}, nil
	})
	waitTake(t, h)

	if _, ok := h.TryTake(); ok {
		t.Error("second TryTake returned a result again")
	}
}

func TestDroppedHandleStillRuns(t *testing.T) {
	p := NewPool(1)

	ran := make(chan struct{})
	p.Spawn(func() (*mesh.Data, error) {
		close(ran)
		return nil, nil
	})
	p.Close()

	select {
	case <-ran:
	default:
		t.Error("work did not run after pool drain")
	}
}
