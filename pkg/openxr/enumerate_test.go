package openxr

import "testing"

func TestTwoCallFillsReportedCount(t *testing.T) {
	want := []float32{72, 90, 120}

	calls := 0
	got, res := TwoCall(func(capacity uint32, count *uint32, items []float32) Result {
		calls++
		*count = uint32(len(want))
		if capacity == 0 {
			if items != nil {
				t.Error("size query should receive a nil slice")
			}
			return Success
		}
		if int(capacity) != len(want) {
			t.Errorf("expected fill capacity %d, got %d", len(want), capacity)
		}
		copy(items, want)
		return Success
	})

	if res != Success {
		t.Fatalf("expected success, got %v", res)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestTwoCallZeroCountSkipsFill(t *testing.T) {
	calls := 0
	got, res := TwoCall(func(capacity uint32, count *uint32, items []uint32) Result {
		calls++
		*count = 0
		return Success
	})

	if res != Success {
		t.Fatalf("expected success, got %v", res)
	}
	if calls != 1 {
		t.Errorf("expected only the size query, got %d calls", calls)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d items", len(got))
	}
}

func TestTwoCallTruncatesToFinalCount(t *testing.T) {
	got, res := TwoCall(func(capacity uint32, count *uint32, items []byte) Result {
		if capacity == 0 {
			*count = 4
			return Success
		}
		copy(items, "ab")
		*count = 2
		return Success
	})

	if res != Success {
		t.Fatalf("expected success, got %v", res)
	}
	if string(got) != "ab" {
		t.Errorf("expected truncated result %q, got %q", "ab", string(got))
	}
}

func TestTwoCallSizeQueryFailure(t *testing.T) {
	got, res := TwoCall(func(capacity uint32, count *uint32, items []byte) Result {
		return ErrorRuntimeFailure
	})
	if res != ErrorRuntimeFailure {
		t.Errorf("expected runtime failure, got %v", res)
	}
	if got != nil {
		t.Error("expected nil result on failure")
	}
}
