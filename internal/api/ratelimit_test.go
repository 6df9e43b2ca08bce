package api

import (
	"testing"
	"time"
)

func TestUploadLimiterBurst(t *testing.T) {
	u := newUploadLimiter()
	for i := 0; i < uploadBurst; i++ {
		if !u.allow("s1") {
			t.Fatalf("upload %d within burst should be allowed", i)
		}
	}
	if u.allow("s1") {
		t.Errorf("upload beyond burst should be rejected")
	}
	if !u.allow("s2") {
		t.Errorf("a different session has its own bucket")
	}
}

func TestUploadLimiterPrune(t *testing.T) {
	u := newUploadLimiter()
	u.allow("stale")
	u.limiters["stale"].lastAccess = time.Now().Add(-2 * limiterIdleTTL)
	u.allow("active")

	u.prune()

	if _, ok := u.limiters["stale"]; ok {
		t.Errorf("stale limiter should be pruned")
	}
	if _, ok := u.limiters["active"]; !ok {
		t.Errorf("active limiter should survive pruning")
	}
}
