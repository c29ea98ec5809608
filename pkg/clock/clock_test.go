package clock

import (
	"sync"
	"testing"
	"time"
)

func TestNextUID_StrictlyIncreasing(t *testing.T) {
	frozen := time.Date(2017, 10, 26, 9, 30, 0, 0, time.UTC)
	clk, err := New(DefaultConfig(), WithSource(func() time.Time { return frozen }))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	prev := clk.NextUID()
	for i := 0; i < 1000; i++ {
		next := clk.NextUID()
		if next <= prev {
			t.Fatalf("uid %d (%s) not greater than previous %d (%s)", next, next, prev, prev)
		}
		if next.String() <= prev.String() {
			t.Fatalf("uid string %s does not sort after %s", next, prev)
		}
		prev = next
	}
}

func TestNextUID_ConcurrentUnique(t *testing.T) {
	clk, err := New(nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	const workers, perWorker = 8, 500
	ch := make(chan UID, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ch <- clk.NextUID()
			}
		}()
	}
	wg.Wait()
	close(ch)

	seen := make(map[UID]bool)
	for uid := range ch {
		if seen[uid] {
			t.Fatalf("duplicate uid %s", uid)
		}
		seen[uid] = true
	}
}

func TestNextUID_SharedAcrossClocks(t *testing.T) {
	frozen := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	a, _ := New(nil, WithSource(func() time.Time { return frozen }))
	b, _ := New(nil, WithSource(func() time.Time { return frozen }))

	first := a.NextUID()
	second := b.NextUID()
	if second <= first {
		t.Errorf("second clock issued %s, not after %s", second, first)
	}
}

func TestUID_RoundTrip(t *testing.T) {
	uid := UID(1509023311481023456)
	if got := uid.String(); got != "1509023311.481023456" {
		t.Fatalf("String() = %q", got)
	}
	parsed, err := ParseUID(uid.String())
	if err != nil {
		t.Fatalf("ParseUID() failed: %v", err)
	}
	if parsed != uid {
		t.Errorf("ParseUID() = %d, want %d", parsed, uid)
	}

	for _, bad := range []string{"", "123", "1.2", "x.123456789"} {
		if _, err := ParseUID(bad); err == nil {
			t.Errorf("ParseUID(%q) expected error", bad)
		}
	}
}

func TestFormat_ReferenceZone(t *testing.T) {
	clk, err := New(&Config{Zone: "UTC"})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("zoneinfo unavailable: %v", err)
	}
	ts := time.Date(2017, 10, 26, 11, 5, 9, 0, berlin)

	if got, want := clk.Format(ts), "09:05:09 10/26/17 UTC"; got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(&Config{Zone: "Not/AZone"}); err == nil {
		t.Error("expected error for unknown zone")
	}
}

func TestUID_Text(t *testing.T) {
	uid := UID(1509023311000000042)
	text, err := uid.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() failed: %v", err)
	}
	var back UID
	if err := back.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText() failed: %v", err)
	}
	if back != uid {
		t.Errorf("got %d, want %d", back, uid)
	}
}
