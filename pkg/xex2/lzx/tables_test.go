package lzx

import "testing"

func TestPositionSlotTableMatchesKnownSchedule(t *testing.T) {
	wantFooter := []byte{0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13, 14}
	wantBase := []uint32{0, 1, 2, 3, 4, 6, 8, 12, 16, 24, 32, 48, 64, 96, 128, 192, 256, 384, 512, 768, 1024, 1536, 2048, 3072, 4096, 6144, 8192, 12288, 16384, 24576, 32768}

	for i, want := range wantFooter {
		if footerBits[i] != want {
			t.Errorf("footerBits[%d] = %d, want %d", i, footerBits[i], want)
		}
	}
	for i, want := range wantBase {
		if basePosition[i] != want {
			t.Errorf("basePosition[%d] = %d, want %d", i, basePosition[i], want)
		}
	}
}

func TestPositionSlotTableCoversLargeWindow(t *testing.T) {
	// A 2MiB window must be reachable by some slot's base position.
	const window = 1 << 21
	found := false
	for _, base := range basePosition {
		if base >= window {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("no position slot reaches a %d-byte window", window)
	}
}
