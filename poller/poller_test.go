package poller

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestOrphans(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	grace := 1 * time.Hour

	testCases := []struct {
		name       string
		stored     map[string]time.Time
		referenced map[string]bool
		want       []string
	}{
		{
			name: "empty bucket",
		},
		{
			name: "referenced objects survive",
			stored: map[string]time.Time{
				"u1_1.jpg": now.Add(-24 * time.Hour),
			},
			referenced: map[string]bool{
				"u1_1.jpg": true,
			},
		},
		{
			name: "recent objects survive the grace period",
			stored: map[string]time.Time{
				"u1_2.jpg": now.Add(-10 * time.Minute),
			},
			referenced: map[string]bool{},
		},
		{
			name: "old unreferenced objects are orphans, sorted",
			stored: map[string]time.Time{
				"u1_3.jpg": now.Add(-2 * time.Hour),
				"u1_1.jpg": now.Add(-24 * time.Hour),
				"u1_2.jpg": now.Add(-10 * time.Minute),
				"u1_4.jpg": now.Add(-3 * time.Hour),
			},
			referenced: map[string]bool{
				"u1_3.jpg": true,
			},
			want: []string{"u1_1.jpg", "u1_4.jpg"},
		},
		{
			name: "object exactly at the grace boundary is an orphan",
			stored: map[string]time.Time{
				"u1_5.jpg": now.Add(-grace),
			},
			referenced: map[string]bool{},
			want:       []string{"u1_5.jpg"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := orphans(tc.stored, tc.referenced, now, grace)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("orphans() returned unexpected diff (-want +got):\n%s", diff)
			}
		})
	}
}
