package pac

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxykit/paceval/internal/clock"
)

func TestIsPlainHostName(t *testing.T) {
	assert.True(t, isPlainHostName("intranet"))
	assert.True(t, isPlainHostName(""))
	assert.False(t, isPlainHostName("www.example.com"))
	assert.False(t, isPlainHostName("example."))
}

func TestDnsDomainIs(t *testing.T) {
	assert.True(t, dnsDomainIs("www.example.com", ".com"))
	assert.True(t, dnsDomainIs("www.example.com", ".example.com"))
	assert.False(t, dnsDomainIs("www.example.com", ".org"))
	// Bare suffix compare, no boundary check.
	assert.True(t, dnsDomainIs("flycom", "com"))
}

func TestLocalHostOrDomainIs(t *testing.T) {
	tests := []struct {
		host    string
		hostdom string
		want    bool
	}{
		{"www.example.com", "www.example.com", true},
		{"www.example.com", "www.example.org", false},
		{"www", "www.example.com", true},
		{"home", "www.example.com", false},
		{"www", "www", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, localHostOrDomainIs(tt.host, tt.hostdom),
			"localHostOrDomainIs(%q, %q)", tt.host, tt.hostdom)
	}
}

func TestDnsDomainLevels(t *testing.T) {
	assert.Equal(t, 0, dnsDomainLevels("intranet"))
	assert.Equal(t, 1, dnsDomainLevels("example.com"))
	assert.Equal(t, 2, dnsDomainLevels("www.example.com"))
}

func TestShExpMatch(t *testing.T) {
	tests := []struct {
		str   string
		shexp string
		want  bool
	}{
		{"www.example.com", "*.example.com", true},
		{"www.evil.com", "*.example.com", false},
		{"www.example.com", "*", true},
		{"ab", "a?", true},
		{"abc", "a?", false},
		{"http://proxy/file.html", "*proxy*", true},
	}
	for _, tt := range tests {
		got, err := shExpMatch(tt.str, tt.shexp)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "shExpMatch(%q, %q)", tt.str, tt.shexp)
	}
}

// Characters other than '?' and '*' are not escaped, so regexp
// metacharacters in a glob keep their regexp meaning. This pins the
// classic looseness rather than fixing it.
func TestShExpMatchMetacharacterLooseness(t *testing.T) {
	got, err := shExpMatch("aab", "a+b")
	require.NoError(t, err)
	assert.True(t, got, "'+' behaves as a regexp quantifier, not a literal")

	got, err = shExpMatch("wwwXexample.com", "www.example.com")
	require.NoError(t, err)
	assert.True(t, got, "'.' behaves as a regexp wildcard, not a literal")

	// An unbalanced pattern fails to compile and surfaces as an error.
	_, err = shExpMatch("anything", "oops[")
	assert.Error(t, err)
}

// 14:30:45 local on Wednesday, 12:30:45 UTC (still Wednesday).
func testSnapshot() clock.Snapshot {
	zone := time.FixedZone("UTC+2", 2*3600)
	return clock.At(time.Date(2026, 8, 26, 14, 30, 45, 0, zone))
}

func TestWeekdayRange(t *testing.T) {
	snap := testSnapshot() // Wednesday

	assert.True(t, weekdayRange(snap, []string{"WED"}))
	assert.False(t, weekdayRange(snap, []string{"THU"}))
	assert.True(t, weekdayRange(snap, []string{"MON", "FRI"}))
	assert.False(t, weekdayRange(snap, []string{"SAT", "SUN"}))
	// Wrap-around range FRI..MON covers Fri, Sat, Sun, Mon only.
	assert.False(t, weekdayRange(snap, []string{"FRI", "MON"}))

	sunday := clock.At(time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC))
	assert.True(t, weekdayRange(sunday, []string{"FRI", "MON"}))

	assert.False(t, weekdayRange(snap, []string{"NOPE"}))
	assert.False(t, weekdayRange(snap, nil))
	assert.False(t, weekdayRange(snap, []string{"MON", "TUE", "WED"}))
}

func TestWeekdayRangeGMT(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*3600)
	// Monday 01:00 local, Sunday 23:00 UTC.
	snap := clock.At(time.Date(2026, 8, 24, 1, 0, 0, 0, zone))

	assert.True(t, weekdayRange(snap, []string{"MON"}))
	assert.False(t, weekdayRange(snap, []string{"MON", "GMT"}))
	assert.True(t, weekdayRange(snap, []string{"SUN", "GMT"}))
}

func TestTimeRange(t *testing.T) {
	snap := testSnapshot() // 14:30:45 local

	t.Run("single hour", func(t *testing.T) {
		assert.True(t, timeRange(snap, []int{14}, false))
		assert.False(t, timeRange(snap, []int{15}, false))
	})

	t.Run("hour range is half-open", func(t *testing.T) {
		assert.True(t, timeRange(snap, []int{9, 17}, false))
		assert.False(t, timeRange(snap, []int{15, 17}, false))
		assert.False(t, timeRange(snap, []int{9, 14}, false))
	})

	t.Run("hour-minute range defaults upper seconds to 59", func(t *testing.T) {
		assert.True(t, timeRange(snap, []int{14, 0, 14, 30}, false))
		assert.False(t, timeRange(snap, []int{14, 0, 14, 29}, false))
	})

	t.Run("full range is inclusive", func(t *testing.T) {
		assert.True(t, timeRange(snap, []int{14, 30, 45, 14, 30, 45}, false))
		assert.False(t, timeRange(snap, []int{14, 30, 46, 15, 0, 0}, false))
	})

	t.Run("gmt flag uses utc fields", func(t *testing.T) {
		// 12:30:45 UTC.
		assert.True(t, timeRange(snap, []int{12}, true))
		assert.False(t, timeRange(snap, []int{14}, true))
	})

	t.Run("unsupported arities are false", func(t *testing.T) {
		assert.False(t, timeRange(snap, nil, false))
		assert.False(t, timeRange(snap, []int{9, 0, 17}, false))
		assert.False(t, timeRange(snap, []int{9, 0, 17, 0, 0}, false))
	})
}
