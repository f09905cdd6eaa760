package resolve

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticLookup(t *testing.T) {
	s := NewStatic(map[string]string{"www.example.com": "93.184.216.34"})

	r := <-s.Lookup(context.Background(), "www.example.com")
	require.NoError(t, r.Err)
	assert.Equal(t, "93.184.216.34", r.Address)

	r = <-s.Lookup(context.Background(), "missing.example.com")
	assert.ErrorIs(t, r.Err, ErrNotFound)

	assert.Equal(t, 2, s.Calls())
}

func TestStaticResolvesIPLiterals(t *testing.T) {
	s := NewStatic(nil)

	r := <-s.Lookup(context.Background(), "10.0.0.5")
	require.NoError(t, r.Err)
	assert.Equal(t, "10.0.0.5", r.Address)
}

func TestStaticDelayRespectsContext(t *testing.T) {
	s := NewStatic(map[string]string{"slow.example.com": "10.0.0.1"})
	s.SetDelay("slow.example.com", time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	pending := s.Lookup(ctx, "slow.example.com")
	cancel()

	select {
	case r := <-pending:
		assert.ErrorIs(t, r.Err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("lookup did not settle after cancellation")
	}
}

func TestStaticDelayOrdersCompletions(t *testing.T) {
	s := NewStatic(map[string]string{
		"slow.example.com": "10.0.0.1",
		"fast.example.com": "10.0.0.2",
	})
	s.SetDelay("slow.example.com", 50*time.Millisecond)

	ctx := context.Background()
	slow := s.Lookup(ctx, "slow.example.com")
	fast := s.Lookup(ctx, "fast.example.com")

	r := <-fast
	require.NoError(t, r.Err)
	assert.Equal(t, "10.0.0.2", r.Address)

	r = <-slow
	require.NoError(t, r.Err)
	assert.Equal(t, "10.0.0.1", r.Address)
}

func TestSystemLookupLiteral(t *testing.T) {
	s := &System{Timeout: 2 * time.Second}
	r := <-s.Lookup(context.Background(), "127.0.0.1")
	require.NoError(t, r.Err)
	assert.Equal(t, "127.0.0.1", r.Address)
}

func TestPickPrefersIPv4(t *testing.T) {
	assert.Equal(t, "", pick(nil))
	assert.Equal(t, "10.0.0.1", pick([]string{"::1", "10.0.0.1"}))
	assert.Equal(t, "::1", pick([]string{"::1"}))
}
