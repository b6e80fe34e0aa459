package disposable_test

import (
	"sync"
	"testing"

	"mailguard/internal/disposable"
	"mailguard/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_NewIsEmpty(t *testing.T) {
	c := disposable.New()

	require.Equal(t, uint64(0), c.CurrentVersion())
	require.Equal(t, 0, c.Size())
	require.True(t, c.LastRefresh().IsZero())
	require.False(t, c.Lookup("mailinator.com"))
}

func TestCache_ReplaceSwapsWholeSet(t *testing.T) {
	c := disposable.New()

	prev := c.Replace(domain.NewDomainSet("mailinator.com", "guerrillamail.com"))
	require.Equal(t, uint64(0), prev)
	require.Equal(t, uint64(1), c.CurrentVersion())
	require.True(t, c.Lookup("mailinator.com"))
	require.True(t, c.Lookup("guerrillamail.com"))
	require.False(t, c.LastRefresh().IsZero())

	prev = c.Replace(domain.NewDomainSet("yopmail.com"))
	require.Equal(t, uint64(1), prev)
	require.Equal(t, uint64(2), c.CurrentVersion())
	require.True(t, c.Lookup("yopmail.com"))
	require.False(t, c.Lookup("mailinator.com"), "removed domains must not match after refresh")
	require.Equal(t, 1, c.Size())
}

func TestCache_ReplaceNilInstallsEmptySet(t *testing.T) {
	c := disposable.New()
	c.Replace(domain.NewDomainSet("mailinator.com"))

	c.Replace(nil)
	require.Equal(t, uint64(2), c.CurrentVersion())
	require.Equal(t, 0, c.Size())
}

func TestCache_SnapshotIsConsistent(t *testing.T) {
	c := disposable.New()
	c.Replace(domain.NewDomainSet("a.com", "b.com"))

	s := c.Snapshot()
	require.Equal(t, uint64(1), s.Version)
	require.Equal(t, 2, s.Set.Len())
	require.Equal(t, c.LastRefresh(), s.RefreshedAt)
}

// TestCache_ConcurrentReadersNeverSeeTornSets alternates between two sets that
// never share members and checks that every snapshot a reader takes is one of
// them in full.
func TestCache_ConcurrentReadersNeverSeeTornSets(t *testing.T) {
	c := disposable.New()
	setA := domain.NewDomainSet("a1.com", "a2.com", "a3.com")
	setB := domain.NewDomainSet("b1.com", "b2.com")
	c.Replace(setA)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				s := c.Snapshot()
				switch {
				case s.Set.Contains("a1.com"):
					assert.True(t, s.Set.Contains("a3.com"))
					assert.False(t, s.Set.Contains("b1.com"))
				case s.Set.Contains("b1.com"):
					assert.True(t, s.Set.Contains("b2.com"))
					assert.False(t, s.Set.Contains("a1.com"))
				default:
					t.Errorf("observed an unexpected set with %d domains", s.Set.Len())

					return
				}
			}
		}()
	}

	var last uint64
	for i := range 1000 {
		if i%2 == 0 {
			c.Replace(setB)
		} else {
			c.Replace(setA)
		}
		v := c.CurrentVersion()
		require.Greater(t, v, last)
		last = v
	}
	close(stop)
	wg.Wait()

	require.Equal(t, uint64(1001), c.CurrentVersion())
}
