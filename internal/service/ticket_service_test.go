package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketSequencerFormato(t *testing.T) {
	ctx := context.Background()
	seq := NewTicketSequencer(newFakeContadorRepo(41))

	primero, err := seq.Next(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "000042", primero)

	segundo, err := seq.Next(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "000043", segundo)
}

func TestTicketSequencerAnchoFijo(t *testing.T) {
	ctx := context.Background()

	// Past six digits the number keeps growing; it is never truncated.
	seq := NewTicketSequencer(newFakeContadorRepo(999998))
	n, err := seq.Next(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "999999", n)

	n, err = seq.Next(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "1000000", n)
}

func TestTicketSequencerConcurrente(t *testing.T) {
	ctx := context.Background()
	seq := NewTicketSequencer(newFakeContadorRepo(0))

	const goroutines = 50
	var (
		mu      sync.Mutex
		emitido = make(map[string]struct{}, goroutines)
		wg      sync.WaitGroup
	)
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			n, err := seq.Next(ctx, nil)
			assert.NoError(t, err)
			mu.Lock()
			emitido[n] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, emitido, goroutines, "every caller got a distinct number")
}

func TestTicketSequencerContadorCaido(t *testing.T) {
	ctx := context.Background()
	repo := newFakeContadorRepo(10)
	repo.failNext = assert.AnError
	seq := NewTicketSequencer(repo)

	_, err := seq.Next(ctx, nil)
	assert.ErrorIs(t, err, ErrSecuenciaNoDisponible)

	// After recovery the sequence resumes where it left off: the failed
	// attempt never consumed a number.
	repo.failNext = nil
	n, err := seq.Next(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "000011", n)
}
