package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/franz/rstream/internal/store"
	"github.com/franz/rstream/internal/util"
)

func TestInterruptContext_CancelledBySignal(t *testing.T) {
	for _, sig := range []syscall.Signal{syscall.SIGINT, syscall.SIGTERM} {
		t.Run(sig.String(), func(t *testing.T) {
			ctx, stop := interruptContext()
			defer stop()

			if err := syscall.Kill(os.Getpid(), sig); err != nil {
				t.Fatalf("failed to send %v: %v", sig, err)
			}

			select {
			case <-ctx.Done():
				if !errors.Is(ctx.Err(), context.Canceled) {
					t.Errorf("expected context.Canceled, got %v", ctx.Err())
				}
			case <-time.After(5 * time.Second):
				t.Fatalf("context not cancelled after %v", sig)
			}
		})
	}
}

func TestInterruptContext_StopReleases(t *testing.T) {
	ctx, stop := interruptContext()
	stop()

	select {
	case <-ctx.Done():
	default:
		t.Error("expected stop to cancel the context")
	}
}

func TestIngest_NotADirectory(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	file := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err = ingest(context.Background(), st, file)
	if !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
