package store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/PolarWolf314/ssaidctl/internal/executor"
)

// Backup copies the store at src to dst, creating dst's directory and
// restricting the copy to owner-only access. The store is copied in its
// native encoding.
func Backup(ctx context.Context, e executor.Executor, src, dst string) error {
	line := fmt.Sprintf("mkdir -p %s && cp -f %s %s && chmod %s %s",
		executor.Quote(filepath.Dir(dst)),
		executor.Quote(src), executor.Quote(dst),
		StoreMode, executor.Quote(dst))

	if _, err := executor.Run(ctx, e, line); err != nil {
		return fmt.Errorf("backing up %s to %s: %w", src, dst, err)
	}
	return nil
}
