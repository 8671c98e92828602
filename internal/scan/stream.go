package scan

import "context"

// Stream walks the root and streams FileVisit entries over a channel.
// If filesOnly is true, directory entries are omitted. The walk stops
// sending once ctx is done; errCh then receives ctx.Err().
// errCh receives a single error (nil on success).
func Stream(ctx context.Context, root string, opts Options, filesOnly bool) (<-chan FileVisit, <-chan error) {
	out := make(chan FileVisit, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)
		canceled := false
		err := ScanWithOptions(root, opts, func(fv FileVisit) {
			if canceled || (filesOnly && fv.IsDir) {
				return
			}
			if ctx.Err() != nil {
				canceled = true
				return
			}
			select {
			case out <- fv:
			case <-ctx.Done():
				canceled = true
			}
		})
		if err == nil && canceled {
			err = ctx.Err()
		}
		errCh <- err
	}()

	return out, errCh
}
