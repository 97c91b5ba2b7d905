package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spin animates msg on w until the returned stop function is called or ctx
// ends. stop clears the line and may be called more than once.
func spin(ctx context.Context, w io.Writer, msg string) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		tick := time.NewTicker(spinnerInterval)
		defer tick.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(w, "\r%s %s", styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(msg))
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-finished
			fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", len(msg)+4))
		})
	}
}
