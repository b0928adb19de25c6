package reporter

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

const ctrlC = 3

// Controls are the actions reachable from the keyboard
type Controls struct {
	TogglePause func()
	Quit        func()
}

// ListenKeys puts in into raw mode and dispatches single key presses until
// ctx is cancelled or quit is pressed. The terminal is restored on return.
func ListenKeys(ctx context.Context, in *os.File, controls Controls) error {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("stdin is not a terminal")
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return errors.Wrap(err, "failed to set raw mode")
	}
	defer term.Restore(fd, oldState)

	keyCh := make(chan byte, 10)
	go func() {
		buf := make([]byte, 3)
		for {
			n, err := in.Read(buf)
			if err != nil {
				close(keyCh)
				return
			}
			for i := 0; i < n; i++ {
				keyCh <- buf[i]
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case key, ok := <-keyCh:
			if !ok {
				return nil
			}
			if handleKey(key, controls) {
				return nil
			}
		}
	}
}

// handleKey reports whether the listener should stop
func handleKey(key byte, controls Controls) bool {
	switch key {
	case 'p', 'P', ' ':
		if controls.TogglePause != nil {
			controls.TogglePause()
		}
	case 'q', 'Q', ctrlC:
		if controls.Quit != nil {
			controls.Quit()
		}
		return true
	}
	return false
}
