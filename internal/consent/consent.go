package consent

import (
	"log/slog"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"
)

// Session is one consent window. Closed flips exactly once.
type Session struct {
	closed atomic.Bool
}

func (s *Session) Closed() bool {
	return s.closed.Load()
}

func (s *Session) Close() {
	s.closed.Store(true)
}

// BrowserOpener launches the system browser at the authorization URL. The
// service cannot observe an external browser window directly, so the
// front end reports closure via MarkClosed (wired to an HTTP endpoint).
type BrowserOpener struct {
	mu      sync.Mutex
	current *Session
	logger  *slog.Logger
}

func NewBrowserOpener(logger *slog.Logger) *BrowserOpener {
	return &BrowserOpener{logger: logger}
}

func (o *BrowserOpener) Open(url string) (*Session, error) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	session := &Session{}

	o.mu.Lock()
	o.current = session
	o.mu.Unlock()

	o.logger.Info("Opened consent window", "url", url)
	return session, nil
}

// MarkClosed signals that the current consent window was closed.
func (o *BrowserOpener) MarkClosed() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current != nil {
		o.current.Close()
	}
}
