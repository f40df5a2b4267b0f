package tlsroots

import (
	"crypto/tls"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yndnr/respkv/internal/telemetry/logger"
)

// DefaultDebounce is how long the watcher waits after the last file event
// before reloading.
const DefaultDebounce = 500 * time.Millisecond

// CertWatcher serves a server key pair and reloads it when either file
// changes. A failed reload keeps the previous pair.
type CertWatcher struct {
	certFile string
	keyFile  string
	cert     atomic.Pointer[tls.Certificate]
	reloads  atomic.Int64

	log      logger.Logger
	debounce time.Duration

	fsw      *fsnotify.Watcher
	timerMu  sync.Mutex
	timer    *time.Timer
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// WatcherOption configures a CertWatcher.
type WatcherOption func(*CertWatcher)

// WithLogger sets the logger.
func WithLogger(log logger.Logger) WatcherOption {
	return func(w *CertWatcher) {
		w.log = log
	}
}

// WithDebounce sets how long to wait for file events to settle.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *CertWatcher) {
		w.debounce = d
	}
}

// NewCertWatcher loads the key pair. Call Start to follow changes.
func NewCertWatcher(certFile, keyFile string, opts ...WatcherOption) (*CertWatcher, error) {
	w := &CertWatcher{
		certFile: certFile,
		keyFile:  keyFile,
		log:      logger.Nop(),
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.reload(); err != nil {
		return nil, err
	}
	return w, nil
}

// Start watches the directories holding the key pair. Watching the
// directories rather than the files survives editors and tools that
// replace files by rename.
func (w *CertWatcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tlsroots: create watcher: %w", err)
	}

	dirs := []string{filepath.Dir(w.certFile)}
	if d := filepath.Dir(w.keyFile); d != dirs[0] {
		dirs = append(dirs, d)
	}
	for _, d := range dirs {
		if err := fsw.Add(d); err != nil {
			_ = fsw.Close()
			return fmt.Errorf("tlsroots: watch %s: %w", d, err)
		}
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.loop()

	w.log.Info("certificate watcher started",
		"cert_file", w.certFile,
		"key_file", w.keyFile)
	return nil
}

func (w *CertWatcher) loop() {
	defer w.wg.Done()

	watched := map[string]bool{
		filepath.Clean(w.certFile): true,
		filepath.Clean(w.keyFile):  true,
	}
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !watched[filepath.Clean(ev.Name)] {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.schedule()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error("certificate watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

// schedule restarts the debounce timer.
func (w *CertWatcher) schedule() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.done:
			return
		default:
		}
		if err := w.reload(); err != nil {
			w.log.Error("certificate reload failed",
				"error", err,
				"cert_file", w.certFile)
			return
		}
		w.log.Info("certificate reloaded", "cert_file", w.certFile)
	})
}

// Stop stops watching. It is safe to call more than once.
func (w *CertWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)

		w.timerMu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.timerMu.Unlock()

		if w.fsw != nil {
			err = w.fsw.Close()
		}
		w.wg.Wait()
	})
	return err
}

// GetCertificate returns the current pair. It is meant for
// tls.Config.GetCertificate.
func (w *CertWatcher) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return w.cert.Load(), nil
}

// ServerConfig returns a server TLS config that always presents the
// current pair.
func (w *CertWatcher) ServerConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: w.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}
}

// Reloads returns how many times the pair has been loaded, including the
// initial load.
func (w *CertWatcher) Reloads() int64 {
	return w.reloads.Load()
}

func (w *CertWatcher) reload() error {
	cert, err := tls.LoadX509KeyPair(w.certFile, w.keyFile)
	if err != nil {
		return fmt.Errorf("tlsroots: load key pair: %w", err)
	}
	w.cert.Store(&cert)
	w.reloads.Add(1)
	return nil
}
