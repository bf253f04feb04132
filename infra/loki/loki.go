package loki

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	flushThreshold = 20
	flushInterval  = time.Second
	pushTimeout    = 5 * time.Second
)

// Writer is an io.Writer that buffers log lines and ships them to Loki's
// push API in the background. Loggers can fan out to it with io.MultiWriter.
type Writer struct {
	url    string
	labels map[string]string
	client *http.Client

	mu  sync.Mutex
	buf []entry

	ticker *time.Ticker
	done   chan struct{}
}

type entry struct {
	ts   string
	line string
}

// NewWriter returns a Writer pushing to url (e.g. http://loki:3100) with
// the given stream job label. Returns nil when url or job is empty, so
// callers can pass it straight to io.MultiWriter guards.
func NewWriter(url, job string) *Writer {
	if url == "" || job == "" {
		return nil
	}
	w := &Writer{
		url:    strings.TrimSuffix(url, "/") + "/loki/api/v1/push",
		labels: map[string]string{"job": job},
		client: &http.Client{Timeout: pushTimeout},
		buf:    make([]entry, 0, 64),
		ticker: time.NewTicker(flushInterval),
		done:   make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Writer) Write(p []byte) (int, error) {
	now := strconv.FormatInt(time.Now().UnixNano(), 10)
	full := false
	w.mu.Lock()
	for _, line := range bytes.Split(p, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		w.buf = append(w.buf, entry{ts: now, line: string(line)})
	}
	full = len(w.buf) >= flushThreshold
	w.mu.Unlock()
	if full {
		w.flush()
	}
	return len(p), nil
}

func (w *Writer) loop() {
	for {
		select {
		case <-w.done:
			return
		case <-w.ticker.C:
			w.flush()
		}
	}
}

func (w *Writer) flush() {
	w.mu.Lock()
	if len(w.buf) == 0 {
		w.mu.Unlock()
		return
	}
	entries := w.buf
	w.buf = make([]entry, 0, 64)
	w.mu.Unlock()

	values := make([][]string, len(entries))
	for i, e := range entries {
		values[i] = []string{e.ts, e.line}
	}
	body := map[string]interface{}{
		"streams": []map[string]interface{}{
			{"stream": w.labels, "values": values},
		},
	}
	raw, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, w.url, bytes.NewReader(raw))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.client.Do(req)
	if err != nil {
		// Log shipping is best effort, dropped batches are acceptable.
		return
	}
	resp.Body.Close()
}

// Close flushes the remaining buffer and stops the background flusher.
func (w *Writer) Close() error {
	w.ticker.Stop()
	close(w.done)
	w.flush()
	return nil
}
