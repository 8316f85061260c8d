package client

import (
	"bufio"
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/powerstate/pkg/events"
)

// SubscribeEvents streams daemon events until ctx is done or the connection
// drops. The returned channel is closed either way.
func (c *Client) SubscribeEvents(ctx context.Context) <-chan events.Event {
	ch := make(chan events.Event, 16)

	go func() {
		defer close(ch)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://unix/events", nil)
		if err != nil {
			logrus.Errorf("failed to create events request: %v", err)
			return
		}
		req.Header.Set("Accept", "text/event-stream")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			logrus.Errorf("failed to subscribe to events: %v", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			logrus.Errorf("failed to subscribe to events: got %d", resp.StatusCode)
			return
		}

		readEvents(ctx, bufio.NewScanner(resp.Body), ch)
	}()

	return ch
}

// readEvents decodes a text/event-stream. Only the event and data fields
// are used.
func readEvents(ctx context.Context, s *bufio.Scanner, ch chan<- events.Event) {
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var name string
	var data []string
	for s.Scan() {
		line := s.Text()
		if line == "" {
			if len(data) > 0 {
				ev := events.Event{Name: name, Data: []byte(strings.Join(data, "\n"))}
				if ev.Name == "" {
					ev.Name = "message"
				}
				select {
				case ch <- ev:
				case <-ctx.Done():
					return
				}
			}
			name, data = "", nil
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			name = value
		case "data":
			data = append(data, value)
		}
	}
	if err := s.Err(); err != nil && ctx.Err() == nil {
		logrus.Debugf("event stream closed: %v", err)
	}
}
