package gradio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// readEvents consumes a /call result stream until it completes or fails.
// Events are "generating", "heartbeat", "complete" and "error"; each data
// payload sits on a single line.
func readEvents(r io.Reader, endpoint string) ([]any, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 32*1024*1024)

	event := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			event = ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			switch event {
			case "complete":
				var data []any
				if err := json.Unmarshal([]byte(payload), &data); err != nil {
					return nil, fmt.Errorf("failed to decode %s result: %w", endpoint, err)
				}
				return data, nil
			case "error":
				return nil, &AppError{Endpoint: endpoint, Message: errorMessage(payload)}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s result: %w", endpoint, err)
	}
	return nil, fmt.Errorf("%s: stream closed before completion", endpoint)
}

func errorMessage(payload string) string {
	if payload == "" || payload == "null" {
		return ""
	}
	var msg string
	if err := json.Unmarshal([]byte(payload), &msg); err == nil {
		return msg
	}
	return payload
}
