package directory

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"coursechat/app/client/backend"
)

// The last-known list is kept on disk so a cold start with an unreachable
// backend still shows something. One JSON object per line.
const cacheFileName = "conversations.json"

func loadCache(path string) ([]backend.ConversationSummary, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open conversation cache: %w", err)
	}
	defer file.Close()

	var list []backend.ConversationSummary

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var item backend.ConversationSummary
		if err = json.Unmarshal([]byte(line), &item); err != nil {
			return nil, fmt.Errorf("failed to parse cache line: %w", err)
		}

		list = append(list, item)
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading conversation cache: %w", err)
	}

	return list, nil
}

func saveCache(path string, list []backend.ConversationSummary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open conversation cache: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	for _, item := range list {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal conversation: %w", err)
		}
		if _, err = writer.WriteString(string(data) + "\n"); err != nil {
			return fmt.Errorf("failed to write conversation: %w", err)
		}
	}

	if err = writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}

	return nil
}
