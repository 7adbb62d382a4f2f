package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"lms-grading-service/internal/domain"
)

// readTestsFile reads a JSON array of tests keyed by their IDs.
func readTestsFile(path string) (map[string]domain.Test, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []domain.Test
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	tests := make(map[string]domain.Test, len(list))
	for _, t := range list {
		if t.ID == "" {
			return nil, fmt.Errorf("parse %s: test without id", path)
		}
		tests[t.ID] = t
	}
	return tests, nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
