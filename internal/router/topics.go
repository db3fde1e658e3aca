package router

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type topicsFile struct {
	Topics []Topic `yaml:"topics"`
}

// LoadTopics reads the topics section of a knowledge data file.
func LoadTopics(path string) ([]Topic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topics file: %w", err)
	}

	var f topicsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse topics file: %w", err)
	}

	topics := make([]Topic, 0, len(f.Topics))
	for _, t := range f.Topics {
		if t.Key == "" {
			return nil, fmt.Errorf("topic without key")
		}
		triggers := make([]string, 0, len(t.Triggers))
		for _, trig := range t.Triggers {
			if trig = strings.ToLower(strings.TrimSpace(trig)); trig != "" {
				triggers = append(triggers, trig)
			}
		}
		t.Triggers = triggers
		topics = append(topics, t)
	}
	return topics, nil
}
