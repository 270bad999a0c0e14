package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"trivia-quiz-service/internal/domain"
)

// questionFile is the seed file layout. A bare list is accepted too, which
// also covers JSON arrays since YAML is a superset of JSON.
type questionFile struct {
	Questions []domain.Question `yaml:"questions"`
}

// LoadQuestions reads a question seed file.
func LoadQuestions(path string) ([]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseQuestions(data)
}

// ParseQuestions decodes either {questions: [...]} or a bare list.
func ParseQuestions(data []byte) ([]domain.Question, error) {
	var file questionFile
	if err := yaml.Unmarshal(data, &file); err == nil && len(file.Questions) > 0 {
		return file.Questions, nil
	}
	var list []domain.Question
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}
	return list, nil
}
