package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/david/voluntrack/internal/metrics"
)

var ErrEmptyStory = errors.New("model returned an empty story")

// GenerateImpactStory asks the provider for a narrative about one volunteering session.
func GenerateImpactStory(ctx context.Context, gen Generator, in StoryInput) (string, error) {
	start := time.Now()
	text, err := gen.GenerateText(ctx, BuildStoryPrompt(in))
	metrics.RecordGeneration("story", time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("generate impact story: %w", err)
	}

	story := strings.TrimSpace(text)
	story = strings.TrimPrefix(story, "```")
	story = strings.TrimSuffix(story, "```")
	story = strings.TrimSpace(story)
	if story == "" {
		return "", ErrEmptyStory
	}
	return story, nil
}
