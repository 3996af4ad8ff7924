package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/indexing"
)

// conversationFile is the on-disk JSON form of a conversation plus its
// extracted knowledge. Semantic-ref ordinals are assigned by position.
type conversationFile struct {
	Name         string            `json:"name"`
	Messages     []messageJSON     `json:"messages"`
	SemanticRefs []semanticRefJSON `json:"semanticRefs"`
}

type messageJSON struct {
	Chunks    []string  `json:"chunks"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
}

type semanticRefJSON struct {
	MessageOrdinal int          `json:"messageOrdinal"`
	Entity         *core.Entity `json:"entity,omitempty"`
	Action         *core.Action `json:"action,omitempty"`
	Topic          string       `json:"topic,omitempty"`
	Tag            string       `json:"tag,omitempty"`
}

func (r *semanticRefJSON) knowledge() (core.Knowledge, error) {
	switch {
	case r.Entity != nil:
		return *r.Entity, nil
	case r.Action != nil:
		return *r.Action, nil
	case r.Topic != "":
		return core.Topic{Text: r.Topic}, nil
	case r.Tag != "":
		return core.Tag{Text: r.Tag}, nil
	}
	return nil, fmt.Errorf("semantic ref carries no knowledge")
}

// loadConversationFile reads a conversation JSON file into pipeline
// input.
func loadConversationFile(path string) (indexing.ConversationInput, error) {
	var input indexing.ConversationInput

	raw, err := os.ReadFile(path)
	if err != nil {
		return input, fmt.Errorf("failed to read conversation file: %w", err)
	}
	var file conversationFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return input, fmt.Errorf("failed to parse conversation file: %w", err)
	}
	if file.Name == "" {
		return input, fmt.Errorf("conversation file has no name")
	}

	input.Name = file.Name
	for _, message := range file.Messages {
		input.Messages = append(input.Messages, core.Message{
			Chunks:    message.Chunks,
			Timestamp: message.Timestamp,
			Tags:      message.Tags,
		})
	}
	for i, ref := range file.SemanticRefs {
		if ref.MessageOrdinal < 0 || ref.MessageOrdinal >= len(file.Messages) {
			return input, fmt.Errorf("semantic ref %d references message %d of %d",
				i, ref.MessageOrdinal, len(file.Messages))
		}
		knowledge, err := ref.knowledge()
		if err != nil {
			return input, fmt.Errorf("semantic ref %d: %w", i, err)
		}
		input.SemanticRefs = append(input.SemanticRefs, core.SemanticRef{
			Ordinal:   i,
			Range:     core.TextRange{Start: core.TextLocation{MessageOrdinal: ref.MessageOrdinal}},
			Knowledge: knowledge,
		})
	}
	return input, nil
}

// describeKnowledge renders a knowledge value for terminal output.
func describeKnowledge(k core.Knowledge) string {
	switch knowledge := k.(type) {
	case core.Entity:
		return fmt.Sprintf("entity %q %v", knowledge.Name, knowledge.Types)
	case core.Action:
		return fmt.Sprintf("action %v subject=%q object=%q",
			knowledge.Verbs, knowledge.Subject, knowledge.Object)
	case core.Topic:
		return fmt.Sprintf("topic %q", knowledge.Text)
	case core.Tag:
		return fmt.Sprintf("tag %q", knowledge.Text)
	}
	return fmt.Sprintf("%v", k)
}
