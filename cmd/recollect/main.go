// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/recollect"
	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/core"
)

func main() {
	app := &cli.App{
		Name:  "recollect",
		Usage: "Structured term search over conversation memory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Build indexes for a conversation file and persist its location index",
				Action:    indexCommand,
				ArgsUsage: "<conversation.json>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Run a term query against a conversation file",
				Action:    searchCommand,
				ArgsUsage: "<conversation.json> <term> [term ...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "and",
						Usage: "Require every term to match (default: any)",
					},
					&cli.BoolFlag{
						Name:  "exact",
						Usage: "Disable synonym expansion",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Restrict results to one knowledge type (entity, action, topic, tag)",
					},
					&cli.TimestampFlag{
						Name:   "after",
						Usage:  "Only match messages at or after this time",
						Layout: time.RFC3339,
					},
					&cli.TimestampFlag{
						Name:   "before",
						Usage:  "Only match messages before this time",
						Layout: time.RFC3339,
					},
					&cli.IntFlag{
						Name:  "max",
						Usage: "Maximum matches per knowledge type (0 = unlimited)",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openMemory(c *cli.Context) (*recollect.Memory, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	memory, err := recollect.NewMemory(c.String("db"), recollect.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open memory: %w", err)
	}
	return memory, nil
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one conversation file")
	}
	input, err := loadConversationFile(c.Args().First())
	if err != nil {
		return err
	}

	memory, err := openMemory(c)
	if err != nil {
		return err
	}
	defer memory.Close()

	started := time.Now()
	conversation, err := memory.IndexConversation(ctx, input)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Conversation: %s\n", conversation.Name())
	fmt.Fprintf(os.Stderr, "Messages: %d\n", len(conversation.Messages()))
	fmt.Fprintf(os.Stderr, "Semantic refs: %d\n", len(conversation.SemanticRefs()))
	fmt.Fprintf(os.Stderr, "Terms: %d\n", conversation.TermIndex().Size())
	fmt.Fprintf(os.Stderr, "Chunks embedded: %d\n", conversation.LocationIndex().Len())
	fmt.Fprintf(os.Stderr, "Elapsed: %s\n", time.Since(started).Round(time.Millisecond))
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() < 2 {
		return fmt.Errorf("expected a conversation file and at least one term")
	}
	input, err := loadConversationFile(c.Args().First())
	if err != nil {
		return err
	}

	group := core.SearchTermGroup{BooleanOp: core.BooleanOr}
	if c.Bool("and") {
		group.BooleanOp = core.BooleanAnd
	}
	for _, text := range c.Args().Tail() {
		group.Terms = append(group.Terms, core.SearchTerm{Term: core.Term{Text: text}})
	}

	filter, err := buildFilter(c)
	if err != nil {
		return err
	}
	options := &core.SearchOptions{
		MaxMatches:        c.Int("max"),
		ExactMatch:        c.Bool("exact"),
		UsePropertyIndex:  true,
		UseTimestampIndex: true,
	}

	memory, err := openMemory(c)
	if err != nil {
		return err
	}
	defer memory.Close()

	conversation, err := memory.IndexConversation(ctx, input)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	results, err := memory.Search(ctx, conversation.Name(), group, filter, options)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	refs := conversation.SemanticRefs()
	knowledgeTypes := make([]string, 0, len(results))
	for knowledgeType := range results {
		knowledgeTypes = append(knowledgeTypes, string(knowledgeType))
	}
	sort.Strings(knowledgeTypes)

	for _, knowledgeType := range knowledgeTypes {
		result := results[core.KnowledgeType(knowledgeType)]
		fmt.Printf("%s (%d):\n", knowledgeType, len(result.SemanticRefMatches))
		for _, match := range result.SemanticRefMatches {
			ref := refs[match.SemanticRefOrdinal]
			fmt.Printf("  %8.2f  message %d  %s\n",
				match.Score, ref.Range.Start.MessageOrdinal, describeKnowledge(ref.Knowledge))
		}
	}
	return nil
}

func buildFilter(c *cli.Context) (*core.WhenFilter, error) {
	filter := &core.WhenFilter{}
	used := false

	if typeName := c.String("type"); typeName != "" {
		switch core.KnowledgeType(typeName) {
		case core.KnowledgeEntity, core.KnowledgeAction, core.KnowledgeTopic, core.KnowledgeTag:
			filter.KnowledgeType = core.KnowledgeType(typeName)
		default:
			return nil, fmt.Errorf("invalid knowledge type %q", typeName)
		}
		used = true
	}

	after, before := c.Timestamp("after"), c.Timestamp("before")
	if after != nil || before != nil {
		dateRange := &core.DateRange{}
		if after != nil {
			dateRange.Start = *after
		}
		if before != nil {
			dateRange.End = *before
		}
		filter.InDateRange = dateRange
		used = true
	}

	if !used {
		return nil, nil
	}
	return filter, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
