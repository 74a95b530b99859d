package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/urfave/cli/v2"

	"github.com/kirillkom/regulation-assistant/internal/config"
	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/core/ports"
	"github.com/kirillkom/regulation-assistant/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/regulation-assistant/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/regulation-assistant/internal/observability/logging"
)

type documentSeeder interface {
	SeedDocument(ctx context.Context, sourceFile, text string) (int, error)
}

type services struct {
	answerer ports.QuestionAnswerer
	seeder   documentSeeder
	close    func()
}

type servicesOpener func(ctx context.Context, cfg config.Config, logger *slog.Logger) (*services, error)

type batchResult struct {
	Question string        `json:"question"`
	Answer   domain.Answer `json:"answer"`
}

func newApp(out io.Writer, in io.Reader, open servicesOpener) *cli.App {
	var svc *services

	withServices := func(action func(c *cli.Context, svc *services) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			if svc == nil {
				cfg := config.Load()
				if path := c.String("lexicon"); path != "" {
					cfg.LexiconPath = path
				}
				if provider := c.String("provider"); provider != "" {
					cfg.LLMProvider = strings.ToLower(provider)
				}
				logger := logging.New(c.App.ErrWriter, "askctl", c.String("log-level"), "text")
				opened, err := open(c.Context, cfg, logger)
				if err != nil {
					return fmt.Errorf("bootstrap: %w", err)
				}
				svc = opened
			}
			return action(c, svc)
		}
	}

	return &cli.App{
		Name:      "askctl",
		Usage:     "Ask questions about university regulations and manage the passage index",
		Writer:    out,
		ErrWriter: os.Stderr,
		Reader:    in,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:  "lexicon",
				Usage: "Path to a YAML lexicon overriding the built-in word lists",
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: "LLM provider (ollama, openai); defaults to LLM_PROVIDER",
			},
		},
		After: func(*cli.Context) error {
			if svc != nil && svc.close != nil {
				svc.close()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Answer a single question",
				ArgsUsage: "<question>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the full answer as JSON",
					},
				},
				Action: withServices(askCommand),
			},
			{
				Name:  "batch",
				Usage: "Answer questions read line by line and print JSON lines",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "File with one question per line, or a JSON object with a question field; - for stdin",
						Value:   "-",
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Number of questions processed in parallel",
						Value: 2,
					},
				},
				Action: withServices(batchCommand),
			},
			{
				Name:  "seed",
				Usage: "Split, embed and index plain-text regulation documents",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Plain-text document to index; repeat for several files",
					},
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Directory whose .txt and .md documents are indexed",
					},
				},
				Action: withServices(seedCommand),
			},
		},
	}
}

func askCommand(c *cli.Context, svc *services) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return errors.New("question is required")
	}

	answer := svc.answerer.ProcessQuery(c.Context, question)
	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}

	fmt.Fprintln(c.App.Writer, answer.Response)
	if len(answer.Sources) > 0 {
		fmt.Fprintf(c.App.Writer, "\nKaynaklar: %s\n", strings.Join(answer.Sources, ", "))
	}
	fmt.Fprintf(c.App.Writer, "Güven: %.2f (%s)\n", answer.Confidence, answer.QualityLevel)
	return nil
}

func batchCommand(c *cli.Context, svc *services) error {
	in := c.App.Reader
	if path := c.String("input"); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	questions, err := readQuestions(in)
	if err != nil {
		return err
	}

	results := answerAll(c.Context, svc.answerer, questions, c.Int("concurrency"))
	enc := json.NewEncoder(c.App.Writer)
	for _, res := range results {
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	return nil
}

// answerAll keeps results in input order.
func answerAll(ctx context.Context, answerer ports.QuestionAnswerer, questions []string, workers int) []batchResult {
	if workers <= 0 {
		workers = 1
	}
	results := make([]batchResult, len(questions))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < min(workers, len(questions)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = batchResult{
					Question: questions[i],
					Answer:   answerer.ProcessQuery(ctx, questions[i]),
				}
			}
		}()
	}
	for i := range questions {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

func readQuestions(r io.Reader) ([]string, error) {
	var questions []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "{") {
			var item struct {
				Question string `json:"question"`
			}
			if err := json.Unmarshal([]byte(line), &item); err != nil {
				return nil, fmt.Errorf("parse input line %q: %w", line, err)
			}
			line = strings.TrimSpace(item.Question)
			if line == "" {
				continue
			}
		}
		questions = append(questions, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return questions, nil
}

func seedCommand(c *cli.Context, svc *services) error {
	type document struct {
		dir, key string
	}
	var docs []document
	for _, path := range c.StringSlice("file") {
		docs = append(docs, document{dir: filepath.Dir(path), key: filepath.Base(path)})
	}
	if dir := c.String("dir"); dir != "" {
		store, err := localfs.New(dir)
		if err != nil {
			return err
		}
		keys, err := store.List(c.Context)
		if err != nil {
			return err
		}
		for _, key := range keys {
			docs = append(docs, document{dir: dir, key: key})
		}
	}
	if len(docs) == 0 {
		return errors.New("at least one --file or a --dir with documents is required")
	}

	total := 0
	for _, doc := range docs {
		store, err := localfs.New(doc.dir)
		if err != nil {
			return err
		}
		text, err := plaintext.NewExtractor(store).Extract(c.Context, doc.key)
		if err != nil {
			return fmt.Errorf("read %s: %w", doc.key, err)
		}
		n, err := svc.seeder.SeedDocument(c.Context, doc.key, text)
		if err != nil {
			return fmt.Errorf("seed %s: %w", doc.key, err)
		}
		total += n
		fmt.Fprintf(c.App.Writer, "%s: %d passages\n", doc.key, n)
	}
	fmt.Fprintf(c.App.Writer, "indexed %d passages\n", total)
	return nil
}
