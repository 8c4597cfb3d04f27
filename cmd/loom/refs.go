package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/loom/internal/hub"
	"github.com/samcharles93/loom/internal/tokenizer"
)

const envLoomDefaultModel = "LOOM_DEFAULT_MODEL"

// stdinIsTTY is a small seam for tests.
var stdinIsTTY = isTTY

// resolveModelReference turns the --model flag into a reference, falling
// back to the config file default, the environment, and finally an
// interactive pick from the local cache.
func resolveModelReference(modelFlag string, cfg Config, h *hub.Hub, stdin io.Reader, stderr io.Writer) (tokenizer.ModelReference, error) {
	modelFlag = strings.TrimSpace(modelFlag)
	if modelFlag != "" {
		return tokenizer.ParseReference(modelFlag), nil
	}
	if def := strings.TrimSpace(cfg.DefaultModel); def != "" {
		return tokenizer.ParseReference(def), nil
	}
	if def := strings.TrimSpace(os.Getenv(envLoomDefaultModel)); def != "" {
		return tokenizer.ParseReference(def), nil
	}

	models, err := h.CachedModels()
	if err != nil {
		return tokenizer.ModelReference{}, err
	}
	switch len(models) {
	case 0:
		return tokenizer.ModelReference{}, fmt.Errorf(
			"--model is required unless %s is set or the cache holds a model", envLoomDefaultModel)
	case 1:
		_, _ = fmt.Fprintf(stderr, "using cached model %s\n", models[0].ID)
		return tokenizer.ParseReference(models[0].ID), nil
	default:
		if !stdinIsTTY() {
			return tokenizer.ModelReference{}, fmt.Errorf(
				"multiple cached models but stdin is not interactive; set --model")
		}
		picked, err := selectModelInteractively(models, stdin, stderr)
		if err != nil {
			return tokenizer.ModelReference{}, err
		}
		return tokenizer.ParseReference(picked), nil
	}
}

func selectModelInteractively(models []hub.CachedModel, stdin io.Reader, stderr io.Writer) (string, error) {
	_, _ = fmt.Fprintln(stderr, "select a cached model:")
	for i, m := range models {
		_, _ = fmt.Fprintf(stderr, "%d. %s (%s)\n", i+1, m.ID, m.Kind)
	}

	reader := bufio.NewReader(stdin)
	for {
		_, _ = fmt.Fprintf(stderr, "enter selection [1-%d]: ", len(models))
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			if errors.Is(err, io.EOF) {
				return "", errors.New("no selection provided on stdin; set --model")
			}
			continue
		}

		idx, convErr := strconv.Atoi(line)
		if convErr != nil || idx < 1 || idx > len(models) {
			_, _ = fmt.Fprintf(stderr, "invalid selection %q\n", line)
			if errors.Is(err, io.EOF) {
				return "", errors.New("invalid selection provided on stdin; set --model")
			}
			continue
		}
		return models[idx-1].ID, nil
	}
}

// loadTokenizer resolves the model reference and builds its tokenizer.
func loadTokenizer(ctx context.Context, c *cli.Command) (tokenizer.Tokenizer, error) {
	cfg := LoadConfig()
	applyModelConfig(c, cfg)
	log := newLogger()

	h, err := newHub(log)
	if err != nil {
		return nil, err
	}
	ref, err := resolveModelReference(modelRef, cfg, h, os.Stdin, os.Stderr)
	if err != nil {
		return nil, err
	}
	return tokenizer.Select(ctx, ref, h)
}

// readTextArg gathers the text operand: positional args joined by spaces,
// or stdin when no args were given.
func readTextArg(c *cli.Command, stdin io.Reader) (string, error) {
	if c.Args().Len() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}
	if stdinIsTTY() {
		return "", errors.New("no text given (pass it as an argument or pipe it on stdin)")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

func isTTY() bool {
	st, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (st.Mode() & os.ModeCharDevice) != 0
}
