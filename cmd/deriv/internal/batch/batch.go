// Package batch runs a pricing function over a JSON object or array of
// requests and writes one JSON record per request.
package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/meenmo/moderiv/config"
	"github.com/meenmo/moderiv/logger"
)

// ErrReported means the failure has already been written as JSON; the
// caller should only set the exit status.
var ErrReported = errors.New("error reported in output")

// errorOutput is the record written when the input itself is unusable.
type errorOutput struct {
	Error string `json:"error"`
}

// AddInputFlag registers -i/--input on cmd.
func AddInputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "JSON input path (reads stdin if omitted)")
}

// Execute reads the input named by --input (or stdin), prices every request
// with at most config workers in flight and writes the results to cmd's
// output: an array for an array input, a single object otherwise.
//
// price returns the record to emit for one request and whether it failed.
func Execute[In, Out any](cmd *cobra.Command, price func(context.Context, In) (Out, bool)) error {
	path, _ := cmd.Flags().GetString("input")
	stdout := cmd.OutOrStdout()

	raw, err := readInput(cmd.InOrStdin(), strings.TrimSpace(path))
	if err != nil {
		return report(stdout, fmt.Sprintf("read input: %v", err))
	}
	inputs, isArray, err := parseInputs[In](raw)
	if err != nil {
		return report(stdout, fmt.Sprintf("parse JSON: %v", err))
	}

	outputs, hadError, err := Run(cmd.Context(), inputs, config.GetConfig().Workers, price)
	if err != nil {
		return report(stdout, err.Error())
	}

	enc := json.NewEncoder(stdout)
	if isArray {
		err = enc.Encode(outputs)
	} else {
		err = enc.Encode(outputs[0])
	}
	if err != nil {
		return err
	}
	if hadError {
		return ErrReported
	}
	return nil
}

// Run prices inputs concurrently and keeps outputs in input order.
func Run[In, Out any](ctx context.Context, inputs []In, workers int, price func(context.Context, In) (Out, bool)) ([]Out, bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if workers < 1 {
		workers = 1
	}
	outputs := make([]Out, len(inputs))
	failed := make([]bool, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range inputs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outputs[i], failed[i] = price(gctx, inputs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	hadError := false
	for _, f := range failed {
		hadError = hadError || f
	}
	logger.Get().DebugContext(ctx, "batch priced", "requests", len(inputs), "workers", workers, "failed", hadError)
	return outputs, hadError, nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	if f, ok := stdin.(*os.File); ok {
		if stat, err := f.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			return nil, errors.New("no input: pass --input or pipe JSON on stdin")
		}
	}
	return io.ReadAll(stdin)
}

func parseInputs[In any](raw []byte) ([]In, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, errors.New("empty input")
	}
	if trimmed[0] == '[' {
		var inputs []In
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			return nil, true, err
		}
		if len(inputs) == 0 {
			return nil, true, errors.New("empty input array")
		}
		return inputs, true, nil
	}
	var input In
	if err := json.Unmarshal(trimmed, &input); err != nil {
		return nil, false, err
	}
	return []In{input}, false, nil
}

func report(w io.Writer, msg string) error {
	b, _ := json.Marshal(errorOutput{Error: msg})
	fmt.Fprintln(w, string(b))
	return ErrReported
}
