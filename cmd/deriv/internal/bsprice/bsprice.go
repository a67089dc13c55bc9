package bsprice

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/meenmo/moderiv/cmd/deriv/internal/batch"
	"github.com/meenmo/moderiv/config"
	"github.com/meenmo/moderiv/pricing"
)

type output struct {
	TaskID string `json:"task_id,omitempty"`
	*pricing.EuropeanOptionResult
	Error string `json:"error,omitempty"`
}

func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bsprice",
		Short: "Price European options and Greeks with Black-Scholes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return batch.Execute(cmd, price)
		},
	}
	batch.AddInputFlag(cmd)
	return cmd
}

func price(ctx context.Context, in pricing.EuropeanOptionRequest) (output, bool) {
	res, err := pricing.EuropeanOption(ctx, in)
	if err != nil {
		return output{TaskID: in.TaskID, Error: err.Error()}, true
	}
	res = res.Rounded(config.GetConfig().Output.Decimals)
	return output{TaskID: in.TaskID, EuropeanOptionResult: &res}, false
}
