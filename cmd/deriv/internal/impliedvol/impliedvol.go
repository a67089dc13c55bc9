package impliedvol

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/meenmo/moderiv/cmd/deriv/internal/batch"
	"github.com/meenmo/moderiv/config"
	"github.com/meenmo/moderiv/pricing"
)

type output struct {
	TaskID string `json:"task_id,omitempty"`
	*pricing.ImpliedVolatilityResult
	Error string `json:"error,omitempty"`
}

func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "impliedvol",
		Short: "Solve implied volatility from option prices",
		Long: `Reads one request object or an array of them:

  {"type": "call", "value": 10.45, "underlying": 100, "strike": 100,
   "dividend_yield": 0, "risk_free_rate": 0.05, "maturity": 1,
   "volatility": 0.3, "exercise": "european"}

and writes {"implied_volatility": ...} per request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return batch.Execute(cmd, price)
		},
	}
	batch.AddInputFlag(cmd)
	return cmd
}

func price(ctx context.Context, in pricing.ImpliedVolatilityRequest) (output, bool) {
	res, err := pricing.ImpliedVolatility(ctx, in)
	if err != nil {
		return output{TaskID: in.TaskID, Error: err.Error()}, true
	}
	res.ImpliedVolatility = pricing.Round(res.ImpliedVolatility, config.GetConfig().Output.Decimals)
	return output{TaskID: in.TaskID, ImpliedVolatilityResult: &res}, false
}
