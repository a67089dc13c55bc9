package cbprice

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/meenmo/moderiv/cmd/deriv/internal/batch"
	"github.com/meenmo/moderiv/config"
	"github.com/meenmo/moderiv/pricing"
)

type output struct {
	TaskID string `json:"task_id,omitempty"`
	*pricing.ConvertibleBondResult
	Error string `json:"error,omitempty"`
}

func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cbprice",
		Short: "Price fixed-coupon convertible bonds on a binomial tree",
		Long: `Reads one convertible bond request object or an array of them.

Dates are YYYY-MM-DD, rates are decimals and prices are per 100 of face.
Dividend and callability schedules are lists of [date, amount] pairs;
malformed rows are skipped and counted in skipped_rows.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return batch.Execute(cmd, price)
		},
	}
	batch.AddInputFlag(cmd)
	return cmd
}

func price(ctx context.Context, in pricing.ConvertibleBondRequest) (output, bool) {
	res, err := pricing.ConvertibleBond(ctx, in)
	if err != nil {
		return output{TaskID: in.TaskID, Error: err.Error()}, true
	}
	res = res.Rounded(config.GetConfig().Output.Decimals)
	return output{TaskID: in.TaskID, ConvertibleBondResult: &res}, false
}
