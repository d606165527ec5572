package call

import (
	"context"
	"fmt"
	"time"

	"github.com/ValentinKolb/gaea/cmd/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	handshakeCmd = &cobra.Command{
		Use:   "handshake",
		Short: "Exchange protocol versions with the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer rpcClient.Close()

			ctx, cancel := callContext()
			defer cancel()

			version, err := rpcClient.Handshake(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("server speaks %s\n", version)
			return nil
		},
	}
)

// invoke calls lookup.method and prints the result and out parameters
func invoke(_ *cobra.Command, args []string) error {
	defer rpcClient.Close()

	ctx, cancel := callContext()
	defer cancel()

	resp, err := rpcClient.Invoke(ctx, args[0], args[1], util.ParseParams(args[2:])...)
	if err != nil {
		return err
	}

	fmt.Println(formatValue(resp.Result))
	for i, out := range resp.OutPara {
		fmt.Printf("out[%d]: %s\n", i, formatValue(out))
	}
	return nil
}

func callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(viper.GetInt("timeout"))*time.Second)
}

// formatValue prints composite results with their field names
func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%+v", v)
	}
}
