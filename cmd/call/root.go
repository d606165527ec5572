package call

import (
	"github.com/ValentinKolb/gaea/cmd/serve"
	"github.com/ValentinKolb/gaea/cmd/util"
	"github.com/ValentinKolb/gaea/rpc/client"
	"github.com/ValentinKolb/gaea/rpc/common"
	"github.com/ValentinKolb/gaea/rpc/serializer"
	"github.com/spf13/cobra"
)

var (
	rpcClient *client.RPCClient

	// CallCommands represents the call command group
	CallCommands = &cobra.Command{
		Use:               "call [lookup] [method] [params...]",
		Short:             "Call a method of a Gaea server",
		Long:              `Call a method of a Gaea server and print the result. Parameters are typed from their text: integers, floats, true/false and null. Quote a parameter ('42') to send it as a string.`,
		Args:              cobra.MinimumNArgs(2),
		PersistentPreRunE: setupClient,
		RunE:              invoke,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common RPC flags to the call command
	util.SetupRPCClientFlags(CallCommands)
	CallCommands.PersistentFlags().Bool("handshake", true, util.WrapString("Exchange protocol versions before the first call"))

	// Add subcommands
	CallCommands.AddCommand(handshakeCmd)
	CallCommands.AddCommand(perfTestCmd)
}

// setupClient initializes the RPC client
func setupClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	if err := common.InitLoggers("warn"); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()

	reg := serializer.NewTypeRegistry()
	if err := reg.Scan(false, serve.Samples()...).Wait(); err != nil {
		return err
	}
	s, err := util.GetSerializer(nil, reg)
	if err != nil {
		return err
	}

	t, err := util.GetClientTransport()
	if err != nil {
		return err
	}

	// Create the client
	rpcClient, err = client.NewRPCClient(*config, t, s)
	if err != nil {
		return err
	}

	handshake, _ := cmd.Flags().GetBool("handshake")
	if handshake && cmd != handshakeCmd {
		ctx, cancel := callContext()
		defer cancel()
		if _, err := rpcClient.Handshake(ctx); err != nil {
			return err
		}
	}
	return nil
}
