package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/gaea/cmd/admin"
	"github.com/ValentinKolb/gaea/cmd/call"
	"github.com/ValentinKolb/gaea/cmd/serve"
	"github.com/ValentinKolb/gaea/cmd/util"
	"github.com/ValentinKolb/gaea/rpc/common"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "gaea",
		Short: "binary RPC framework",
		Long: fmt.Sprintf(`Gaea (v%s)

A binary RPC framework written in Go: a compact type-tagged wire codec
and a server pipeline that dispatches calls to registered services.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of Gaea",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Gaea v%s (protocol %s)\n", Version, common.ProtocolVersion)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(call.CallCommands)
	RootCmd.AddCommand(admin.AdminCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "text-encoding"
	RootCmd.PersistentFlags().String(key, "utf-8", util.WrapString("encoding of strings on the wire (utf-8, utf-16le, utf-16be, iso-8859-1, windows-1252)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (http, tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
