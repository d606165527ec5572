package admin

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ValentinKolb/gaea/cmd/util"
	"github.com/ValentinKolb/gaea/rpc/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	adminClient *client.AdminClient

	// AdminCommands represents the admin command group
	AdminCommands = &cobra.Command{
		Use:               "admin",
		Short:             "Inspect a running Gaea server through its admin endpoint",
		Long:              `Inspect a running Gaea server through its JSON-RPC admin endpoint (see gaea serve --admin-endpoint).`,
		PersistentPreRunE: setupAdminClient,
	}

	servicesCmd = &cobra.Command{
		Use:   "services",
		Short: "List the registered services and their methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := adminContext()
			defer cancel()

			services, err := adminClient.ListServices(ctx)
			if err != nil {
				return err
			}
			for _, s := range services {
				fmt.Printf("%s\n", s.Lookup)
				for _, m := range s.Methods {
					fmt.Printf("  %s\n", m)
				}
			}
			return nil
		},
	}

	typeCmd = &cobra.Command{
		Use:   "type [name|id]",
		Short: "Describe a registered type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := adminContext()
			defer cancel()

			var name string
			var id int32
			if n, err := strconv.ParseInt(args[0], 10, 32); err == nil {
				id = int32(n)
			} else {
				name = args[0]
			}

			t, err := adminClient.DescribeType(ctx, name, id)
			if err != nil {
				return err
			}

			fmt.Printf("%s (id %d, %s, go type %s)\n", t.Name, t.ID, t.Kind, t.GoType)
			if t.Fingerprint != 0 {
				fmt.Printf("fingerprint: %08x\n", t.Fingerprint)
			}
			for _, f := range t.Fields {
				fmt.Printf("  %-24s %-12d %s\n", f.Name, f.Hash, f.Type)
			}
			return nil
		},
	}

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Print the codec statistics of the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := adminContext()
			defer cancel()

			stats, err := adminClient.Stats(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("services: %d\n", stats.Services)
			fmt.Printf("types:    %d\n", stats.Types)
			keys := make([]string, 0, len(stats.Codec))
			for k := range stats.Codec {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("%-32s %d\n", k, stats.Codec[k])
			}
			return nil
		},
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	AdminCommands.PersistentFlags().String("admin-endpoint", "localhost:8081", util.WrapString("Address of the admin endpoint of the server"))
	AdminCommands.PersistentFlags().Int("timeout", 5, util.WrapString("Timeout of a single admin request in seconds"))

	AdminCommands.AddCommand(servicesCmd)
	AdminCommands.AddCommand(typeCmd)
	AdminCommands.AddCommand(statsCmd)
}

func setupAdminClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	endpoint := strings.TrimSpace(viper.GetString("admin-endpoint"))
	if endpoint == "" {
		return fmt.Errorf("no admin endpoint given")
	}

	var err error
	adminClient, err = client.NewAdminClient(endpoint)
	return err
}

func adminContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(viper.GetInt("timeout"))*time.Second)
}
