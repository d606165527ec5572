package serve

import (
	"os"
	"os/signal"
	"syscall"

	cmdUtil "github.com/ValentinKolb/gaea/cmd/util"
	"github.com/ValentinKolb/gaea/rpc/common"
	"github.com/ValentinKolb/gaea/rpc/serializer"
	"github.com/ValentinKolb/gaea/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start a Gaea server with the demo services",
		Long:    `Start a Gaea server serving the Echo and Math demo services. The configuration can be set via command line flags or environment variables. The format of the environment variables is GAEA_<flag> (e.g. GAEA_TIMEOUT=15)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	defaults := common.DefaultServerConfig()

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the server will listen (e.g. localhost:8080, /tmp/gaea.sock, ...)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, defaults.TimeoutSecond, cmdUtil.WrapString("Timeout of a single call in seconds, also used for socket reads and writes"))

	key = "workers-per-conn"
	ServeCmd.PersistentFlags().Int(key, defaults.Transport.WorkersPerConn, cmdUtil.WrapString("Maximum number of calls processed concurrently per connection (tcp and unix)"))

	key = "buffer-size"
	ServeCmd.PersistentFlags().Int(key, defaults.Transport.BufferSize/1024, cmdUtil.WrapString("Size of the pooled frame read buffers (in KB, tcp and unix)"))

	key = "write-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The size of the socket write buffer (in KB, 0 keeps the OS default)"))

	key = "read-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The size of the socket read buffer (in KB, 0 keeps the OS default)"))

	key = "tcp-nodelay"
	ServeCmd.PersistentFlags().Bool(key, defaults.Transport.TCPNoDelay, cmdUtil.WrapString("Whether to enable TCP_NODELAY (tcp only)"))

	key = "tcp-keepalive"
	ServeCmd.PersistentFlags().Int(key, defaults.Transport.TCPKeepAliveSec, cmdUtil.WrapString("The keepalive interval (in seconds, tcp only)"))

	key = "tcp-linger"
	ServeCmd.PersistentFlags().Int(key, defaults.Transport.TCPLingerSec, cmdUtil.WrapString("The linger time (in seconds, tcp only, negative keeps the OS default)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, defaults.LogLevel, cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "scan-mode"
	ServeCmd.PersistentFlags().String(key, string(defaults.ScanMode), cmdUtil.WrapString("Register the types of the served services at startup: off, sync (before listening) or async (in the background)"))

	key = "admin-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Address of the admin endpoint serving /metrics and the JSON-RPC service under /admin (disabled when empty)"))

	key = "stats-interval"
	ServeCmd.PersistentFlags().Int(key, defaults.StatsIntervalSecond, cmdUtil.WrapString("Interval in seconds at which codec statistics are logged (0 disables)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	scanMode, err := common.ParseScanMode(viper.GetString("scan-mode"))
	if err != nil {
		return err
	}

	*serveCmdConfig = common.ServerConfig{
		Transport: common.ServerTransportConfig{
			Endpoint:       viper.GetString("endpoint"),
			WorkersPerConn: viper.GetInt("workers-per-conn"),
			BufferSize:     viper.GetInt("buffer-size") * 1024,
			SocketConf: common.SocketConf{
				WriteBufferSize: viper.GetInt("write-buffer") * 1024,
				ReadBufferSize:  viper.GetInt("read-buffer") * 1024,
			},
			TCPConf: common.TCPConf{
				TCPNoDelay:      viper.GetBool("tcp-nodelay"),
				TCPKeepAliveSec: viper.GetInt("tcp-keepalive"),
				TCPLingerSec:    viper.GetInt("tcp-linger"),
			},
		},
		TimeoutSecond:       viper.GetInt64("timeout"),
		LogLevel:            viper.GetString("log-level"),
		TextEncoding:        viper.GetString("text-encoding"),
		ScanMode:            scanMode,
		AdminEndpoint:       viper.GetString("admin-endpoint"),
		StatsIntervalSecond: viper.GetInt("stats-interval"),
	}

	// validate the encoding before anything is started
	if _, err := serializer.TextEncoding(serveCmdConfig.TextEncoding); err != nil {
		return err
	}

	return common.InitLoggers(serveCmdConfig.LogLevel)
}

// run starts the Gaea server
func run(_ *cobra.Command, _ []string) error {
	reg := serializer.NewTypeRegistry()
	stats := serializer.NewStats(reg)

	s, err := cmdUtil.GetSerializer(stats, reg)
	if err != nil {
		return err
	}

	t, err := cmdUtil.GetServerTransport()
	if err != nil {
		return err
	}

	services := server.NewServices()
	if err := services.Register(demoServices()...); err != nil {
		return err
	}

	serv, err := server.NewRPCServer(
		*serveCmdConfig,
		t,
		s,
		services,
		server.WithStats(stats),
		server.WithScanSamples(Samples()...),
	)
	if err != nil {
		return err
	}

	// stop gracefully on SIGINT / SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		server.Logger.Infof("Received %s, shutting down", sig)
		if err := serv.Close(); err != nil {
			server.Logger.Errorf("Shutdown failed: %v", err)
		}
	}()

	return serv.Serve()
}
