package serve

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/ValentinKolb/gaea/rpc/common"
	"github.com/ValentinKolb/gaea/rpc/server"
)

// ServerInfo is returned by Echo.info
type ServerInfo struct {
	Host    string    `gaea:"host"`
	PID     int32     `gaea:"pid"`
	Started time.Time `gaea:"started"`
}

func (*ServerInfo) SerialName() string { return "gaea.ServerInfo" }

// Samples are the composite types of the demo services. Clients register them to
// decode results, the server scans them according to --scan-mode.
func Samples() []any {
	return []any{&ServerInfo{}}
}

var started = time.Now()

// demoServices are served by `gaea serve`. Echo and Math let a fresh install be
// tried with `gaea call` without writing a service first.
func demoServices() []*server.Service {
	echo := server.NewService("Echo").Handle(
		server.Method1("say", func(_ context.Context, s string) (string, error) {
			return s, nil
		}),
		server.Method1("upper", func(_ context.Context, s string) (string, error) {
			return strings.ToUpper(s), nil
		}),
		server.Method0("time", func(context.Context) (time.Time, error) {
			return time.Now(), nil
		}),
		server.Method0("info", func(context.Context) (*ServerInfo, error) {
			host, err := os.Hostname()
			if err != nil {
				return nil, err
			}
			return &ServerInfo{Host: host, PID: int32(os.Getpid()), Started: started}, nil
		}),
	)

	math := server.NewService("Math").Handle(
		server.Method2("add", func(_ context.Context, a, b float64) (float64, error) {
			return a + b, nil
		}),
		server.Method2("mul", func(_ context.Context, a, b float64) (float64, error) {
			return a * b, nil
		}),
		server.Method("divmod", 2, func(c *server.Call) (any, error) {
			a, err := server.Convert[int64](c.Param(0))
			if err != nil {
				return nil, err
			}
			b, err := server.Convert[int64](c.Param(1))
			if err != nil {
				return nil, err
			}
			if b == 0 {
				return nil, common.NewServiceError("division by zero")
			}
			c.AddOut(a % b)
			return a / b, nil
		}),
	)

	return []*server.Service{echo, math}
}
