package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ValentinKolb/gaea/rpc/server"
	"github.com/gorilla/rpc/v2/json2"
)

// AdminClient calls the JSON-RPC admin service of a server
type AdminClient struct {
	uri    string
	client *http.Client
}

// NewAdminClient creates a client for the admin endpoint (host:port or URL)
func NewAdminClient(endpoint string) (*AdminClient, error) {
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid admin endpoint %s: %w", endpoint, err)
	}
	return &AdminClient{uri: u.JoinPath("admin").String(), client: &http.Client{}}, nil
}

func (a *AdminClient) ListServices(ctx context.Context) ([]server.ServiceInfo, error) {
	var reply server.ListServicesReply
	if err := a.send(ctx, "Admin.ListServices", &server.ListServicesArgs{}, &reply); err != nil {
		return nil, err
	}
	return reply.Services, nil
}

// DescribeType looks a type up by name, or by id when name is empty
func (a *AdminClient) DescribeType(ctx context.Context, name string, id int32) (*server.DescribeTypeReply, error) {
	var reply server.DescribeTypeReply
	if err := a.send(ctx, "Admin.DescribeType", &server.DescribeTypeArgs{Name: name, ID: id}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (a *AdminClient) Stats(ctx context.Context) (*server.StatsReply, error) {
	var reply server.StatsReply
	if err := a.send(ctx, "Admin.Stats", &server.StatsArgs{}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (a *AdminClient) send(ctx context.Context, method string, args, reply any) error {
	body, err := json2.EncodeClientRequest(method, args)
	if err != nil {
		return fmt.Errorf("failed to encode client params: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.uri, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to issue request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("received status code: %d", resp.StatusCode)
	}
	if err := json2.DecodeClientResponse(resp.Body, reply); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}
