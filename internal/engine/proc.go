package engine

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
)

// CommandConfig holds the command, arguments, and environment needed to
// launch a solver worker process. For PowSyBl this wraps java -jar; for
// PowerModels.jl it wraps julia --project.
type CommandConfig struct {
	Command string
	Args    []string
	Env     []string
}

type request struct {
	ID     int64  `json:"id"`
	Op     string `json:"op"`
	Params any    `json:"params,omitempty"`
}

type response struct {
	ID    int64           `json:"id"`
	OK    bool            `json:"ok"`
	Error string          `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client implements Engine over a worker process speaking one JSON
// object per line. Calls are strictly sequential.
type Client struct {
	name   string
	logger *slog.Logger

	mu  sync.Mutex
	seq int64
	enc *json.Encoder

	resp chan response

	stdin     io.Closer
	cmd       *exec.Cmd
	closeOnce sync.Once
	closeErr  error
}

// Start launches a solver worker and returns a Client bound to its
// stdin/stdout. Worker stderr is streamed to the logger.
func Start(ctx context.Context, name string, cfg CommandConfig, logger *slog.Logger) (*Client, error) {
	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)

	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("pipe %s worker stdin: %w", name, err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("pipe %s worker stdout: %w", name, err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("pipe %s worker stderr: %w", name, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s worker: %w", name, err)
	}

	c := newClient(name, stdin, stdout, logger)
	c.cmd = cmd

	go c.logStderr(stderr)

	c.logger.Info("worker started",
		slog.String("command", cfg.Command),
		slog.Int("pid", cmd.Process.Pid),
	)

	return c, nil
}

// newClient wires a Client to arbitrary read/write ends; Start uses the
// worker's pipes, tests use in-memory ones.
func newClient(name string, w io.WriteCloser, r io.Reader, logger *slog.Logger) *Client {
	c := &Client{
		name:   name,
		logger: logger.With(slog.String("worker", name)),
		enc:    json.NewEncoder(w),
		resp:   make(chan response),
		stdin:  w,
	}

	go c.readLoop(r)

	return c
}

func (c *Client) readLoop(r io.Reader) {
	defer close(c.resp)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp response
		if err := json.Unmarshal(line, &resp); err != nil {
			c.logger.Error("malformed worker response",
				slog.String("error", err.Error()),
			)

			return
		}

		c.resp <- resp
	}

	if err := scanner.Err(); err != nil {
		c.logger.Error("worker read failed",
			slog.String("error", err.Error()),
		)
	}
}

func (c *Client) logStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		c.logger.Debug("worker stderr", slog.String("line", scanner.Text()))
	}
}

func (c *Client) call(ctx context.Context, op string, params, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	req := request{ID: c.seq, Op: op, Params: params}

	if err := c.enc.Encode(req); err != nil {
		return fmt.Errorf("send %s to %s worker: %w", op, c.name, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case resp, ok := <-c.resp:
			if !ok {
				return fmt.Errorf("%s worker exited during %s", c.name, op)
			}

			// Stale response from an abandoned earlier call.
			if resp.ID != req.ID {
				continue
			}

			if !resp.OK {
				return fmt.Errorf("%s worker: %s: %s", c.name, op, resp.Error)
			}

			if out == nil || len(resp.Data) == 0 {
				return nil
			}

			if err := json.Unmarshal(resp.Data, out); err != nil {
				return fmt.Errorf("decode %s response: %w", op, err)
			}

			return nil
		}
	}
}

// LoadNetwork asks the worker to parse the case file and returns the
// element counts it reports.
func (c *Client) LoadNetwork(ctx context.Context, path string) (NetworkSummary, error) {
	var summary NetworkSummary

	params := struct {
		Path string `json:"path"`
	}{Path: path}

	if err := c.call(ctx, "load_network", params, &summary); err != nil {
		return NetworkSummary{}, err
	}

	return summary, nil
}

func (c *Client) BranchIDs(ctx context.Context) ([]string, error) {
	return c.listIDs(ctx, "branch_ids")
}

func (c *Client) GeneratorIDs(ctx context.Context) ([]string, error) {
	return c.listIDs(ctx, "generator_ids")
}

func (c *Client) LoadIDs(ctx context.Context) ([]string, error) {
	return c.listIDs(ctx, "load_ids")
}

func (c *Client) listIDs(ctx context.Context, op string) ([]string, error) {
	var out struct {
		IDs []string `json:"ids"`
	}

	if err := c.call(ctx, op, nil, &out); err != nil {
		return nil, err
	}

	return out.IDs, nil
}

func (c *Client) RunACPowerFlow(ctx context.Context, opts SolveOptions) (SolveStatus, error) {
	return c.solve(ctx, "run_ac", opts)
}

func (c *Client) RunDCPowerFlow(ctx context.Context, opts SolveOptions) (SolveStatus, error) {
	return c.solve(ctx, "run_dc", opts)
}

func (c *Client) solve(ctx context.Context, op string, opts SolveOptions) (SolveStatus, error) {
	var out struct {
		Status SolveStatus `json:"status"`
	}

	if err := c.call(ctx, op, opts, &out); err != nil {
		return "", err
	}

	return out.Status, nil
}

func (c *Client) BranchInService(ctx context.Context, id string) (bool, error) {
	var out struct {
		InService bool `json:"in_service"`
	}

	params := struct {
		ID string `json:"id"`
	}{ID: id}

	if err := c.call(ctx, "branch_status", params, &out); err != nil {
		return false, err
	}

	return out.InService, nil
}

func (c *Client) SetBranchInService(ctx context.Context, id string, inService bool) error {
	params := struct {
		ID        string `json:"id"`
		InService bool   `json:"in_service"`
	}{ID: id, InService: inService}

	return c.call(ctx, "set_branch_status", params, nil)
}

// ComputePTDF triggers a branch-flow sensitivity calculation for the
// monitored branches against the injection points. The worker discards
// the matrix and reports only its dimensions.
func (c *Client) ComputePTDF(ctx context.Context, monitored, injections []string) (PTDFSummary, error) {
	var summary PTDFSummary

	params := struct {
		Monitored  []string `json:"monitored"`
		Injections []string `json:"injections"`
	}{Monitored: monitored, Injections: injections}

	if err := c.call(ctx, "ptdf", params, &summary); err != nil {
		return PTDFSummary{}, err
	}

	return summary, nil
}

// Close asks the worker to shut down, closes its stdin, and reaps the
// process. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.seq++
		_ = c.enc.Encode(request{ID: c.seq, Op: "shutdown"})
		c.mu.Unlock()

		if err := c.stdin.Close(); err != nil {
			c.closeErr = err
		}

		if c.cmd != nil {
			if err := c.cmd.Wait(); err != nil && c.closeErr == nil {
				c.closeErr = err
			}
		}
	})

	return c.closeErr
}
