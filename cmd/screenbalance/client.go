package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"screenbalance/internal/config"
)

// client talks to the web API of a running tracker
type client struct {
	base string
	http *http.Client
}

type statusResponse struct {
	State    string `json:"state"`
	Control  string `json:"control"`
	Status   string `json:"status"`
	Glyph    string `json:"glyph"`
	Displays int    `json:"displays"`
	Uptime   string `json:"uptime"`
}

type pauseResponse struct {
	State   string `json:"state"`
	Control string `json:"control"`
}

func newClient(cfg *config.Config) *client {
	return &client{
		base: "http://" + cfg.WebAddress(),
		http: &http.Client{Timeout: 3 * time.Second},
	}
}

func (c *client) do(method, path string, out interface{}) error {
	req, err := http.NewRequest(method, c.base+path, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("%s %s: %s", method, path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}

func (c *client) status() (*statusResponse, error) {
	var s statusResponse
	if err := c.do(http.MethodGet, "/api/status", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *client) togglePause() (*pauseResponse, error) {
	var p pauseResponse
	if err := c.do(http.MethodPost, "/api/pause", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Toggle pause on a running tracker",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.Web.Enabled {
			return fmt.Errorf("pause needs the web API of the running tracker (web.enabled is false)")
		}

		resp, err := newClient(cfg).togglePause()
		if err != nil {
			return fmt.Errorf("failed to reach tracker at %s: %w", cfg.WebAddress(), err)
		}

		fmt.Printf("Tracking is now %s\n", resp.State)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pauseCmd)
}
