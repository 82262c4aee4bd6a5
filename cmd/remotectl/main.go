// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// remotectl resolves remote object names and calls them from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luxfi/remoting"
)

// flags holds the values bound to one command tree
type flags struct {
	configFile string
	baseURL    string
	maxCached  int
	verbose    bool
	callArgs   string
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:   "remotectl",
		Short: "Resolve and call remote objects by name",
		Long: `remotectl resolves remote object names against a base URL and invokes
methods on them. The transport is chosen from the resolved URL scheme
(http, https, zap, grpc).

The base URL comes from --base-url or from the base_url key of the TOML
file given with --config.`,
		SilenceUsage: true,
	}

	resolveCmd := &cobra.Command{
		Use:   "resolve NAME...",
		Short: "Print the endpoint each remote name resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := f.connect(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()

			for _, name := range args {
				endpoint, err := conn.Resolve(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, endpoint)
			}
			return nil
		},
	}

	callCmd := &cobra.Command{
		Use:   "call NAME METHOD",
		Short: "Invoke METHOD on the remote object NAME and print the JSON reply",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var params interface{}
			if f.callArgs != "" {
				if !json.Valid([]byte(f.callArgs)) {
					return fmt.Errorf("--args is not valid JSON: %s", f.callArgs)
				}
				params = json.RawMessage(f.callArgs)
			}

			conn, err := f.connect(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
			defer cancel()

			var reply json.RawMessage
			if err := conn.Invoke(ctx, args[0], args[1], params, &reply); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(reply))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&f.configFile, "config", "c", "", "TOML configuration file")
	rootCmd.PersistentFlags().StringVarP(&f.baseURL, "base-url", "b", "", "base URL remote names are resolved against, overrides the config file")
	rootCmd.PersistentFlags().IntVar(&f.maxCached, "max-cached", remoting.DefaultMaxCachedEndpoints, "maximum number of cached endpoints, 0 disables the cache")
	rootCmd.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "log resolution and transport activity to stderr")

	callCmd.Flags().StringVarP(&f.callArgs, "args", "a", "", "JSON encoded call arguments")
	callCmd.Flags().DurationVarP(&f.timeout, "timeout", "t", 30*time.Second, "call timeout")

	rootCmd.AddCommand(resolveCmd, callCmd)
	return rootCmd
}

func (f *flags) connect(cmd *cobra.Command) (*remoting.URLConnector, error) {
	cfg := &remoting.Config{MaxCachedEndpoints: remoting.DefaultMaxCachedEndpoints}
	if f.configFile != "" {
		loaded, err := remoting.LoadConfig(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if f.baseURL != "" {
		cfg.BaseURL = f.baseURL
	}
	if cmd.Flags().Changed("max-cached") {
		cfg.MaxCachedEndpoints = f.maxCached
	}

	logger := zap.NewNop()
	if f.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		logger = l
	}
	return remoting.Open(cfg, remoting.WithLogger(logger))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgHiRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
