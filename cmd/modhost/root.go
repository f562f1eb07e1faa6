// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package main

import (
	"github.com/spf13/cobra"

	"github.com/modhost/modhost/config"
	"github.com/modhost/modhost/extension"
	"github.com/modhost/modhost/host"
	"github.com/modhost/modhost/log"
)

type options struct {
	configFile string
	domainsDir string
	appsDir    string
	logLevel   string
	watch      bool
}

func newRootCommand() *cobra.Command {
	opts := new(options)
	root := &cobra.Command{
		Use:   "modhost",
		Short: "Host isolated domains, applications and plugins",
		Long: `modhost runs independently deployed artifacts side by side without symbol
collisions, and drives the lifecycle of the core extensions listed in the
extension registration files.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "configuration file (YAML)")
	flags.StringVar(&opts.domainsDir, "domains-dir", "", "folder holding one sub folder per domain")
	flags.StringVar(&opts.appsDir, "apps-dir", "", "folder holding one sub folder per application")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.BoolVar(&opts.watch, "watch", false, "redeploy artifacts when their folders change")

	root.AddCommand(newRunCommand(opts), newResolveCommand(opts))
	return root
}

// load reads the configuration file then applies the flags set on cmd
func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("domains-dir") {
		cfg.DomainsDir = o.domainsDir
	}
	if flags.Changed("apps-dir") {
		cfg.AppsDir = o.appsDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("watch") {
		cfg.Watch = o.watch
	}
	return cfg, cfg.Validate()
}

// newHost builds a host knowing the extensions bundled with the binary
func newHost(cfg *config.Config, logger log.Logger) (*host.Host, error) {
	return host.New(cfg,
		host.WithLogger(logger),
		host.WithExtension(auditExtensionID, func() extension.Extension { return newAuditExtension(logger) }))
}
