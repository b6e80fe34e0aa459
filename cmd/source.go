package main

import (
	"net/http"

	"mailguard/internal/config"
	"mailguard/pkg/domainsource"
	"mailguard/pkg/domainsource/filelist"
	"mailguard/pkg/domainsource/httplist"
)

// newSource builds the configured domain source: every URL merged into one
// list, falling back to the local file when any URL cannot be fetched.
func newSource(cfg *config.Config) domainsource.Source {
	format := domainsource.Format(cfg.Source.Format)
	httpClient := &http.Client{Timeout: cfg.Source.Timeout}

	urls := cfg.Source.URLs
	if len(urls) == 0 {
		urls = []string{httplist.DefaultURL}
	}
	remote := make(domainsource.Union, 0, len(urls))
	for _, u := range urls {
		remote = append(remote, httplist.New(httpClient, u, format))
	}

	if cfg.Source.LocalFile == "" {
		return remote
	}

	return domainsource.Fallback{remote, filelist.New(cfg.Source.LocalFile, format)}
}
