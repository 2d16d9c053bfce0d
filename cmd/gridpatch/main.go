package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/light-bringer/storefront-filters/internal/client/dom"
	"github.com/light-bringer/storefront-filters/internal/client/filterstate"
	"github.com/light-bringer/storefront-filters/internal/client/proxyclient"
	"github.com/light-bringer/storefront-filters/internal/pkg/logging"
)

var (
	htmlPath  string
	pageURL   string
	proxyBase string
	proxyPath string
	outPath   string
	sets      []string
	timeout   time.Duration
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "gridpatch",
	Short: "Run the collection filter synchronizer against a saved page",
	Long: `Loads a saved collection page, applies the filters from --page and --set,
calls the filter endpoint through the app proxy and writes the patched HTML.

Example:
  gridpatch --html shirts.html --page https://demo.myshopify.com/collections/shirts \
    --set vendor=Acme --set color=Red --out patched.html`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if verbose {
			level = "debug"
		}
		logger, err := logging.New(level, true)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		raw, err := os.ReadFile(htmlPath)
		if err != nil {
			return fmt.Errorf("read page: %w", err)
		}
		page, err := pageWithFilters(pageURL, sets)
		if err != nil {
			return err
		}

		base := proxyBase
		if base == "" {
			base = page.Scheme + "://" + page.Host
		}
		fetcher, err := proxyclient.New(proxyclient.Options{BaseURL: base, Path: proxyPath, Timeout: timeout}, logger.Named("proxy"))
		if err != nil {
			return err
		}

		var out io.Writer = cmd.OutOrStdout()
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout+time.Second)
		defer cancel()

		res, err := patch(ctx, raw, page, fetcher, logger)
		if err != nil {
			return err
		}
		logger.Info("Grid patched",
			zap.String("url", res.URL.String()),
			zap.Int("visible", res.Result.Visible),
			zap.Int("hidden", res.Result.Hidden),
			zap.Bool("empty", res.Result.EmptyShown),
		)
		return res.Document.Render(out)
	},
}

func init() {
	rootCmd.Flags().StringVar(&htmlPath, "html", "", "saved collection page HTML (required)")
	rootCmd.Flags().StringVar(&pageURL, "page", "", "collection page URL, may carry filter params (required)")
	rootCmd.Flags().StringVar(&proxyBase, "proxy-base", "", "origin serving the app proxy (defaults to the page origin)")
	rootCmd.Flags().StringVar(&proxyPath, "proxy-path", proxyclient.DefaultPath, "app proxy path")
	rootCmd.Flags().StringVarP(&outPath, "out", "o", "", "write patched HTML here instead of stdout")
	rootCmd.Flags().StringArrayVar(&sets, "set", nil, "filter to apply as field=value (vendor, color, size, tag, type, min, max)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "request timeout")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	_ = rootCmd.MarkFlagRequired("html")
	_ = rootCmd.MarkFlagRequired("page")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// pageWithFilters merges --set values into the page URL query.
func pageWithFilters(raw string, sets []string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid page url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("page url must be absolute: %s", raw)
	}

	q := u.Query()
	for _, s := range sets {
		field, value, ok := strings.Cut(s, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("expected field=value, got %q", s)
		}
		q.Set(strings.ToLower(field), value)
	}
	u.RawQuery = q.Encode()
	return u, nil
}

type patchResult struct {
	Document *dom.Document
	URL      *url.URL
	Result   dom.PatchResult
}

// patch runs one synchronizer initialisation against fetcher and returns
// the document once the first response has been applied.
func patch(ctx context.Context, raw []byte, page *url.URL, fetcher filterstate.Fetcher, logger *zap.Logger) (*patchResult, error) {
	doc, err := dom.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	history := filterstate.NewMemoryHistory(page)
	loop := filterstate.NewLoop(0)
	outcomes := make(chan filterstate.Outcome, 4)

	synchronizer, err := filterstate.New(filterstate.Options{
		Document: doc,
		History:  history,
		Fetcher:  fetcher,
		Loop:     loop,
		Logger:   logger.Named("sync"),
		OnOutcome: func(o filterstate.Outcome) {
			select {
			case outcomes <- o:
			default:
			}
		},
	})
	if err != nil {
		return nil, err
	}

	loopCtx, stopLoop := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = loop.Run(loopCtx)
	}()
	defer func() {
		synchronizer.Close()
		loop.Stop()
		stopLoop()
		<-loopDone
	}()

	if !loop.Post(synchronizer.Init) {
		return nil, filterstate.ErrLoopStopped
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case o := <-outcomes:
			if o.Stale {
				continue
			}
			if o.Err != nil {
				return nil, o.Err
			}
			res := &patchResult{Document: doc, Result: o.Result}
			if err := loop.Do(func() { res.URL = history.Location() }); err != nil {
				return nil, err
			}
			return res, nil
		}
	}
}
