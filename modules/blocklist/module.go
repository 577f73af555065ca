// Package blocklist provides the `blocklist` step: it fetches several
// third-party domain lists, normalizes them to one domain per line, and
// concatenates them into the target's output file.
package blocklist

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/searchengine/internal/ctxlog"
	"github.com/vk/searchengine/internal/registry"
	"github.com/vk/searchengine/modules/download"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for a blocklist target.
type Input struct {
	// URLs are fetched and concatenated in order.
	URLs []string `hcl:"urls"`
}

// Register registers the blocklist step with the application's registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("blocklist", &registry.RegisteredStep{
		NewInput: func() any { return new(Input) },
		Fn:       onRunBlocklist,
	})
}

func onRunBlocklist(ctx context.Context, sc *registry.StepContext, input any) error {
	in := input.(*Input)
	logger := ctxlog.FromContext(ctx)

	if len(sc.Outputs) != 1 {
		return fmt.Errorf("blocklist target %q must declare exactly one output", sc.Target)
	}
	if len(in.URLs) == 0 {
		return fmt.Errorf("blocklist target %q has no source urls", sc.Target)
	}
	dest := sc.Outputs[0]

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".blocklist-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, url := range in.URLs {
		n, err := appendSource(ctx, w, url)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("fetching blocklist %s: %w", url, err)
		}
		logger.Info("Blocklist source merged.", "url", url, "domains", n)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), dest)
}

// appendSource streams one remote list into w, returning how many domain
// lines it contributed.
func appendSource(ctx context.Context, w *bufio.Writer, url string) (int, error) {
	resp, err := download.Get(ctx, url, "text/plain")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	count := 0
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		domain, ok := normalizeLine(scanner.Text())
		if !ok {
			continue
		}
		if _, err := w.WriteString(domain + "\n"); err != nil {
			return count, err
		}
		count++
	}
	return count, scanner.Err()
}

// normalizeLine extracts a bare lowercase domain from a list line. Supported
// inputs: plain domain lists with #-comments and hosts-file style
// "0.0.0.0 domain" entries.
func normalizeLine(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
		return "", false
	}
	fields := strings.Fields(line)
	domain := fields[len(fields)-1]
	domain = strings.ToLower(strings.TrimSuffix(domain, "."))
	if domain == "" || strings.ContainsAny(domain, "/:") {
		return "", false
	}
	return domain, true
}
