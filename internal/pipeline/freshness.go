package pipeline

import (
	"fmt"
	"os"
	"time"

	"github.com/vk/searchengine/internal/manifest"
)

// upToDate reports whether a target's outputs can be reused: every output
// exists and none is older than the newest source. A target with outputs but
// no sources is fresh as soon as its outputs exist (downloads behave this
// way). A missing source is an error, matching make's "no rule to make"
// behavior for files nothing produces.
func upToDate(target *manifest.Target) (bool, error) {
	var oldestOutput time.Time
	for i, out := range target.Outputs {
		info, err := os.Stat(out)
		if err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}
			return false, fmt.Errorf("stat output %q: %w", out, err)
		}
		if i == 0 || info.ModTime().Before(oldestOutput) {
			oldestOutput = info.ModTime()
		}
	}

	for _, src := range target.Sources {
		info, err := os.Stat(src)
		if err != nil {
			if os.IsNotExist(err) {
				return false, fmt.Errorf("source %q of target %q does not exist", src, target.Name)
			}
			return false, fmt.Errorf("stat source %q: %w", src, err)
		}
		if info.ModTime().After(oldestOutput) {
			return false, nil
		}
	}

	return true, nil
}
