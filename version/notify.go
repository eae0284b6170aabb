package version

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vidlink-cli/vidlink/color"
	"github.com/vidlink-cli/vidlink/constant"
	"github.com/vidlink-cli/vidlink/icon"
	"github.com/vidlink-cli/vidlink/key"
	"github.com/vidlink-cli/vidlink/log"
	"github.com/vidlink-cli/vidlink/style"
	"github.com/vidlink-cli/vidlink/util"
	"github.com/spf13/viper"
)

// Notify tells the user on stderr when a newer release is published.
// It stays quiet when cli.version_check is off or stderr is not a terminal.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) || !util.IsTerminal(os.Stderr) {
		return
	}

	erase := util.PrintErasable(fmt.Sprintf("%s Checking for a newer vidlink...", icon.Get(icon.Progress)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out strings.Builder
	notify(ctx, &out, constant.Version)
	erase()
	fmt.Fprint(os.Stderr, out.String())
}

func notify(ctx context.Context, w io.Writer, current string) {
	latest, err := Latest(ctx)
	if err != nil {
		log.Debugf("version check: %s", err)
		return
	}

	if !Newer(latest, current) {
		return
	}

	fmt.Fprintf(w, "\n%s vidlink %s is out %s\n%s\n\n",
		style.Fg(color.Success)("▇▇▇"),
		style.Bold(latest),
		style.Faint("(this is "+current+")"),
		style.Faint(ReleasePage(latest)),
	)
}

// ReleasePage links the release notes of version.
func ReleasePage(version string) string {
	return "https://github.com/vidlink-cli/vidlink/releases/tag/v" + strings.TrimPrefix(version, "v")
}

// release is a parsed "vMAJOR.MINOR.PATCH[-pre]" tag.
type release struct {
	parts [3]int
	pre   string
}

func parseRelease(s string) (release, error) {
	var r release
	core, pre, _ := strings.Cut(strings.TrimPrefix(strings.TrimSpace(s), "v"), "-")
	fields := strings.Split(core, ".")
	if len(fields) != 3 {
		return r, fmt.Errorf("version %q: want major.minor.patch", s)
	}

	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return r, fmt.Errorf("version %q: bad component %q", s, f)
		}
		r.parts[i] = n
	}

	r.pre = pre
	return r, nil
}

// Compare orders two release tags. A pre-release sorts before its final release.
// Returns 1 if a > b, -1 if a < b, and 0 if equal.
func Compare(a, b string) (int, error) {
	ra, err := parseRelease(a)
	if err != nil {
		return 0, err
	}

	rb, err := parseRelease(b)
	if err != nil {
		return 0, err
	}

	for i := range ra.parts {
		switch {
		case ra.parts[i] > rb.parts[i]:
			return 1, nil
		case ra.parts[i] < rb.parts[i]:
			return -1, nil
		}
	}

	switch {
	case ra.pre == rb.pre:
		return 0, nil
	case ra.pre == "":
		return 1, nil
	case rb.pre == "":
		return -1, nil
	}

	return strings.Compare(ra.pre, rb.pre), nil
}

// Newer reports whether latest is a strictly newer release than current.
// Unparseable tags are never newer.
func Newer(latest, current string) bool {
	comp, err := Compare(latest, current)
	return err == nil && comp > 0
}
