package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goware/urlx"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/vidlink-cli/vidlink/constant"
	"github.com/vidlink-cli/vidlink/icon"
	"github.com/vidlink-cli/vidlink/key"
)

// Field is one registered setting.
type Field struct {
	Key         string
	Value       any
	Description string

	check func(any) error
}

// Section is the key prefix the field is grouped under, e.g. "pipeline".
func (f *Field) Section() string {
	section, _, _ := strings.Cut(f.Key, ".")
	return section
}

// Env returns the environment variable that overrides this field.
func (f *Field) Env() string {
	return strings.ToUpper(constant.App + "_" + EnvKeyReplacer.Replace(f.Key))
}

// Type names the kind of value the field holds.
func (f *Field) Type() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case float64:
		return "float"
	case []string:
		return "list"
	default:
		return "unknown"
	}
}

// Parse converts command line words into a value of the field's type and validates it.
func (f *Field) Parse(raw []string) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s: value required", f.Key)
	}

	var (
		value any
		err   error
	)

	switch f.Value.(type) {
	case string:
		value = raw[0]
	case int:
		value, err = strconv.Atoi(raw[0])
	case bool:
		value, err = strconv.ParseBool(raw[0])
	case float64:
		value, err = strconv.ParseFloat(raw[0], 64)
	case []string:
		value = lo.Compact(lo.FlatMap(raw, func(s string, _ int) []string {
			return lo.Map(strings.Split(s, ","), func(s string, _ int) string { return strings.TrimSpace(s) })
		}))
	default:
		return nil, fmt.Errorf("%s: unsupported type %T", f.Key, f.Value)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: want %s: %w", f.Key, f.Type(), err)
	}

	if f.check != nil {
		if err := f.check(value); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Key, err)
		}
	}

	return value, nil
}

// MarshalJSON reports the current and default values next to the metadata.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Section     string `json:"section"`
		Env         string `json:"env"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Section:     f.Section(),
		Env:         f.Env(),
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.Type(),
	})
}

// UnknownKeyError names a key that was never registered and the closest one that was.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	if closest := Closest(e.Key); closest != "" {
		return fmt.Sprintf("unknown key %s, did you mean %s?", e.Key, closest)
	}
	return "unknown key " + e.Key
}

var (
	fields []*Field
	index  = make(map[string]*Field)
)

// sectionTitles orders the sections and names them for display.
var sectionTitles = []lo.Entry[string, string]{
	{Key: "sources", Value: "Provider selection"},
	{Key: "pipeline", Value: "Pipeline defaults"},
	{Key: "y2mate", Value: "Y2mate endpoints"},
	{Key: "network", Value: "Network"},
	{Key: "discovery", Value: "Discovery"},
	{Key: "search", Value: "Search"},
	{Key: "server", Value: "HTTP adapter"},
	{Key: "icons", Value: "Icons"},
	{Key: "logs", Value: "Logs"},
	{Key: "cli", Value: "CLI"},
}

// Fields lists every registered field in registration order.
func Fields() []*Field {
	return fields
}

// Get returns the field registered under key.
func Get(key string) (*Field, bool) {
	f, ok := index[key]
	return f, ok
}

// Sections lists section names in display order.
func Sections() []string {
	return lo.Map(sectionTitles, func(e lo.Entry[string, string], _ int) string { return e.Key })
}

// SectionTitle returns the display name of a section.
func SectionTitle(section string) string {
	for _, e := range sectionTitles {
		if e.Key == section {
			return e.Value
		}
	}
	return section
}

// InSection lists the fields grouped under section.
func InSection(section string) []*Field {
	return lo.Filter(fields, func(f *Field, _ int) bool { return f.Section() == section })
}

// Closest returns the registered key nearest to key by edit distance.
func Closest(key string) string {
	if len(fields) == 0 {
		return ""
	}

	return lo.MinBy(lo.Keys(index), func(a, b string) bool {
		return levenshtein.Distance(key, a) < levenshtein.Distance(key, b)
	})
}

func register(k string, v any, desc string, check func(any) error) {
	if _, exists := index[k]; exists {
		panic("duplicate config key: " + k)
	}

	f := &Field{Key: k, Value: v, Description: desc, check: check}
	if !lo.Contains(Sections(), f.Section()) {
		panic("config key outside any section: " + k)
	}

	fields = append(fields, f)
	index[k] = f
}

func endpoint(optional bool) func(any) error {
	return func(v any) error {
		s := v.(string)
		if s == "" {
			if optional {
				return nil
			}
			return errors.New("endpoint must not be empty")
		}

		u, err := urlx.Parse(s)
		if err != nil {
			return err
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("unsupported scheme %q", u.Scheme)
		}
		return nil
	}
}

func atLeast[T int | float64](floor T) func(any) error {
	return func(v any) error {
		if n := v.(T); n < floor {
			return fmt.Errorf("must be at least %v", floor)
		}
		return nil
	}
}

func oneOf(options ...string) func(any) error {
	return func(v any) error {
		if !lo.Contains(options, v.(string)) {
			return fmt.Errorf("must be one of %s", strings.Join(options, ", "))
		}
		return nil
	}
}

func nonEmpty(v any) error {
	switch value := v.(type) {
	case string:
		if strings.TrimSpace(value) == "" {
			return errors.New("must not be empty")
		}
	case []string:
		if len(value) == 0 {
			return errors.New("must name at least one entry")
		}
	}
	return nil
}

func logLevel(v any) error {
	_, err := logrus.ParseLevel(v.(string))
	return err
}

func init() {
	register(key.DefaultSources, []string{"y2mate", "y2mate-mirror", "native"}, "Providers to try, in order.\nThe first one that yields a link wins.\nType \"vidlink sources list\" to show available sources", nonEmpty)
	register(key.SourcesUpdateURL, "", "Base URL custom Lua sources are fetched from by \"vidlink sources update\"", endpoint(true))

	register(key.PipelineFormat, "mp4", "Format used when a request does not name one", nonEmpty)
	register(key.PipelineQuality, "auto", "Quality used when a request does not name one.\n\"auto\" picks the provider default tier", nonEmpty)
	register(key.PipelineTimeout, 30, "Seconds allowed for each analyze or convert call.\n0 disables the limit", atLeast(0))

	register(key.Y2mateAnalyze, "https://www.y2mate.com/mates/analyzeV2/ajax", "Analyze endpoint of the y2mate provider", endpoint(false))
	register(key.Y2mateConvert, "https://www.y2mate.com/mates/convertV2/index", "Convert endpoint of the y2mate provider", endpoint(false))
	register(key.Y2mateMirrorAnalyze, "https://v6.www-y2mate.com/mates/analyzeV2/ajax", "Analyze endpoint of the y2mate-mirror provider", endpoint(false))
	register(key.Y2mateMirrorConvert, "https://v6.www-y2mate.com/mates/convertV2/index", "Convert endpoint of the y2mate-mirror provider", endpoint(false))

	register(key.NetworkBrowserTLS, false, "Use a Chrome TLS fingerprint for provider requests", nil)
	register(key.NetworkUserAgent, constant.UserAgent, "User-Agent header sent to providers", nonEmpty)

	register(key.DiscoveryAPIKey, "", "YouTube Data API key.\nWhen empty the keyring is consulted, then search falls back to scraping", nil)
	register(key.DiscoveryAPIKeyFallback, "", "Secondary YouTube Data API key tried when the first one fails", nil)

	register(key.SearchLimit, 10, "Limit of search results to show", atLeast(1))
	register(key.SearchShowQuerySuggestions, true, "Show query suggestions when searching", nil)

	register(key.ServerAddress, ":8080", "Address the HTTP adapter listens on", nonEmpty)
	register(key.ServerRateLimit, 5.0, "Requests per second allowed per client by the HTTP adapter.\n0 disables the limiter", atLeast(0.0))
	register(key.ServerBurst, 10, "Burst size of the HTTP adapter rate limiter", atLeast(1))

	register(key.IconsVariant, string(icon.Plain), "Icons variant.\nAvailable options are: "+strings.Join(icon.Variants(), ", ")+" (nerd-font required for nerd)", oneOf(icon.Variants()...))

	register(key.LogsWrite, false, "Write logs", nil)
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace", logLevel)
	register(key.LogsJson, false, "Use json format for logs", nil)

	register(key.CliColored, true, "Enable colored CLI output", nil)
	register(key.CliVersionCheck, true, "Enable automatic version check", nil)
}
