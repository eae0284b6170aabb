// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Provider Selection - these keys control which provider strategies run and in which order.
const (
	DefaultSources   = "sources.default"
	SourcesUpdateURL = "sources.update_url"
)

// Pipeline Defaults - these keys pin the format and quality policy used when a request omits them.
const (
	PipelineFormat  = "pipeline.format"
	PipelineQuality = "pipeline.quality"
	PipelineTimeout = "pipeline.timeout"
)

// Analyze/Convert Endpoints - these keys locate the upstream conversion services.
const (
	Y2mateAnalyze       = "y2mate.analyze"
	Y2mateConvert       = "y2mate.convert"
	Y2mateMirrorAnalyze = "y2mate.mirror_analyze"
	Y2mateMirrorConvert = "y2mate.mirror_convert"
)

// Network - these keys tune outgoing HTTP.
const (
	NetworkBrowserTLS = "network.browser_tls"
	NetworkUserAgent  = "network.user_agent"
)

// Discovery - these keys configure search and metadata lookup.
const (
	DiscoveryAPIKey         = "discovery.api_key"
	DiscoveryAPIKeyFallback = "discovery.api_key_fallback"
)

// Search Interaction - these keys define search listing and suggestions.
const (
	SearchLimit                = "search.limit"
	SearchShowQuerySuggestions = "search.show_query_suggestions"
)

// HTTP Adapter - these keys configure the serve command.
const (
	ServerAddress   = "server.address"
	ServerRateLimit = "server.rate_limit"
	ServerBurst     = "server.burst"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
