package constant

// Lua Provider Function Identifiers - these constants name the global functions a custom provider script defines.
const (
	AnalyzeFn  = "Analyze"
	ConvertFn  = "Convert"
	SearchFn   = "Search"
	LookupFn   = "Lookup"
	DefaultsFn = "Defaults"
)

// SourceTemplate is a Go text/template for scaffolding new Lua provider files.
const SourceTemplate = `{{ $divider := repeat "-" (plus (max (len .URL) (len .Name) (len .Author) 3) 12) }}{{ $divider }}
-- @name    {{ .Name }}
-- @url     {{ .URL }}
-- @author  {{ .Author }}
-- @license MIT
{{ $divider }}


---@alias entry { q: string, q_text: string|nil, size: string|nil, k: string }
---@alias analysis { status: string, vid: string, title: string|nil, author: string|nil, thumbnail: string|nil, links: table<string, entry[]> }
---@alias conversion { status: string, dlink: string, q_text: string|nil, size: string|nil, ftype: string|nil, fquality: string|nil }
---@alias hit { id: string, title: string|nil, author: string|nil, url: string|nil, seconds: number|nil, views: number|nil }


----- IMPORTS -----
local http = require("http_tls")
local json = require("json")
--- END IMPORTS ---



----- VARIABLES -----
local base = "{{ .URL }}"
--- END VARIABLES ---



----- MAIN -----

--- Analyzes a canonical watch URL.
-- Links are listed per format, best first. Each k is passed back to Convert.
-- @param url string Canonical watch URL
-- @return analysis
function {{ .AnalyzeFn }}(url)
	return { status = "error", links = {} }
end


--- Converts one catalog entry into a download link.
-- @param vid string Video id reported by Analyze
-- @param k string Token of the chosen entry
-- @return conversion
function {{ .ConvertFn }}(vid, k)
	return { status = "error" }
end


--- Optional. Searches videos, best first. Remove to use the default discovery.
-- @param query string
-- @return hit[]
-- function {{ .SearchFn }}(query)
-- 	return {}
-- end


--- Optional. Quality picked for each format when auto is requested.
-- @return table<string, string>
function {{ .DefaultsFn }}()
	return { mp4 = "360p", mp3 = "128kbps" }
end

--- END MAIN ---




----- HELPERS -----
--- END HELPERS ---

-- ex: ts=4 sw=4 et filetype=lua
`
