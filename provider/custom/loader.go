// Package custom runs provider strategies written in Lua.
package custom

import (
	"fmt"

	"github.com/vidlink-cli/vidlink/constant"
	"github.com/vidlink-cli/vidlink/util"
	libs "github.com/metafates/mangal-lua-libs"
	lua "github.com/yuin/gopher-lua"
)

// IDfromName generates a canonical provider identifier for a given Lua script basename.
func IDfromName(name string) string {
	return name + " custom"
}

// LoadSource compiles (or reuses) the script at path and runs it in a fresh state.
func LoadSource(path string) (*Source, error) {
	proto, err := compileFile(path)
	if err != nil {
		return nil, err
	}
	return load(util.FileStem(path), proto)
}

// Load runs code as a provider named name.
func Load(name string, code []byte) (*Source, error) {
	proto, err := compile(name, code)
	if err != nil {
		return nil, err
	}
	return load(name, proto)
}

func load(name string, proto *lua.FunctionProto) (*Source, error) {
	state := lua.NewState()
	libs.Preload(state)
	preloadTLS(state)

	if err := run(state, proto); err != nil {
		state.Close()
		return nil, fmt.Errorf("run %s: %w", name, err)
	}

	for _, fn := range []string{constant.AnalyzeFn, constant.ConvertFn} {
		if state.GetGlobal(fn).Type() != lua.LTFunction {
			state.Close()
			return nil, fmt.Errorf("function %s is required but not defined in %s", fn, name)
		}
	}

	return newSource(name, state), nil
}
