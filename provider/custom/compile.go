package custom

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/vidlink-cli/vidlink/filesystem"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// protos caches compiled chunks by content hash, so an updated script is recompiled
// while every state created from an unchanged one shares the same prototype.
var protos sync.Map

func compile(name string, code []byte) (*lua.FunctionProto, error) {
	sum := sha256.Sum256(code)
	if cached, ok := protos.Load(sum); ok {
		return cached.(*lua.FunctionProto), nil
	}

	chunk, err := parse.Parse(bytes.NewReader(code), name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}

	protos.Store(sum, proto)
	return proto, nil
}

func compileFile(path string) (*lua.FunctionProto, error) {
	code, err := filesystem.API().ReadFile(path)
	if err != nil {
		return nil, err
	}
	return compile(path, code)
}

// run executes the top level of proto in L.
func run(L *lua.LState, proto *lua.FunctionProto) error {
	L.Push(L.NewFunctionFromProto(proto))
	return L.PCall(0, lua.MultRet, nil)
}

// Validate reports whether code compiles as a Lua chunk.
func Validate(name string, code []byte) error {
	_, err := compile(name, code)
	return err
}
