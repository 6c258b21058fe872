/*
Copyright 2025 The goARRG Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"goarrg.com/asset"
	"goarrg.com/debug"
	"goarrg.com/rhi/mtl"

	"golang.org/x/tools/go/packages"
)

var flags flag.FlagSet

type descKind uint32

const (
	descKindRender descKind = iota
	descKindDepthStencil
	descKindSampler
)

func (k *descKind) UnmarshalText(data []byte) error {
	switch string(data) {
	case "render":
		*k = descKindRender
	case "depth-stencil":
		*k = descKindDepthStencil
	case "sampler":
		*k = descKindSampler
	default:
		return debug.Errorf("Invalid value: %q", data)
	}
	return nil
}

func (k descKind) MarshalText() (text []byte, err error) {
	switch k {
	case descKindRender:
		return ([]byte)("render"), nil
	case descKindDepthStencil:
		return ([]byte)("depth-stencil"), nil
	case descKindSampler:
		return ([]byte)("sampler"), nil
	default:
		return nil, debug.Errorf("Invalid value: %d", k)
	}
}

type generator uint32

const (
	generatorJSON generator = iota
	generatorGO
)

func (g *generator) UnmarshalText(data []byte) error {
	switch string(data) {
	case "json":
		*g = generatorJSON
	case "go":
		*g = generatorGO
	default:
		return debug.Errorf("Invalid value: %q", data)
	}
	return nil
}

func (g generator) MarshalText() (text []byte, err error) {
	switch g {
	case generatorJSON:
		return ([]byte)("json"), nil
	case generatorGO:
		return ([]byte)("go"), nil
	default:
		return nil, debug.Errorf("Invalid value: %d", g)
	}
}

// hashedDesc is a descriptor together with the hash its cache files it under.
type hashedDesc struct {
	Kind descKind
	Hash string
	Desc any
}

func main() {
	debug.SetLevel(debug.LogLevelWarn)

	flags.Usage = help
	flags.Init("", flag.ExitOnError)

	v := flags.Bool("v", false, "Verbose - Print high level tasks")
	vv := flags.Bool("vv", false, "Very Verbose - Print everything")

	dir := flags.String("dir", ".", "Sets the directory for the purposes of <file> resolution.")
	outDir := flags.String("out-dir", ".", "Sets the output directory.")

	kind := descKind(0)
	flags.TextVar(&kind, "kind", descKindRender, "Sets the type of descriptor in <file>.\n"+
		"Valid values are \"render\", \"depth-stencil\" and \"sampler\".")

	g := generator(0)
	flags.TextVar(&g, "generator", generatorJSON, "Sets the generator to use when outputting the descriptor.\n"+
		"Valid values are \"json\" and \"go\".")

	err := flags.Parse(os.Args[1:])
	if err != nil {
		panic(err)
	}

	if *v {
		debug.SetLevel(debug.LogLevelInfo)
	} else if *vv {
		debug.SetLevel(debug.LogLevelVerbose)
	}

	args := flags.Args()
	if len(args) == 0 {
		debug.EPrintf("No input file provided.")
		help()
		os.Exit(2)
	} else if len(args) > 1 {
		debug.EPrintf("mtlkey can only process one file at a time.")
		help()
		os.Exit(2)
	}

	name := args[0]
	debug.IPrintf("Reading descriptor")
	data, err := readFile(asset.DirFS(*dir), name)
	if err != nil {
		panic(err)
	}
	desc, err := decodeDesc(kind, data)
	if err != nil {
		panic(debug.ErrorWrapf(err, "Failed to decode %q", name))
	}

	outName := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	err = os.MkdirAll(*outDir, 0o755)
	if err != nil {
		panic(err)
	}

	switch g {
	case generatorJSON:
		genJson(*outDir, outName, desc)
	case generatorGO:
		genGo(*outDir, outName, desc)
	}
}

func readFile(fs *asset.FileSystem, name string) ([]byte, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// decodeDesc fills a reset descriptor from data, so fields missing from the file keep
// their defaults.
func decodeDesc(kind descKind, data []byte) (hashedDesc, error) {
	switch kind {
	case descKindRender:
		desc := mtl.NewRenderPipelineDesc()
		if err := json.Unmarshal(data, &desc); err != nil {
			return hashedDesc{}, err
		}
		return hashedDesc{Kind: kind, Hash: fmt.Sprintf("0x%016X", desc.Hash()), Desc: desc}, nil
	case descKindDepthStencil:
		desc := mtl.NewDepthStencilDesc()
		if err := json.Unmarshal(data, &desc); err != nil {
			return hashedDesc{}, err
		}
		return hashedDesc{Kind: kind, Hash: fmt.Sprintf("0x%016X", desc.Hash()), Desc: desc}, nil
	default:
		desc := mtl.SamplerDesc{}
		desc.Reset()
		if err := json.Unmarshal(data, &desc); err != nil {
			return hashedDesc{}, err
		}
		return hashedDesc{Kind: kind, Hash: fmt.Sprintf("0x%016X", desc.Hash()), Desc: desc}, nil
	}
}

func help() {
	fmt.Fprintf(os.Stderr, "mtlkey normalizes a pipeline or state descriptor stored as json and prints the hash\n"+
		"the mtl caches file it under.\n"+
		"\nUnset fields take the values of a reset descriptor. The go generator emits a function returning the\n"+
		"descriptor so pipelines can be warmed at startup without parsing json.\n"+
		"\n")
	args := ""
	flags.VisitAll(func(f *flag.Flag) {
		n, u := flag.UnquoteUsage(f)
		if f.DefValue != "" {
			u += "\n\nDefaults to \"" + f.DefValue + "\"."
		}
		args += "\t-" + f.Name + " " + n + "\n\t\t" + strings.ReplaceAll(strings.TrimSpace(u), "\n", "\n\t\t") + "\n"
	})
	fmt.Fprintf(os.Stderr, "Usage:\n\t%s [arguments] <file>\n\nArguments:\n%s", filepath.Base(os.Args[0]), args)
}

func genJson(dir, name string, desc hashedDesc) {
	j, err := json.MarshalIndent(desc, "", "\t")
	if err != nil {
		panic(err)
	}

	jsonFile := filepath.Join(dir, name+".key.json")
	debug.IPrintf("Writing descriptor to: %q", jsonFile)
	err = os.WriteFile(jsonFile, j, 0o655)
	if err != nil {
		panic(err)
	}
}

func genGo(dir, name string, desc hashedDesc) {
	filename := filepath.Join(dir, "zmtlkey_"+name+".go")
	debug.IPrintf("Writing descriptor to: %q", filename)
	fOut, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	defer fOut.Close()

	{
		args := ""
		for _, arg := range os.Args[1:] {
			args += arg + " "
		}
		fmt.Fprintf(fOut, "// go run goarrg.com/rhi/mtl/cmd/mtlkey %s\n", args)
		fmt.Fprintf(fOut, "// Code generated by the command above; DO NOT EDIT.\n\n")
	}

	{
		p, err := packages.Load(&packages.Config{Mode: packages.NeedName}, dir)
		if err != nil {
			panic(debug.ErrorWrapf(err, "Failed to load package at %q", dir))
		}
		if len(p) == 0 {
			fmt.Fprintf(fOut, "package %s\n\n", filepath.Base(dir))
		} else if p[0].Name != "" {
			fmt.Fprintf(fOut, "package %s\n\n", filepath.Base(p[0].Name))
		} else {
			fmt.Fprintf(fOut, "package %s\n\n", filepath.Base(p[0].PkgPath))
		}

		fmt.Fprintf(fOut, "import(\n")
		fmt.Fprintf(fOut, "\t\"goarrg.com/rhi/mtl\"\n")
		fmt.Fprintf(fOut, ")\n\n")
	}

	{
		sb := strings.Builder{}
		sb.Grow(len(name))
		for _, r := range name {
			if unicode.IsDigit(r) || unicode.IsLetter(r) {
				sb.WriteRune(r)
			}
			if r == '-' || r == '.' {
				sb.WriteRune('_')
			}
		}

		fmt.Fprintf(fOut, "// %s\n", desc.Hash)
		fmt.Fprintf(fOut, "func mtlkeyLoad_%s() (desc %T) {\n", sb.String(), desc.Desc)
		fmt.Fprintf(fOut, "\tdesc = %#v\n", desc.Desc)
		fmt.Fprintf(fOut, "\treturn\n")
		fmt.Fprintf(fOut, "}\n")
	}
}
