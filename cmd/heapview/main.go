// Command heapview encodes a JSON, YAML or CBOR document into a value
// store and prints the resulting handle graph.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/heapcodec"
	"github.com/wippyai/heapcodec/codec"
	"github.com/wippyai/heapcodec/memstore"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	format       string
	optional     string
	structTyping string
	variants     string
	maxDepth     int
	configPath   string
	roundtrip    bool
	save         string
	load         string
	root         int
	interactive  bool
	verbose      bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var f flags

	fs := pflag.NewFlagSet("heapview", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.format, "format", "", "input format: json, jsonc, yaml, cbor (default: by extension)")
	fs.StringVar(&f.optional, "optional", "", "optional policy: unit, symbol")
	fs.StringVar(&f.structTyping, "struct-typing", "", "struct typing: exclude, include")
	fs.StringVar(&f.variants, "variants", "", "variant naming: full, short, index")
	fs.IntVar(&f.maxDepth, "max-depth", 0, "maximum nesting depth")
	fs.StringVar(&f.configPath, "config", "", "YAML config file with codec options")
	fs.BoolVar(&f.roundtrip, "roundtrip", false, "decode the root back and print it as YAML")
	fs.StringVar(&f.save, "save", "", "write the store snapshot to this file")
	fs.StringVar(&f.load, "load", "", "read a store snapshot instead of an input document")
	fs.IntVar(&f.root, "root", -1, "handle to display (default: the encoded document, or the last value of a snapshot)")
	fs.BoolVarP(&f.interactive, "interactive", "i", false, "browse the graph in a TUI")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log codec activity to stderr")
	fs.Usage = func() { printHelp(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		return err
	}

	log := zap.NewNop()
	if f.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		log = l
	}
	defer func() { _ = log.Sync() }()
	codec.SetLogger(log.Named("codec"))

	opts, err := resolveOptions(fs, f)
	if err != nil {
		return err
	}

	store, root, err := buildStore(fs.Args(), f, opts, stdin, log)
	if err != nil {
		return err
	}

	if f.save != "" {
		if err := saveSnapshot(store, f.save); err != nil {
			return err
		}
		log.Info("snapshot written", zap.String("path", f.save), zap.Int("values", store.Len()))
	}

	if f.roundtrip {
		v, err := codec.NewDecoder(store, opts).DecodeAny(root)
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("format: %w", err)
		}
		_, err = stdout.Write(out)
		return err
	}

	if f.interactive {
		return runInteractive(store, root)
	}

	color, width := terminalInfo(stdout)
	tree, err := renderTree(store, root, newStyles(color), width)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, tree)
	return err
}

// resolveOptions layers the config file under explicitly set flags.
func resolveOptions(fs *pflag.FlagSet, f flags) (codec.Options, error) {
	var cfg config
	if f.configPath != "" {
		c, err := loadConfig(f.configPath)
		if err != nil {
			return codec.Options{}, err
		}
		cfg = c
	}

	if fs.Changed("optional") {
		cfg.Optional = f.optional
	}
	if fs.Changed("struct-typing") {
		cfg.StructTyping = f.structTyping
	}
	if fs.Changed("variants") {
		cfg.Variants = f.variants
	}
	if fs.Changed("max-depth") {
		cfg.MaxDepth = f.maxDepth
	}
	return cfg.options()
}

func buildStore(args []string, f flags, opts codec.Options, stdin io.Reader, log *zap.Logger) (*memstore.Store, heapcodec.Handle, error) {
	storeLog := memstore.WithLogger(log.Named("memstore"))

	var (
		store   *memstore.Store
		encoded heapcodec.Handle
	)
	if f.load != "" {
		file, err := os.Open(f.load)
		if err != nil {
			return nil, 0, fmt.Errorf("open snapshot: %w", err)
		}
		defer file.Close()

		store, err = memstore.ReadSnapshot(file, storeLog)
		if err != nil {
			return nil, 0, fmt.Errorf("load snapshot: %w", err)
		}
	} else {
		if len(args) != 1 {
			return nil, 0, errors.New("expected exactly one input path (use - for stdin)")
		}
		doc, err := readInput(args[0], f.format, stdin)
		if err != nil {
			return nil, 0, err
		}
		store = memstore.New(storeLog)
		encoded, err = codec.Marshal(store, doc, opts)
		if err != nil {
			return nil, 0, fmt.Errorf("encode: %w", err)
		}
		if f.root < 0 {
			return store, encoded, nil
		}
	}

	root, err := selectRoot(f.root, store.Len())
	if err != nil {
		return nil, 0, err
	}
	return store, root, nil
}

// selectRoot maps a negative index to the last value in the store.
func selectRoot(root, n int) (heapcodec.Handle, error) {
	if root < 0 {
		root = n - 1
	}
	if root < 0 || root >= n {
		return 0, fmt.Errorf("root handle %d out of range [0, %d)", root, n)
	}
	return heapcodec.Handle(root), nil
}

func saveSnapshot(store *memstore.Store, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := store.WriteSnapshot(file); err != nil {
		file.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	return file.Close()
}

// terminalInfo reports whether w is a color-capable terminal and its width.
func terminalInfo(w io.Writer) (bool, int) {
	file, ok := w.(*os.File)
	if !ok {
		return false, 0
	}
	fd := int(file.Fd())
	if !term.IsTerminal(fd) {
		return false, 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return true, 0
	}
	return true, width
}

func printHelp(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: heapview [flags] <input|->")
	fmt.Fprintln(w, "       heapview --load <snapshot> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Encodes a document into a value store and prints the handle graph.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, fs.FlagUsages())
}
