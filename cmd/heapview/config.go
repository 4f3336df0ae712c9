package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/heapcodec/codec"
)

// config mirrors the codec option axes. Empty fields keep the codec
// defaults.
type config struct {
	Optional     string `yaml:"optional"`
	StructTyping string `yaml:"struct_typing"`
	Variants     string `yaml:"variants"`
	MaxDepth     int    `yaml:"max_depth"`
}

// loadConfig reads a YAML config file. Unknown keys are rejected and an
// empty file yields the zero config.
func loadConfig(path string) (config, error) {
	var cfg config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c config) options() (codec.Options, error) {
	opts := codec.DefaultOptions()

	if c.Optional != "" {
		p, err := codec.ParseOptional(c.Optional)
		if err != nil {
			return opts, err
		}
		opts = opts.WithOptional(p)
	}
	if c.StructTyping != "" {
		s, err := codec.ParseStructTyping(c.StructTyping)
		if err != nil {
			return opts, err
		}
		opts = opts.WithStructTyping(s)
	}
	if c.Variants != "" {
		v, err := codec.ParseVariantNaming(c.Variants)
		if err != nil {
			return opts, err
		}
		opts = opts.WithVariantNaming(v)
	}
	if c.MaxDepth > 0 {
		opts = opts.WithMaxDepth(c.MaxDepth)
	}
	return opts, nil
}
