package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/rs/zerolog/log"
)

func runFetch(arg, output string) error {
	uri, err := parseURL(arg)
	if err != nil {
		return err
	}
	engine, err := loadEngine()
	if err != nil {
		return err
	}

	opts := requestOptions()
	var final *url.URL
	opts.FinalURI = &final

	body, err := engine.Open(context.Background(), uri, opts)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	if body == nil {
		log.Info().Stringer("uri", uri).Msg("resource reported the designated failure status")
		return nil
	}
	defer body.Close()

	if final != nil && final.String() != uri.String() {
		log.Debug().Stringer("final", final).Msg("resolved after redirects")
	}

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if _, err := io.Copy(out, body); err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	return nil
}
