package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hoplink/hoplink/pkg/fetch"
)

func runHead(arg string) error {
	uri, err := parseURL(arg)
	if err != nil {
		return err
	}
	engine, err := loadEngine()
	if err != nil {
		return err
	}

	opts := requestOptions()
	opts.Method = http.MethodHead
	var status int
	var final *url.URL
	var meta []fetch.Record
	opts.Status = &status
	opts.FinalURI = &final
	opts.Metadata = &meta

	body, err := engine.Open(context.Background(), uri, opts)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	if body != nil {
		body.Close()
	}

	fmt.Printf("Status: %d\n", status)
	if final != nil {
		fmt.Printf("URI: %s\n", final)
	}
	if mtype, _, ok := fetch.ContentType(meta); ok {
		fmt.Printf("Content-Type: %s\n", mtype)
	}
	if name, ok := fetch.Filename(meta); ok {
		fmt.Printf("Filename: %s\n", name)
	}
	if len(meta) > 1 {
		fmt.Printf("Attempts: %d\n", len(meta))
	}
	return nil
}
