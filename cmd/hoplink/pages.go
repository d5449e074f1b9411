package main

import (
	"context"
	"fmt"
	"io"
	"os"
)

func runPages(arg string) error {
	uri, err := parseURL(arg)
	if err != nil {
		return err
	}
	engine, err := loadEngine()
	if err != nil {
		return err
	}

	err = engine.Call(context.Background(), uri, requestOptions(), func(body io.Reader) error {
		_, err := io.Copy(os.Stdout, body)
		return err
	})
	if err != nil {
		return fmt.Errorf("pagination failed: %w", err)
	}
	return nil
}
