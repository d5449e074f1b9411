package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hoplink/hoplink/pkg/workpool"
)

func runDownload(args []string, output string, jobs int, sync bool) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}

	tasks := make([]func(context.Context) error, 0, len(args))
	for _, arg := range args {
		uri, err := parseURL(arg)
		if err != nil {
			return err
		}
		tasks = append(tasks, func(ctx context.Context) error {
			opts := requestOptions()
			var path string
			var err error
			if sync {
				path, err = engine.Sync(ctx, uri, output, opts)
			} else {
				path, err = engine.Download(ctx, uri, output, opts)
			}
			if err != nil {
				return fmt.Errorf("download of %s failed: %w", uri, err)
			}
			if path == "" {
				log.Warn().Stringer("uri", uri).Msg("nothing downloaded")
				return nil
			}
			log.Info().Stringer("uri", uri).Str("path", path).Msg("downloaded")
			return nil
		})
	}

	return workpool.Run(context.Background(), jobs, tasks)
}
