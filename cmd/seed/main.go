package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"hello-firestore/backend/internal/config"
	"hello-firestore/backend/internal/domain/user"
	"hello-firestore/backend/internal/firebase"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "seed",
		Usage: "Write one record into Firestore",

		// Field values may contain commas.
		DisableSliceFlagSeparator: true,

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "collection",
				Value: user.DefaultCollection,
				Usage: "target collection",
			},
			&cli.StringFlag{
				Name:     "id",
				Required: true,
				Usage:    "document id, e.g. leerob",
			},
			&cli.StringSliceFlag{
				Name:  "field",
				Usage: "field as key=value (repeatable), e.g. name=\"Lee Robinson\"",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			fields, err := parseFields(c.StringSlice("field"))
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			fb := firebase.NewInitializer(cfg, nil)
			clients, err := fb.Clients(ctx)
			if err != nil {
				return fmt.Errorf("firebase init: %w", err)
			}
			defer fb.Close()

			rec := user.Record{ID: c.String("id"), Fields: fields}
			if err := user.NewRepo(clients.Firestore).Put(ctx, c.String("collection"), rec); err != nil {
				return err
			}

			fmt.Printf("ok: %s/%s written (%d fields)\n", c.String("collection"), rec.ID, len(fields))
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// parseFields turns key=value pairs into document fields. Values are stored
// as strings.
func parseFields(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("at least one --field is required")
	}
	fields := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid field %q, want key=value", p)
		}
		if k == "id" {
			return nil, fmt.Errorf("field %q is reserved, use --id", k)
		}
		fields[k] = v
	}
	return fields, nil
}
