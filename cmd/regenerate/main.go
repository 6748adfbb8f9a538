package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/angelmondragon/storefronts/internal/app"
	"github.com/angelmondragon/storefronts/internal/regeneration"
	"github.com/angelmondragon/storefronts/pkg/config"
	"github.com/angelmondragon/storefronts/pkg/logger"
)

func main() {
	storefront := flag.String("storefront", "", "storefront id to regenerate")
	place := flag.String("place", "", "directory place id to provision a new storefront from")
	activate := flag.Bool("activate", false, "publish the provisioned storefront (with -place)")
	areas := flag.String("service-areas", "", "comma separated service areas (with -place)")
	flag.Parse()

	if (*storefront == "") == (*place == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -storefront or -place is required")
		os.Exit(2)
	}

	logg := logger.New(logger.Options{ServiceName: "regenerate"})
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "regenerate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rt, err := app.New(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap runtime", err)
		os.Exit(1)
	}

	summary, runErr := run(ctx, rt.Orchestrator, *storefront, *place, *activate, *areas)
	if closeErr := rt.Close(); closeErr != nil {
		logg.Error(ctx, "error closing runtime", closeErr)
	}
	if summary != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(summary)
	}
	if runErr != nil {
		logg.Error(ctx, "regeneration failed", runErr)
		os.Exit(1)
	}
}

func run(ctx context.Context, o *regeneration.Orchestrator, storefront, place string, activate bool, areas string) (*regeneration.Summary, error) {
	if storefront != "" {
		id, err := uuid.Parse(storefront)
		if err != nil {
			return nil, errors.New("invalid -storefront id")
		}
		return o.Regenerate(ctx, id)
	}
	in := regeneration.ProvisionInput{PlaceID: place, Activate: activate}
	for _, area := range strings.Split(areas, ",") {
		if area = strings.TrimSpace(area); area != "" {
			in.ServiceAreas = append(in.ServiceAreas, area)
		}
	}
	return o.Provision(ctx, in)
}
