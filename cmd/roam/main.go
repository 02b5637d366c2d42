package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/astepien/roam/assistant"
	"github.com/astepien/roam/assistant/events"
	"github.com/astepien/roam/assistant/location"
	"github.com/astepien/roam/assistant/markers"
	"github.com/astepien/roam/assistant/place"
	"github.com/astepien/roam/assistant/tools"
	"github.com/astepien/roam/assistant/weather"
	"github.com/astepien/roam/chat"
	"github.com/astepien/roam/internal/envload"
	"github.com/astepien/roam/internal/version"
	modelproviders "github.com/astepien/roam/kernel/model/providers"
)

const appName = "roam"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if envPath, err := envload.LoadNearest(); err != nil {
		fmt.Fprintf(os.Stderr, "warn: load .env failed: %v\n", err)
	} else if envPath != "" {
		fmt.Fprintf(os.Stderr, "loaded env from %s\n", envPath)
	}

	configStore, err := loadOrInitAppConfig(appName)
	if err != nil {
		return err
	}
	defaultDBPath, err := dataPath(appName, appName+".db")
	if err != nil {
		return err
	}
	defaultMCPPath, err := dataPath(appName, "mcp_servers.json")
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	var (
		modelAlias    = fs.String("model", configStore.DefaultModel(), "Model alias")
		assistantName = fs.String("assistant", "trip", "Assistant: weather|trip")
		input         = fs.String("input", "", "Run one turn with this input and exit")
		dbPath        = fs.String("db", defaultDBPath, "Chat store sqlite file path")
		mcpConfigPath = fs.String("mcp-config", defaultMCPPath, "MCP config JSON path")
		lat           = fs.Float64("lat", 52.2297, "Static user latitude")
		lon           = fs.Float64("lon", 21.0122, "Static user longitude")
		accuracy      = fs.Float64("accuracy", 25, "Static location accuracy in meters")
		showVersion   = fs.Bool("version", false, "Show version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Println(version.String())
		return nil
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", fs.Args())
	}
	screen, kind, err := resolveAssistant(*assistantName)
	if err != nil {
		return err
	}

	factory := modelproviders.NewFactory()
	for _, providerCfg := range configStore.ProviderConfigs() {
		if registerErr := factory.Register(providerCfg); registerErr != nil {
			fmt.Fprintf(os.Stderr, "warn: skip provider %q: %v\n", providerCfg.Alias, registerErr)
		}
	}
	llm, err := factory.NewByAlias(*modelAlias)
	if err != nil {
		return err
	}

	store, err := chat.Open(*dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "warn: close chat store failed: %v\n", closeErr)
		}
	}()

	markerStore := markers.NewStore(store)
	if persisted, loadErr := store.LoadMarkers(ctx); loadErr != nil {
		fmt.Fprintf(os.Stderr, "warn: load persisted markers failed: %v\n", loadErr)
	} else if len(persisted) > 0 {
		markerStore.Restore(persisted)
	}

	bus := events.NewBus()
	deps := tools.Deps{
		Bus:      bus,
		Weather:  weather.NewClient(),
		Location: location.Static{Latitude: *lat, Longitude: *lon, Accuracy: *accuracy},
		Catalog:  place.WarsawCatalog(),
		Markers:  markerStore,
	}

	mcpManager, err := loadMCPToolManager(*mcpConfigPath)
	if err != nil {
		return err
	}
	if mcpManager != nil {
		defer func() {
			if closeErr := mcpManager.Close(); closeErr != nil {
				fmt.Fprintf(os.Stderr, "warn: close mcp manager failed: %v\n", closeErr)
			}
		}()
	}

	asst, err := assistant.New(llm, deps, mcpManager)
	if err != nil {
		return err
	}

	c, err := newConsole(consoleConfig{
		Assistant: asst,
		Store:     store,
		Markers:   markerStore,
		Bus:       bus,
		Screen:    screen,
		Kind:      kind,
	})
	if err != nil {
		return err
	}
	defer c.Close()

	if strings.TrimSpace(*input) != "" {
		return c.RunOnce(ctx, *input)
	}
	return c.RunLoop(ctx)
}

func resolveAssistant(name string) (chat.Screen, assistant.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "weather":
		return chat.ScreenWeather, assistant.Weather, nil
	case "trip", "trip_plan", "tripplan":
		return chat.ScreenTripPlan, assistant.TripPlan, nil
	default:
		return "", 0, fmt.Errorf("unknown assistant %q, expected weather or trip", name)
	}
}
