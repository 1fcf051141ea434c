package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	_ "github.com/joho/godotenv/autoload"
	"github.com/k0kubun/pp/v3"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vexhq/vex"
	"github.com/vexhq/vex/broker"
	"github.com/vexhq/vex/credentials"
	"github.com/vexhq/vex/pkg/slogx"
	"github.com/vexhq/vex/provider"
	"github.com/vexhq/vex/provider/models"
)

var log zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}
	log = zerolog.New(output).With().Timestamp().Logger()
	slog.SetDefault(slog.New(
		zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: slog.LevelInfo}),
	))
}

var glam *glamour.TermRenderer

func main() {
	var (
		modelKey        = flag.String("model", "claude-sonnet-4-5", "model key from the registry")
		mode            = flag.String("mode", "managed", "access mode: managed, direct, or custom")
		projectID       = flag.String("project", os.Getenv("VEX_PROJECT_ID"), "cloud project id for managed mode")
		location        = flag.String("location", envOr("VEX_LOCATION", "us-east5"), "cloud region for managed mode")
		endpointURL     = flag.String("endpoint", "", "endpoint url for custom mode")
		apiKeyEnv       = flag.String("api-key-env", "VEX_API_KEY", "environment variable holding the api key for direct/custom mode")
		tokenEnv        = flag.String("token-env", "VEX_ACCESS_TOKEN", "environment variable holding the bearer token for managed mode")
		attach          = flag.String("attach", "", "path of a file to attach to the prompt")
		extended        = flag.Bool("extended", false, "enable the extended context window")
		memory          = flag.Bool("memory", false, "advertise the memory tool")
		grounding       = flag.Bool("grounding", false, "enable search grounding")
		thinking        = flag.String("thinking", "", "thinking level for deep-thinking models: low or high")
		includeThoughts = flag.Bool("include-thoughts", false, "render the model's thinking section")
		listModels      = flag.Bool("list", false, "list registered models and exit")
		debug           = flag.Bool("debug", false, "verbose logging and a raw result dump")
	)
	flag.Parse()

	if *debug {
		slog.SetDefault(slog.New(
			zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: slog.LevelDebug}),
		))
	}

	if *listModels {
		printModels()
		return
	}

	prompts := flag.Args()
	if len(prompts) == 0 {
		fmt.Fprintln(os.Stderr, "usage: vex [flags] <prompt> [prompt ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	config, ok := models.Get(*modelKey)
	if !ok {
		slog.Error("unknown model", slogx.Model(*modelKey))
		printModels()
		os.Exit(1)
	}

	var err error
	glam, err = glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		slog.Error("failed to build markdown renderer", slogx.Error(err))
		os.Exit(1)
	}

	adapter, err := vex.New(
		vex.WithCredentials(credentials.FromEnv(*tokenEnv)),
		vex.WithBroker(broker.Local()),
	)
	if err != nil {
		slog.Error("failed to build adapter", slogx.Error(err))
		os.Exit(1)
	}

	var attachment *provider.Attachment
	if *attach != "" {
		data, err := os.ReadFile(*attach)
		if err != nil {
			slog.Error("failed to read attachment", slogx.Error(err), slog.String("path", *attach))
			os.Exit(1)
		}
		att := provider.NewAttachment(*attach, data)
		attachment = &att
	}

	spec := provider.RequestSpec{
		Config:          config,
		Mode:            provider.AccessMode(*mode),
		Attachment:      attachment,
		ProjectID:       *projectID,
		Location:        *location,
		Endpoint:        *endpointURL,
		APIKey:          os.Getenv(*apiKeyEnv),
		ExtendedContext: *extended,
		MemoryTool:      *memory,
		Grounding:       *grounding,
		ThinkingLevel:   provider.ThinkingLevel(*thinking),
		IncludeThoughts: *includeThoughts,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runPrompts(ctx, adapter, spec, prompts, *debug); err != nil {
		os.Exit(1)
	}
}

// runPrompts executes every prompt on its own worker. An interrupt cancels
// all in-flight calls cooperatively; each reports a cancelled error rather
// than a partial answer.
func runPrompts(ctx context.Context, adapter *vex.Adapter, base provider.RequestSpec, prompts []string, debug bool) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, prompt := range prompts {
		spec := base
		spec.Prompt = prompt

		call := adapter.Execute(ctx, spec, consoleHook{})
		g.Go(func() error {
			go func() {
				<-ctx.Done()
				call.Cancel()
			}()

			result, err := call.Get()
			if err != nil {
				slog.Error("call failed", slogx.Error(err))
				return err
			}

			out, rerr := glam.Render(result.VisibleText)
			if rerr != nil {
				out = result.VisibleText
			}
			fmt.Fprintln(os.Stdout, out)
			fmt.Fprintf(os.Stderr, "%s ~%d in / ~%d out tokens\n",
				color.HiBlackString("usage:"), result.InputTokenEstimate, result.OutputTokenEstimate)

			if debug {
				pp.Fprintln(os.Stderr, result)
			}
			return nil
		})
	}
	return g.Wait()
}

func printModels() {
	for _, key := range models.Keys() {
		config, _ := models.Get(key)
		fmt.Printf("%s  %s (%s)\n", color.CyanString("%-24s", key), config.DisplayName, config.Publisher)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type consoleHook struct{}

func (consoleHook) OnProgress(_ context.Context, event provider.Progress) {
	fmt.Fprintf(os.Stderr, "%s %s (%d%%)\n", color.CyanString("%-18s", string(event.Stage)), event.Message, event.Percent)
}

func (consoleHook) OnResult(context.Context, provider.Completed) {}

func (consoleHook) OnError(_ context.Context, event provider.Failed) {
	fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), event.Err)
}
