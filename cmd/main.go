package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/erikgeiser/promptkit/selection"
	"github.com/gookit/color"
	"github.com/stoewer/go-strcase"
	"golang.org/x/term"

	"github.com/kappa-game/kappa-build/internal"
)

const version = "0.3.0"

const watchInterval = 250 * time.Millisecond

func printHelp() {
	fmt.Println("usage: kappa [command]")
	fmt.Println("")
	fmt.Println("platforms                                      List target platforms")
	fmt.Println("resolve -root <project root> -platform <p>     Resolve the project descriptor")
	fmt.Println("check -root <project root> -platform <p>       Report paths the build tool would miss")
	fmt.Println("dev -root <project root> -platform <p>         Re-resolve on change and serve the result")
	fmt.Println("version                                        Shows version installed")
	fmt.Println("")
	fmt.Println("The platform defaults to $KHA_PLATFORM. -khafile evaluates a khafile.js")
	fmt.Println("instead of the built-in kappa configuration.")
	fmt.Println("")
}

func main() {
	kappaCli := newKappa()
	defer kappaCli.stop()
	if err := kappaCli.exec(); err != nil {
		log.Fatal(err)
	}
}

type kappa struct {
	ctx  context.Context
	stop context.CancelFunc
}

func newKappa() *kappa {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	return &kappa{ctx: ctx, stop: stop}
}

func (k *kappa) exec() error {
	if len(os.Args) == 1 {
		printHelp()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Version is %s\n", version)
		return nil
	case "platforms":
		return k.platforms()
	case "resolve":
		return k.resolve()
	case "check":
		return k.check()
	case "dev":
		return k.dev()
	default:
		fmt.Printf("Unrecognized command: %s\n\n", command)
		printHelp()
		os.Exit(1)
	}

	return nil
}

func (k *kappa) platforms() error {
	for _, p := range internal.Platforms() {
		color.Printf("%-12s <grey>Platform.%s</>\n", p, p.Identifier())
	}
	return nil
}

type projectFlags struct {
	root     *string
	platform *string
	khafile  *string
}

func addProjectFlags(fs *flag.FlagSet) *projectFlags {
	return &projectFlags{
		root:     fs.String("root", ".", "project root"),
		platform: fs.String("platform", "", "target platform, defaults to $KHA_PLATFORM"),
		khafile:  fs.String("khafile", "", "khafile.js to evaluate instead of the built-in configuration"),
	}
}

func (k *kappa) builder(pf *projectFlags) (*internal.Builder, error) {
	root, err := filepath.Abs(*pf.root)
	if err != nil {
		return nil, err
	}
	platform, err := choosePlatform(*pf.platform)
	if err != nil {
		return nil, err
	}
	return internal.NewBuilder(root, *pf.khafile, platform)
}

func choosePlatform(name string) (internal.Platform, error) {
	if name == "" {
		name = os.Getenv("KHA_PLATFORM")
	}
	if name != "" {
		return internal.ParsePlatform(name)
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("requires -platform <platform> or KHA_PLATFORM")
	}
	sp := selection.New("Target platform", internal.Platforms())
	sp.PageSize = 8
	return sp.RunPrompt()
}

func (k *kappa) resolve() error {
	resolveCmd := flag.NewFlagSet("resolve", flag.ExitOnError)
	pf := addProjectFlags(resolveCmd)
	formatName := resolveCmd.String("format", "json", "json or yaml")
	out := resolveCmd.String("out", "-", "output file, - for stdout, empty for <project>.<platform>.<format> in root")
	expand := resolveCmd.Bool("expand", false, "expand asset rules against the project root")
	if err := resolveCmd.Parse(os.Args[2:]); err != nil {
		return err
	}

	format, err := internal.ParseFormat(*formatName)
	if err != nil {
		return err
	}
	builder, err := k.builder(pf)
	if err != nil {
		return err
	}

	resolver := &internal.WriterResolver{
		Format:   format,
		Platform: builder.Platform(),
	}
	if *expand {
		resolver.FS = builder.FS()
	}
	_, err = builder.Resolve(k.ctx, internal.ResolverFunc(func(ctx context.Context, p *internal.Project) error {
		w, closeFn, err := openOutput(*out, *pf.root, p, builder.Platform(), format)
		if err != nil {
			return err
		}
		defer closeFn()
		resolver.Out = w
		return resolver.Resolve(ctx, p)
	}))
	return err
}

func openOutput(out, root string, p *internal.Project, platform internal.Platform, format internal.Format) (io.Writer, func(), error) {
	if out == "-" {
		return os.Stdout, func() {}, nil
	}
	if out == "" {
		out = filepath.Join(root, fmt.Sprintf("%s.%s.%s", strcase.KebabCase(p.Name), platform, format))
	}
	f, err := os.Create(filepath.Clean(out))
	if err != nil {
		return nil, nil, err
	}
	color.Printf("Writing <grey>%s</>\n", out)
	return f, func() {
		if err := f.Close(); err != nil {
			color.Printf("<red>error closing %s:</> %s\n", out, err)
		}
	}, nil
}

func (k *kappa) check() error {
	checkCmd := flag.NewFlagSet("check", flag.ExitOnError)
	pf := addProjectFlags(checkCmd)
	if err := checkCmd.Parse(os.Args[2:]); err != nil {
		return err
	}
	builder, err := k.builder(pf)
	if err != nil {
		return err
	}
	problems, err := builder.Check(k.ctx)
	if err != nil {
		return err
	}
	if len(problems) == 0 {
		color.Printf("<green>ok</> %s\n", builder.Platform())
		return nil
	}
	for _, p := range problems {
		color.Printf("<red>%s</>\n", p)
	}
	os.Exit(1)
	return nil
}

func (k *kappa) dev() error {
	devCmd := flag.NewFlagSet("dev", flag.ExitOnError)
	pf := addProjectFlags(devCmd)
	port := devCmd.Int("port", 8080, "port for server")
	if err := devCmd.Parse(os.Args[2:]); err != nil {
		return err
	}
	builder, err := k.builder(pf)
	if err != nil {
		return err
	}
	server, err := internal.NewServer(builder.FS(), *port)
	if err != nil {
		return err
	}

	rebuild := func() {
		_, err := builder.Resolve(k.ctx, internal.ResolverFunc(func(ctx context.Context, p *internal.Project) error {
			res, err := internal.NewResolution(builder.FS(), builder.Platform(), p)
			if err != nil {
				return err
			}
			server.Update(res)
			color.Printf("Resolved <grey>%s</> for %s, %d assets\n", p.Name, builder.Platform(), len(res.Assets))
			return nil
		}))
		if err != nil {
			log.Println("error during resolve:", err)
			server.BuildError(err)
		}
	}
	rebuild()

	paths, err := builder.WatchedFiles(k.ctx)
	if err != nil {
		return err
	}
	go func() {
		if err := internal.Watch(k.ctx, paths, watchInterval, rebuild); err != nil && k.ctx.Err() == nil {
			log.Fatal(err)
		}
	}()

	fmt.Printf("Ready on :%d\n", *port)
	return server.Serve(k.ctx)
}
