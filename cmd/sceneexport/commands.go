package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/urfave/cli/v2"

	"scene-exporter/internal/exporter/geom"
	"scene-exporter/internal/exporter/inspect"
	"scene-exporter/internal/exporter/mapper"
	"scene-exporter/internal/exporter/markup"
	"scene-exporter/internal/exporter/models"
	"scene-exporter/internal/exporter/shape"
)

func newApp() *cli.App {
	app := &cli.App{
		Name:  "sceneexport",
		Usage: "convert scene JSON to SVG and inspect the result",
	}
	registerExportCmd(app)
	registerInspectCmd(app)
	return app
}

// ============================================================
// export
// ============================================================

func registerExportCmd(app *cli.App) {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "export",
		Usage:     "export a scene JSON file to SVG",
		ArgsUsage: "<scene.json | ->",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output file, stdout when empty",
			},
			&cli.IntFlag{
				Name:  "precision",
				Usage: "fractional digits in numeric attributes",
				Value: markup.DefaultPrecision,
			},
			&cli.Float64Flag{
				Name:  "epsilon",
				Usage: "geometric tolerance used by shape detection",
				Value: geom.DefaultEpsilon,
			},
			&cli.IntFlag{
				Name:  "max-depth",
				Usage: "maximum container nesting",
				Value: mapper.DefaultMaxDepth,
			},
			&cli.BoolFlag{
				Name:  "parallel",
				Usage: "export top-level layers concurrently",
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "print detected shape counts to stderr",
			},
		},
		Action: func(cliCtx *cli.Context) error {
			in, err := openInput(cliCtx.Args().First(), cliCtx.App.Reader)
			if err != nil {
				return err
			}
			defer in.Close()

			project, err := models.DecodeProject(in)
			if err != nil {
				return err
			}

			counter := newKindCounter()
			exporter := mapper.New(mapper.Options{
				Precision: cliCtx.Int("precision"),
				Epsilon:   cliCtx.Float64("epsilon"),
				MaxDepth:  cliCtx.Int("max-depth"),
				Parallel:  cliCtx.Bool("parallel"),
				OnShape:   counter.add,
			})

			// Вывод пишется только после успешного экспорта
			var buf bytes.Buffer
			if err := exporter.Export(cliCtx.Context, project, &buf); err != nil {
				return err
			}

			if path := cliCtx.String("output"); path != "" {
				if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			} else if _, err := buf.WriteTo(cliCtx.App.Writer); err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			if cliCtx.Bool("stats") {
				counter.print(cliCtx.App.ErrWriter)
			}
			return nil
		},
	})
}

// ============================================================
// inspect
// ============================================================

func registerInspectCmd(app *cli.App) {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "inspect",
		Usage:     "summarize an exported SVG file",
		ArgsUsage: "<file.svg | ->",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the summary as JSON",
			},
		},
		Action: func(cliCtx *cli.Context) error {
			in, err := openInput(cliCtx.Args().First(), cliCtx.App.Reader)
			if err != nil {
				return err
			}
			defer in.Close()

			summary, err := inspect.ParseSVG(in)
			if err != nil {
				return err
			}

			w := cliCtx.App.Writer
			if cliCtx.Bool("json") {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}

			fmt.Fprintf(w, "shapes: %d, rotated: %d\n", summary.Shapes(), summary.Rotated)
			printCounts(w, "elements", summary.Elements)
			printCounts(w, "path commands", summary.Commands)
			return nil
		},
	})
}

// ============================================================
// Helpers
// ============================================================

func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

func printCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-10s %d\n", k, counts[k])
	}
}

// kindCounter считает фигуры; при --parallel add вызывается из нескольких горутин.
type kindCounter struct {
	mu     sync.Mutex
	counts map[shape.Kind]int
}

func newKindCounter() *kindCounter {
	return &kindCounter{counts: map[shape.Kind]int{}}
}

func (c *kindCounter) add(k shape.Kind) {
	c.mu.Lock()
	c.counts[k]++
	c.mu.Unlock()
}

func (c *kindCounter) print(w io.Writer) {
	byName := make(map[string]int, len(c.counts))
	for k, n := range c.counts {
		byName[k.String()] = n
	}
	printCounts(w, "shapes", byName)
}
