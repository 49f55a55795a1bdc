// Package main implements the hqlc compiler CLI (C13).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hlvm-dev/hql/pkg/ast"
	"github.com/hlvm-dev/hql/pkg/buildcache"
	hqlcompiler "github.com/hlvm-dev/hql/pkg/compiler"
	"github.com/hlvm-dev/hql/pkg/config"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
	"github.com/hlvm-dev/hql/pkg/stdlib"
	"github.com/hlvm-dev/hql/pkg/ui"
)

var version = "0.1.0-alpha"

func main() {
	rootCmd := &cobra.Command{
		Use:          "hqlc",
		Short:        "hqlc - the HQL compiler",
		Long:         "hqlc compiles HQL source files to ECMAScript modules with V3 source maps.",
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(compileCmd())
	rootCmd.AddCommand(expandCmd())
	rootCmd.AddCommand(mapCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newDriver(cfg *config.Config) *hqlcompiler.Driver {
	loader := stdlib.New()
	return hqlcompiler.New(cfg.Import.BaseDir, cfg.Import.TempDir, loader, loader)
}

func compileCmd() *cobra.Command {
	var (
		output    string
		noCache   bool
		sourceMap bool
	)

	cmd := &cobra.Command{
		Use:   "compile [file.hql]",
		Short: "Compile an HQL source file to ECMAScript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(args[0], output, noCache, sourceMap)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default: replace .hql with .js)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the incremental build cache")
	cmd.Flags().BoolVar(&sourceMap, "source-map", false, "generate a V3 source map alongside the output")

	return cmd
}

func runCompile(inputPath, output string, noCache, sourceMap bool) error {
	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = withExt(inputPath, ".js")
	}

	buildUI := ui.NewBuildOutput()
	buildUI.PrintHeader(version)
	buildUI.PrintFileStart(inputPath, outputPath)

	var cache *buildcache.Cache
	if !noCache {
		cache, err = buildcache.Open(cfg.Import.BaseDir)
		if err != nil {
			return err
		}
		needs, err := cache.NeedsRebuild(inputPath, outputPath)
		if err != nil {
			return err
		}
		if !needs {
			buildUI.PrintStep(ui.PhaseEmit, ui.StepSkipped, 0, "up to date")
			buildUI.PrintSummary(true)
			return nil
		}
	}

	src, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	start := time.Now()
	driver := newDriver(cfg)
	res, err := driver.Compile(context.Background(), string(src), hqlcompiler.Options{
		BaseDir:           cfg.Import.BaseDir,
		TempDir:           cfg.Import.TempDir,
		CurrentFile:       inputPath,
		GenerateSourceMap: sourceMap && cfg.SourceMap.Format != config.FormatNone,
		SourceContent:     string(src),
	})
	duration := time.Since(start)

	if err != nil {
		buildUI.PrintStep(ui.PhaseEmit, ui.StepFailed, duration, err.Error())
		buildUI.PrintSummary(false)
		if diag, ok := err.(*hqlerrors.Diagnostic); ok {
			ui.PrintDiagnostic(diag)
		}
		return err
	}
	buildUI.PrintStep(ui.PhaseEmit, ui.StepSuccess, duration, "")

	if err := os.WriteFile(outputPath, []byte(res.Code), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if res.SourceMap != "" {
		if err := os.WriteFile(outputPath+".map", []byte(res.SourceMap), 0o644); err != nil {
			return fmt.Errorf("failed to write source map: %w", err)
		}
	}

	if cache != nil {
		if err := cache.MarkBuilt(inputPath, outputPath, nil); err != nil {
			return err
		}
	}

	buildUI.PrintSummary(true)
	return nil
}

func expandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand [file.hql]",
		Short: "Print a file's fully macro-expanded forms without generating code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(args[0])
		},
	}
	return cmd
}

func runExpand(inputPath string) error {
	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	driver := newDriver(cfg)
	forms, err := driver.Expand(context.Background(), string(src), hqlcompiler.Options{
		BaseDir:     cfg.Import.BaseDir,
		TempDir:     cfg.Import.TempDir,
		CurrentFile: inputPath,
	})
	if err != nil {
		if diag, ok := err.(*hqlerrors.Diagnostic); ok {
			ui.PrintDiagnostic(diag)
		}
		return err
	}

	for _, f := range forms {
		fmt.Println(ast.Print(f))
	}
	return nil
}

func mapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map <sourcemap.js.map> <line:col>",
		Short: "Resolve a generated line:column back to its original source position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMap(args[0], args[1])
		},
	}
	return cmd
}

func runMap(mapPath, lineCol string) error {
	line, col, err := parseLineCol(lineCol)
	if err != nil {
		return err
	}

	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}
	driver := newDriver(cfg)

	pos, err := driver.MapPosition(mapPath, line, col)
	if err != nil {
		return err
	}
	if pos == nil {
		fmt.Println("no mapping at that position")
		return nil
	}
	fmt.Printf("%s:%d:%d\n", pos.Source, pos.Line, pos.Column)
	return nil
}

func parseLineCol(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected line:col, got %q", s)
	}
	line, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid line %q: %w", parts[0], err)
	}
	col, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid column %q: %w", parts[1], err)
	}
	return line, col, nil
}

func withExt(path, ext string) string {
	trimmed := strings.TrimSuffix(path, filepath.Ext(path))
	return trimmed + ext
}
