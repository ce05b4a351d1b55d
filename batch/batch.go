package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.gatech.edu/ECEInnovation/Z80-Hexer/assembler"
	"github.gatech.edu/ECEInnovation/Z80-Hexer/config"
)

// ErrOutputConflict is returned by Run when two sources would write the same output file.
var ErrOutputConflict = errors.New("conflicting output paths")

// OutputPath is where the directives for source are written. Sources that already end in .s get
// .dc.s so they are never overwritten.
func OutputPath(source, outputDir string) string {
	ext := filepath.Ext(source)
	base := strings.TrimSuffix(filepath.Base(source), ext)
	if ext == ".s" {
		base += ".dc"
	}

	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(source)
	}
	return filepath.Join(dir, base+".s")
}

// isGenerated reports whether an existing file holds nothing but directive lines, which is all
// this tool ever writes.
func isGenerated(path string) (bool, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	} else if err != nil {
		return false, err
	}

	for _, line := range strings.Split(string(b), "\n") {
		if line != "" && !strings.HasPrefix(line, "dc\t$") {
			return false, nil
		}
	}
	return true, nil
}

func assembleFile(path, output string) (FileResult, error) {
	result := FileResult{Name: path}

	b, err := os.ReadFile(path)
	if err != nil {
		return result, err
	}

	res := assembler.Assemble(string(b))
	if res.Failed() {
		result.SetStatus(false)
		for _, asmErr := range res.Errors {
			result.ErrorPrintLn(fmt.Sprintf("%s:%d: %s", path, asmErr.Line, asmErr.Message))
		}
		glog.V(1).Infof("%s: %d errors", path, len(res.Errors))
		return result, nil
	}

	generated, err := isGenerated(output)
	if err != nil {
		return result, err
	}
	if !generated {
		result.SetStatus(false)
		result.ErrorPrintLn(fmt.Sprintf("%s: refusing to overwrite %s, it was not written by the assembler", path, output))
		glog.Warningf("%s: %s exists and is not assembler output", path, output)
		return result, nil
	}

	result.Output = output
	result.Size = len(res.Bytes())
	if err := os.WriteFile(result.Output, []byte(res.Directives()), 0644); err != nil {
		return result, err
	}
	result.SetStatus(true)
	glog.V(1).Infof("%s: %d bytes written to %s", path, result.Size, result.Output)
	return result, nil
}

// outputPaths maps every source to its output, failing when two sources share an output or an
// output would replace one of the sources.
func outputPaths(paths []string, outputDir string) ([]string, error) {
	inputs := make(map[string]string, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		inputs[abs] = path
	}

	outputs := make([]string, len(paths))
	claimed := make(map[string]string, len(paths))
	for i, path := range paths {
		outputs[i] = OutputPath(path, outputDir)
		abs, err := filepath.Abs(outputs[i])
		if err != nil {
			return nil, err
		}
		if source, ok := inputs[abs]; ok {
			return nil, fmt.Errorf("%w: output %s of %s is also an input (%s)", ErrOutputConflict, outputs[i], path, source)
		}
		if other, ok := claimed[abs]; ok {
			return nil, fmt.Errorf("%w: %s and %s both write %s", ErrOutputConflict, other, path, outputs[i])
		}
		claimed[abs] = path
	}
	return outputs, nil
}

// Run assembles every path concurrently, bounded by conf.Concurrency. Assembly errors and
// refused overwrites are recorded in the report; an I/O failure cancels the remaining files and
// is returned. Nothing is assembled when the outputs conflict.
func Run(ctx context.Context, paths []string, conf config.BatchConfig) (*BatchReport, error) {
	outputs, err := outputPaths(paths, conf.OutputDir)
	if err != nil {
		return nil, err
	}

	if conf.OutputDir != "" {
		if err := os.MkdirAll(conf.OutputDir, 0755); err != nil {
			return nil, err
		}
	}

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if conf.Concurrency > 0 {
		g.SetLimit(conf.Concurrency)
	}

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := assembleFile(path, outputs[i])
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := CreateBatchReport()
	for _, result := range results {
		report.AddFile(result)
	}

	if conf.ReportPath != "" {
		if err := report.Save(conf.ReportPath); err != nil {
			return report, err
		}
	}
	return report, nil
}
