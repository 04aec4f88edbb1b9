// 指示: miu200521358
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/miu200521358/mu_vrm_spring/pkg/adapter/io_rig"
	"github.com/miu200521358/mu_vrm_spring/pkg/usecase/minteractor"
)

const (
	defaultSteps    = 600
	defaultTimeStep = 1.0 / 60.0
)

// options はCLI引数を保持する。
type options struct {
	inputPath  string
	outputPath string
	steps      int
	timeStep   float64
}

// main はリグ定義のスプリングシミュレーションを実行し、末端軌跡CSVを出力する。
func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run はCLI処理全体を実行する。
func run(args []string, out io.Writer, errOut io.Writer) error {
	opts, err := parseOptions(args, errOut)
	if err != nil {
		return err
	}

	repository := io_rig.NewRigRepository()
	if !repository.CanLoad(opts.inputPath) {
		return fmt.Errorf("入力形式が未対応です: %s", opts.inputPath)
	}

	fmt.Fprintf(out, "[mu_vrm_spring] 読み込み開始: %s\n", opts.inputPath)
	uc := minteractor.NewSpringSimUsecase(repository)
	result, err := uc.Simulate(minteractor.SimulateRequest{
		InputPath: opts.inputPath,
		Steps:     opts.steps,
		TimeStep:  opts.timeStep,
	})
	if err != nil {
		return fmt.Errorf("シミュレーションに失敗しました: %w", err)
	}
	for _, warningID := range result.WarningIDs {
		fmt.Fprintf(out, "[mu_vrm_spring] リグ定義警告: %s\n", warningID)
	}

	outputPath, err := resolveOutputPath(opts.inputPath, opts.outputPath)
	if err != nil {
		return err
	}
	if err := ensureOutputDir(outputPath); err != nil {
		return err
	}

	fmt.Fprintf(out, "[mu_vrm_spring] 保存開始: %s\n", outputPath)
	if err := writeTraceCsv(outputPath, result); err != nil {
		return fmt.Errorf("軌跡CSVの保存に失敗しました: %w", err)
	}
	fmt.Fprintf(out,
		"[mu_vrm_spring] シミュレーション完了: rig=%s steps=%d joints=%d -> %s\n",
		result.RigName, opts.steps, len(result.JointLabels), outputPath,
	)
	return nil
}

// parseOptions はCLI引数を解析する。
func parseOptions(args []string, errOut io.Writer) (options, error) {
	fs := flag.NewFlagSet("mu_vrm_spring", flag.ContinueOnError)
	fs.SetOutput(errOut)

	in := fs.String("in", "", "入力リグYAMLファイルパス")
	out := fs.String("out", "", "出力軌跡CSVファイルパス")
	steps := fs.Int("steps", defaultSteps, "シミュレーションステップ数")
	dt := fs.Float64("dt", defaultTimeStep, "1ステップの時間刻み(秒)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if *in == "" && fs.NArg() > 0 {
		*in = fs.Arg(0)
	}
	if *out == "" && fs.NArg() > 1 {
		*out = fs.Arg(1)
	}
	if *in == "" {
		return options{}, fmt.Errorf("入力リグYAMLファイルを指定してください (-in)")
	}

	ext := filepath.Ext(*in)
	if !strings.EqualFold(ext, ".yaml") && !strings.EqualFold(ext, ".yml") {
		return options{}, fmt.Errorf("入力拡張子が .yaml/.yml ではありません: %s", *in)
	}
	if *steps <= 0 {
		return options{}, fmt.Errorf("ステップ数は正値を指定してください: %d", *steps)
	}
	if *dt <= 0 {
		return options{}, fmt.Errorf("時間刻みは正値を指定してください: %f", *dt)
	}

	return options{inputPath: *in, outputPath: *out, steps: *steps, timeStep: *dt}, nil
}

// resolveOutputPath は出力CSVパスを解決する。
func resolveOutputPath(inputPath string, outputPath string) (string, error) {
	if strings.TrimSpace(outputPath) == "" {
		dir := filepath.Dir(inputPath)
		base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		return filepath.Join(dir, base+".csv"), nil
	}
	if !strings.EqualFold(filepath.Ext(outputPath), ".csv") {
		return "", fmt.Errorf("出力拡張子が .csv ではありません: %s", outputPath)
	}
	return outputPath, nil
}

// ensureOutputDir は出力先ディレクトリを作成する。
func ensureOutputDir(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("出力先ディレクトリの作成に失敗しました: %w", err)
	}
	return nil
}

// writeTraceCsv は末端軌跡をCSVへ書き出す。列はジョイント毎に x/y/z の3列。
func writeTraceCsv(outputPath string, result *minteractor.SimulateResult) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{"step"}
	for _, label := range result.JointLabels {
		header = append(header, label+".x", label+".y", label+".z")
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, frame := range result.Frames {
		record := []string{strconv.Itoa(frame.Step)}
		for _, position := range frame.TailPositions {
			record = append(record,
				strconv.FormatFloat(position.X, 'f', -1, 64),
				strconv.FormatFloat(position.Y, 'f', -1, 64),
				strconv.FormatFloat(position.Z, 'f', -1, 64),
			)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
