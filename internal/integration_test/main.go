// 指示: miu200521358
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/miu200521358/mu_vrm_spring/pkg/adapter/io_rig"
	"github.com/miu200521358/mu_vrm_spring/pkg/usecase/minteractor"
	"github.com/miu200521358/mu_vrm_spring/pkg/usecase/port/moutput"
)

const (
	batchOutputDirMode = 0o755
)

var targetRigPaths = []string{
	"C:/Codex/mlib/mu_vrm_spring/internal/test_resources/rig/hair_chain.yaml",
	// "C:/Codex/mlib/mu_vrm_spring/internal/test_resources/rig/skirt_with_body_colliders.yaml",
	// "C:/Codex/mlib/mu_vrm_spring/internal/test_resources/rig/twin_tail_center_space.yaml",
	// "E:/MMD_E/202101_vroid/rig/コート裾_カプセル.yaml",
	// "E:/MMD_E/202101_vroid/rig/ロングヘア_球体二段.yaml",
}

// batchConfig はバッチ実行の設定を表す。
type batchConfig struct {
	OutputRoot string
	Steps      int
	TimeStep   float64
	DryRun     bool
	FailFast   bool
}

// simulationEntry は1リグ分の実行入力情報を表す。
type simulationEntry struct {
	Index      int
	SourcePath string
	RigName    string
	OutputPath string
}

// simulationResult は1リグ分の実行結果を表す。
type simulationResult struct {
	Entry           simulationEntry
	Status          string
	Duration        time.Duration
	Err             error
	WarningCount    int
	DiagnosticCount int
}

// diagnosticsCounter はシミュレーション診断イベント数を集計する。
type diagnosticsCounter struct {
	count int
}

// ReportSimulationDiagnostic は診断イベントを計数する。
func (c *diagnosticsCounter) ReportSimulationDiagnostic(event moutput.DiagnosticsEvent) {
	c.count++
}

// main は検証向けのリグ一括シミュレーションを実行する。
func main() {
	os.Exit(run())
}

// run は実行設定を解決して一括実行し、終了コードを返す。
func run() int {
	config, err := parseBatchConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定解析に失敗しました: %v\n", err)
		return 2
	}
	entries := buildSimulationEntries(config.OutputRoot, targetRigPaths)
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "実行対象リグがありません")
		return 2
	}

	results := executeBatchSimulation(config, entries)
	printBatchSummary(results)

	for _, result := range results {
		if result.Status == "failed" {
			return 1
		}
	}
	return 0
}

// parseBatchConfig はコマンドライン引数から実行設定を構築する。
func parseBatchConfig() (batchConfig, error) {
	defaultOutputRoot, err := resolveDefaultOutputRoot()
	if err != nil {
		return batchConfig{}, err
	}
	outputRoot := flag.String("output-root", defaultOutputRoot, "軌跡CSVの出力ルートディレクトリ")
	steps := flag.Int("steps", 600, "シミュレーションステップ数")
	dt := flag.Float64("dt", 1.0/60.0, "1ステップの時間刻み(秒)")
	dryRun := flag.Bool("dry-run", false, "実行せず、入力解決と出力先計画のみ表示する")
	failFast := flag.Bool("fail-fast", false, "失敗時に即時終了する")
	flag.Parse()

	trimmedOutputRoot := strings.TrimSpace(*outputRoot)
	if trimmedOutputRoot == "" {
		return batchConfig{}, errors.New("output-root が空です")
	}
	if *steps <= 0 {
		return batchConfig{}, fmt.Errorf("steps は正値が必要です: %d", *steps)
	}
	if *dt <= 0 {
		return batchConfig{}, fmt.Errorf("dt は正値が必要です: %f", *dt)
	}
	return batchConfig{
		OutputRoot: filepath.Clean(trimmedOutputRoot),
		Steps:      *steps,
		TimeStep:   *dt,
		DryRun:     *dryRun,
		FailFast:   *failFast,
	}, nil
}

// resolveDefaultOutputRoot はスクリプト配置ディレクトリ基準の既定出力先を返す。
func resolveDefaultOutputRoot() (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("実行ファイル位置を取得できません")
	}
	return filepath.Join(filepath.Dir(currentFilePath), "output"), nil
}

// buildSimulationEntries は入力パス一覧から実行対象エントリを生成する。
func buildSimulationEntries(outputRoot string, inputPaths []string) []simulationEntry {
	repository := io_rig.NewRigRepository()
	entries := make([]simulationEntry, 0, len(inputPaths))
	for i, rawPath := range inputPaths {
		rigName := repository.InferName(rawPath)
		caseDirName := fmt.Sprintf("%03d_%s", i+1, sanitizePathComponent(rigName))
		entries = append(entries, simulationEntry{
			Index:      i + 1,
			SourcePath: filepath.Clean(rawPath),
			RigName:    rigName,
			OutputPath: filepath.Join(outputRoot, caseDirName, sanitizePathComponent(rigName)+".csv"),
		})
	}
	return entries
}

// sanitizePathComponent はパス成分として安全な名前へ置換する。
func sanitizePathComponent(name string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "_",
	)
	sanitized := replacer.Replace(strings.TrimSpace(name))
	if sanitized == "" {
		return "rig"
	}
	return sanitized
}

// executeBatchSimulation は全リグのシミュレーションを順次実行する。
func executeBatchSimulation(config batchConfig, entries []simulationEntry) []simulationResult {
	uc := minteractor.NewSpringSimUsecase(io_rig.NewRigRepository())

	total := len(entries)
	results := make([]simulationResult, 0, total)
	for _, entry := range entries {
		fmt.Printf("[%d/%d] 実行開始: rig=%s\n", entry.Index, total, entry.RigName)
		result := simulateRigEntry(uc, config, entry)
		results = append(results, result)
		switch result.Status {
		case "succeeded":
			fmt.Printf("[%d/%d] 実行成功: rig=%s output=%s warnings=%d diagnostics=%d elapsed=%s\n",
				entry.Index, total, entry.RigName, entry.OutputPath,
				result.WarningCount, result.DiagnosticCount, result.Duration.Round(time.Millisecond))
		case "dry_run":
			fmt.Printf("[%d/%d] DRY-RUN: rig=%s input=%s output=%s\n",
				entry.Index, total, entry.RigName, entry.SourcePath, entry.OutputPath)
		case "skipped_missing":
			fmt.Printf("[%d/%d] 入力不足でスキップ: rig=%s input=%s reason=%v\n",
				entry.Index, total, entry.RigName, entry.SourcePath, result.Err)
		default:
			fmt.Printf("[%d/%d] 実行失敗: rig=%s reason=%v\n", entry.Index, total, entry.RigName, result.Err)
			if config.FailFast {
				return results
			}
		}
	}
	return results
}

// simulateRigEntry は1リグ分のシミュレーションとCSV出力を実行する。
func simulateRigEntry(uc *minteractor.SpringSimUsecase, config batchConfig, entry simulationEntry) simulationResult {
	if _, err := os.Stat(entry.SourcePath); err != nil {
		if os.IsNotExist(err) {
			return simulationResult{Entry: entry, Status: "skipped_missing", Err: err}
		}
		return simulationResult{Entry: entry, Status: "failed", Err: err}
	}
	if config.DryRun {
		return simulationResult{Entry: entry, Status: "dry_run"}
	}

	started := time.Now()
	counter := &diagnosticsCounter{}
	result, err := uc.Simulate(minteractor.SimulateRequest{
		InputPath:   entry.SourcePath,
		Steps:       config.Steps,
		TimeStep:    config.TimeStep,
		Diagnostics: counter,
	})
	if err != nil {
		return simulationResult{Entry: entry, Status: "failed", Err: err, Duration: time.Since(started)}
	}

	if err := os.MkdirAll(filepath.Dir(entry.OutputPath), batchOutputDirMode); err != nil {
		return simulationResult{Entry: entry, Status: "failed", Err: err, Duration: time.Since(started)}
	}
	if err := writeTraceCsv(entry.OutputPath, result); err != nil {
		return simulationResult{Entry: entry, Status: "failed", Err: err, Duration: time.Since(started)}
	}
	return simulationResult{
		Entry:           entry,
		Status:          "succeeded",
		Duration:        time.Since(started),
		WarningCount:    len(result.WarningIDs),
		DiagnosticCount: counter.count,
	}
}

// writeTraceCsv は末端軌跡をCSVへ書き出す。
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

// printBatchSummary は全結果の集計を表示する。
func printBatchSummary(results []simulationResult) {
	succeeded, failed, skipped, dryRun := 0, 0, 0, 0
	for _, result := range results {
		switch result.Status {
		case "succeeded":
			succeeded++
		case "failed":
			failed++
		case "skipped_missing":
			skipped++
		case "dry_run":
			dryRun++
		}
	}
	fmt.Printf("==== 実行結果: total=%d succeeded=%d failed=%d skipped=%d dry_run=%d ====\n",
		len(results), succeeded, failed, skipped, dryRun)
	for _, result := range results {
		if result.Err != nil {
			fmt.Printf("  [%03d] %s rig=%s err=%v\n", result.Entry.Index, result.Status, result.Entry.RigName, result.Err)
		}
	}
}
