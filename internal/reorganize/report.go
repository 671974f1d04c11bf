package reorganize

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/agonielv/agonielv-bilibili-Sort/internal/migration"
)

const (
	reportIndentationConstant                    = 2
	reportFilePermissionsConstant                = 0o644
	reportDirectoryPermissionsConstant           = 0o755
	reportTimestampLayoutConstant                = time.RFC3339
	reportEncodingErrorTemplateConstant          = "unable to encode report: %w"
	reportWriteErrorTemplateConstant             = "unable to write report %s: %w"
	reportDirectoryCreationErrorTemplateConstant = "unable to create report directory %s: %w"
)

// Report is the YAML document written after an execution.
type Report struct {
	RunIdentifier string          `yaml:"run_id"`
	GeneratedAt   string          `yaml:"generated_at"`
	Completed     bool            `yaml:"completed"`
	Error         string          `yaml:"error,omitempty"`
	BaseName      string          `yaml:"base_name"`
	Capacity      int             `yaml:"capacity"`
	Totals        ReportTotals    `yaml:"totals"`
	Sources       []ReportSource  `yaml:"sources"`
	Folders       []ReportFolder  `yaml:"folders"`
	Failures      []ReportFailure `yaml:"failures,omitempty"`
}

// ReportTotals summarizes move counts.
type ReportTotals struct {
	Items     int `yaml:"items"`
	Attempted int `yaml:"attempted"`
	Succeeded int `yaml:"succeeded"`
	Failed    int `yaml:"failed"`
}

// ReportSource records one source folder and how many items were read from it.
type ReportSource struct {
	Identifier    int64  `yaml:"id"`
	Title         string `yaml:"title"`
	DeclaredItems int    `yaml:"declared_items"`
	ReadItems     int    `yaml:"read_items"`
}

// ReportFolder records a destination folder created by the run.
type ReportFolder struct {
	Name         string `yaml:"name"`
	Identifier   int64  `yaml:"id"`
	PlannedItems int    `yaml:"planned_items"`
}

// ReportFailure records an item that could not be moved.
type ReportFailure struct {
	ItemIdentifier    int64  `yaml:"item_id"`
	ResourceType      int    `yaml:"resource_type"`
	Title             string `yaml:"title"`
	CreatorIdentifier string `yaml:"creator_id"`
	CreatorName       string `yaml:"creator"`
	SourceFolder      string `yaml:"source_folder"`
	Destination       string `yaml:"destination"`
	Reason            string `yaml:"reason"`
}

// NewReport assembles the report for a plan and its (possibly partial) execution result.
func NewReport(runIdentifier string, generatedAt time.Time, plan migration.Plan, result migration.ExecutionResult, executionError error) Report {
	report := Report{
		RunIdentifier: runIdentifier,
		GeneratedAt:   generatedAt.UTC().Format(reportTimestampLayoutConstant),
		Completed:     result.Completed,
		BaseName:      plan.BaseName,
		Capacity:      plan.Capacity,
		Totals: ReportTotals{
			Items:     result.TotalCount,
			Attempted: result.AttemptedCount,
			Succeeded: result.SuccessCount,
			Failed:    result.FailureCount(),
		},
	}
	if executionError != nil {
		report.Error = executionError.Error()
	}

	for _, sourceResult := range plan.SourceResults {
		report.Sources = append(report.Sources, ReportSource{
			Identifier:    sourceResult.Collection.Identifier,
			Title:         sourceResult.Collection.Title,
			DeclaredItems: sourceResult.Collection.MediaCount,
			ReadItems:     len(sourceResult.Items),
		})
	}

	for _, createdFolder := range result.CreatedFolders {
		report.Folders = append(report.Folders, ReportFolder{
			Name:         createdFolder.Name,
			Identifier:   createdFolder.Identifier,
			PlannedItems: createdFolder.PlannedTotal,
		})
	}

	for _, failure := range result.Failures {
		report.Failures = append(report.Failures, ReportFailure{
			ItemIdentifier:    failure.Item.Identifier,
			ResourceType:      failure.Item.ResourceType,
			Title:             failure.Item.DisplayTitle(),
			CreatorIdentifier: failure.Item.CreatorIdentifier,
			CreatorName:       failure.Item.CreatorName,
			SourceFolder:      failure.Item.SourceCollectionTitle,
			Destination:       failure.DestinationName,
			Reason:            failure.Reason,
		})
	}

	return report
}

// WriteReport encodes report as YAML at path, creating parent directories as needed.
func WriteReport(path string, report Report) error {
	var encodedReport bytes.Buffer
	encoder := yaml.NewEncoder(&encodedReport)
	encoder.SetIndent(reportIndentationConstant)
	if encodeError := encoder.Encode(report); encodeError != nil {
		return fmt.Errorf(reportEncodingErrorTemplateConstant, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return fmt.Errorf(reportEncodingErrorTemplateConstant, closeError)
	}

	reportDirectory := filepath.Dir(path)
	if directoryError := os.MkdirAll(reportDirectory, reportDirectoryPermissionsConstant); directoryError != nil {
		return fmt.Errorf(reportDirectoryCreationErrorTemplateConstant, reportDirectory, directoryError)
	}

	if writeError := os.WriteFile(path, encodedReport.Bytes(), reportFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(reportWriteErrorTemplateConstant, path, writeError)
	}
	return nil
}
