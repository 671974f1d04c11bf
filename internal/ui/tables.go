package ui

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/agonielv/agonielv-bilibili-Sort/internal/migration"
)

const (
	planHeadlineTemplateConstant   = "About to move %d items into %d new folders (capacity %d per folder) from %d source folders covering %d creators."
	reportHeadlineTemplateConstant = "Succeeded %d/%d, failed %d."
	chunkColumnConstant            = "#"
	destinationColumnConstant      = "Folder"
	itemsColumnConstant            = "Items"
	creatorsColumnConstant         = "Creators"
	creatorRangeColumnConstant     = "Creator range"
	folderIdentifierColumnConstant = "Folder ID"
	reasonColumnConstant           = "Reason"
	itemColumnConstant             = "Item"
	creatorColumnConstant          = "Creator"
	creatorRangeTemplateConstant   = "%s -> %s"
	lineBreakConstant              = "\n"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// RenderPlanSummary renders the pre-confirmation overview of a plan.
func RenderPlanSummary(summary migration.PlanSummary) string {
	rows := make([][]string, 0, len(summary.Chunks))
	for _, chunk := range summary.Chunks {
		rows = append(rows, []string{
			strconv.Itoa(chunk.Index),
			chunk.DestinationName,
			strconv.Itoa(chunk.ItemCount),
			strconv.Itoa(chunk.CreatorCount),
			fmt.Sprintf(creatorRangeTemplateConstant, chunk.FirstCreator, chunk.LastCreator),
		})
	}

	headline := fmt.Sprintf(planHeadlineTemplateConstant, summary.ItemCount, summary.ChunkCount, summary.Capacity, summary.SourceCount, summary.CreatorCount)
	body := renderTable(
		[]string{chunkColumnConstant, destinationColumnConstant, itemsColumnConstant, creatorsColumnConstant, creatorRangeColumnConstant},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
	)
	return headline + lineBreakConstant + body + lineBreakConstant
}

// RenderExecutionReport renders the created folders and any abandoned moves.
func RenderExecutionReport(result migration.ExecutionResult) string {
	folderRows := make([][]string, 0, len(result.CreatedFolders))
	for _, folder := range result.CreatedFolders {
		folderRows = append(folderRows, []string{folder.Name, strconv.FormatInt(folder.Identifier, 10), strconv.Itoa(folder.PlannedTotal)})
	}

	output := fmt.Sprintf(reportHeadlineTemplateConstant, result.SuccessCount, result.TotalCount, result.FailureCount()) + lineBreakConstant
	if len(folderRows) > 0 {
		output += renderTable(
			[]string{destinationColumnConstant, folderIdentifierColumnConstant, itemsColumnConstant},
			folderRows,
			[]columnAlignment{alignLeft, alignRight, alignRight},
		) + lineBreakConstant
	}

	if len(result.Failures) > 0 {
		failureRows := make([][]string, 0, len(result.Failures))
		for _, failure := range result.Failures {
			failureRows = append(failureRows, []string{failure.Item.DisplayTitle(), failure.Item.CreatorName, failure.DestinationName, failure.Reason})
		}
		output += renderTable(
			[]string{itemColumnConstant, creatorColumnConstant, destinationColumnConstant, reasonColumnConstant},
			failureRows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
		) + lineBreakConstant
	}
	return output
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tableWriter := table.NewWriter()
	tableStyle := table.StyleRounded
	tableStyle.Format.Header = text.FormatDefault
	tableWriter.SetStyle(tableStyle)

	header := make(table.Row, columns)
	for columnIndex := 0; columnIndex < columns; columnIndex++ {
		header[columnIndex] = headers[columnIndex]
	}
	tableWriter.AppendHeader(header)

	for _, row := range rows {
		tableRow := make(table.Row, columns)
		for columnIndex := 0; columnIndex < columns; columnIndex++ {
			if columnIndex < len(row) {
				tableRow[columnIndex] = row[columnIndex]
			} else {
				tableRow[columnIndex] = ""
			}
		}
		tableWriter.AppendRow(tableRow)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for columnIndex := 0; columnIndex < columns; columnIndex++ {
		align := text.AlignLeft
		if columnIndex < len(aligns) && aligns[columnIndex] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      columnIndex + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tableWriter.SetColumnConfigs(columnConfigs)

	return tableWriter.Render()
}
